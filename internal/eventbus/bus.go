package eventbus

import (
	"log/slog"
	"sync"

	"github.com/Fullex26/procnotify/pkg/models"
)

// Handler is a function that receives events
type Handler func(event models.Event)

// Bus is a simple in-process pub/sub event bus
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

// New creates a new event bus
func New() *Bus {
	return &Bus{
		handlers: make([]Handler, 0),
	}
}

// Subscribe registers a handler for all events
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish hands the event to every subscriber in subscription order and
// returns once all of them are done. A panicking handler is logged and
// skipped.
func (b *Bus) Publish(event models.Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers...)
	b.mu.RUnlock()

	for _, h := range handlers {
		call(h, event)
	}
}

func call(h Handler, event models.Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event", event.Type, "panic", r)
		}
	}()
	h(event)
}
