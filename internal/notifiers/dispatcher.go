package notifiers

import (
	"context"
	"log/slog"
	"time"

	"github.com/Fullex26/procnotify/pkg/models"
)

// Delivery is the outcome of handing one event to one notifier.
type Delivery struct {
	EventID  string
	Notifier string
	Err      error
	Duration time.Duration
}

// Dispatcher hands each event to every configured notifier, one after the
// other. It never fails: delivery errors are logged and reported to the
// observer, and the caller carries on.
type Dispatcher struct {
	notifiers []Notifier
	observe   func(Delivery)
}

// NewDispatcher creates a dispatcher. observe may be nil.
func NewDispatcher(observe func(Delivery), ns ...Notifier) *Dispatcher {
	return &Dispatcher{notifiers: ns, observe: observe}
}

// Notifiers returns the configured channels in delivery order.
func (d *Dispatcher) Notifiers() []Notifier { return d.notifiers }

// Notify delivers event to all notifiers sequentially, so successive calls
// arrive in call order. There is no retry and no deduplication.
func (d *Dispatcher) Notify(ctx context.Context, event models.Event) {
	for _, n := range d.notifiers {
		start := time.Now()
		err := n.Send(ctx, event)
		if err != nil {
			slog.Error("notification failed", "notifier", n.Name(), "event", event.Type, "error", err)
		} else {
			slog.Debug("notification sent", "notifier", n.Name(), "event", event.Type)
		}
		if d.observe != nil {
			d.observe(Delivery{
				EventID:  event.ID,
				Notifier: n.Name(),
				Err:      err,
				Duration: time.Since(start),
			})
		}
	}
}

// Test sends a test notification to every notifier and stops at the first
// failure.
func (d *Dispatcher) Test(ctx context.Context) error {
	for _, n := range d.notifiers {
		slog.Info("testing notifier", "name", n.Name())
		if err := n.Test(ctx); err != nil {
			return &TestError{Notifier: n.Name(), Err: err}
		}
		slog.Info("notifier OK", "name", n.Name())
	}
	return nil
}

// TestError identifies which channel failed its test message.
type TestError struct {
	Notifier string
	Err      error
}

func (e *TestError) Error() string { return e.Notifier + ": " + e.Err.Error() }
func (e *TestError) Unwrap() error { return e.Err }
