package watchers

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Fullex26/procnotify/internal/eventbus"
	"github.com/Fullex26/procnotify/internal/proctable"
	"github.com/Fullex26/procnotify/pkg/models"
)

// DefaultInterval is the delay between two liveness checks.
const DefaultInterval = time.Second

// Watcher is the interface the pid and name watchers implement
type Watcher interface {
	// Name returns the watcher identifier
	Name() string
	// Watch blocks until the watched process(es) are gone and reports once.
	Watch(ctx context.Context) models.Result
}

// Base provides common fields for all watchers
type Base struct {
	Table     proctable.Table
	Bus       *eventbus.Bus // optional
	Interval  time.Duration
	Indicator IndicatorFunc // nil shows nothing
	Out       io.Writer     // status lines; defaults to stdout
}

func (b Base) interval() time.Duration {
	if b.Interval <= 0 {
		return DefaultInterval
	}
	return b.Interval
}

func (b Base) out() io.Writer {
	if b.Out == nil {
		return os.Stdout
	}
	return b.Out
}

func (b Base) printf(format string, args ...any) {
	fmt.Fprintf(b.out(), format, args...)
}

// indicator returns a started-once, stopped-once progress display.
func (b Base) indicator(label string, silent bool) Indicator {
	if silent || b.Indicator == nil {
		return noopIndicator{}
	}
	return &onceIndicator{inner: b.Indicator(label)}
}

func (b Base) publish(evType models.EventType, source, msg string, pid int) {
	if b.Bus == nil {
		return
	}
	hostname, _ := os.Hostname()
	result := models.Terminated(pid)
	b.Bus.Publish(models.Event{
		ID:        uuid.NewString(),
		Type:      evType,
		Severity:  models.SeverityInfo,
		Hostname:  hostname,
		Timestamp: time.Now(),
		Message:   msg,
		Source:    source,
		Result:    &result,
	})
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
