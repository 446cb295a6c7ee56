package watchers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Fullex26/procnotify/internal/metrics"
	"github.com/Fullex26/procnotify/pkg/models"
)

// PidWatcher polls the process table until a single pid disappears.
type PidWatcher struct {
	Base
	pid    int
	silent bool
}

// NewPidWatcher creates a watcher for pid. A silent watcher shows no
// progress indicator; it is what the name fan-out starts.
func NewPidWatcher(base Base, pid int, silent bool) *PidWatcher {
	return &PidWatcher{Base: base, pid: pid, silent: silent}
}

func (w *PidWatcher) Name() string { return "pid" }

// Watch checks immediately, then once per interval. A failed query counts as
// termination: the process table gave no evidence the pid is alive.
func (w *PidWatcher) Watch(ctx context.Context) models.Result {
	ind := w.indicator(fmt.Sprintf("Monitoring PID: %d", w.pid), w.silent)
	ind.Start()
	defer ind.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return models.Failed(w.pid, err)
		}

		metrics.ObservePoll(w.Name())
		alive, err := w.Table.Alive(ctx, w.pid)
		if err != nil {
			slog.Warn("pid query failed, treating process as terminated", "pid", w.pid, "error", err)
		}
		if err != nil || !alive {
			ind.Stop()
			msg := fmt.Sprintf("Process with PID %d has terminated.", w.pid)
			w.printf("%s\n", msg)
			w.publish(models.EventProcessTerminated, w.Name(), msg, w.pid)
			return models.Terminated(w.pid)
		}

		if err := sleep(ctx, w.interval()); err != nil {
			return models.Failed(w.pid, err)
		}
	}
}
