package watchers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Fullex26/procnotify/internal/metrics"
	"github.com/Fullex26/procnotify/pkg/models"
)

// NameWatcher polls for pids matching a process name and keeps a silent
// PidWatcher running for each one it sees. It finishes once a lookup
// returns no matches at all.
type NameWatcher struct {
	Base
	name   string
	fanout *Fanout
}

func NewNameWatcher(base Base, name string, dedupe bool) *NameWatcher {
	return &NameWatcher{
		Base:   base,
		name:   name,
		fanout: NewFanout(base, dedupe),
	}
}

func (w *NameWatcher) Name() string { return "name" }

// Fanout exposes the sub-watcher spawner, mostly for inspection.
func (w *NameWatcher) Fanout() *Fanout { return w.fanout }

func (w *NameWatcher) Watch(ctx context.Context) models.Result {
	ind := w.indicator(fmt.Sprintf("Monitoring processes named: %s", w.name), false)
	ind.Start()
	defer ind.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return models.Failed(0, err)
		}

		metrics.ObservePoll(w.Name())
		pids, err := w.Table.PidsByName(ctx, w.name)
		if err != nil {
			ind.Stop()
			slog.Error("process lookup failed", "name", w.name, "error", err)
			w.printf("\nError retrieving process list.\n")
			return models.Failed(0, err)
		}

		if len(pids) == 0 {
			ind.Stop()
			w.printf("\nAll processes named '%s' have terminated.\n", w.name)
			return models.Terminated(0)
		}

		for _, pid := range pids {
			w.fanout.Spawn(ctx, pid)
		}

		if err := sleep(ctx, w.interval()); err != nil {
			return models.Failed(0, err)
		}
	}
}
