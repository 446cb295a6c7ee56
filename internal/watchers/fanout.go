package watchers

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc/panics"

	"github.com/Fullex26/procnotify/internal/metrics"
)

// Fanout starts one detached, silent PidWatcher per pid. The goroutines are
// deliberately not tracked: nobody joins or cancels them, each runs until
// its own pid disappears, and a panic in one is recovered and logged.
//
// Spawn is called from the name loop only, so seen needs no lock.
type Fanout struct {
	base    Base
	dedupe  bool
	seen    map[int]struct{}
	spawned int
	watch   func(ctx context.Context, pid int) // injectable for tests
}

// NewFanout creates a spawner. With dedupe set, a pid already handed to a
// sub-watcher is not handed out again; without it every tick respawns.
func NewFanout(base Base, dedupe bool) *Fanout {
	f := &Fanout{
		base:   base,
		dedupe: dedupe,
		seen:   make(map[int]struct{}),
	}
	f.watch = func(ctx context.Context, pid int) {
		NewPidWatcher(f.base, pid, true).Watch(ctx)
	}
	return f
}

// Spawn starts a sub-watcher for pid and reports whether one was started.
func (f *Fanout) Spawn(ctx context.Context, pid int) bool {
	if f.dedupe {
		if _, ok := f.seen[pid]; ok {
			return false
		}
		f.seen[pid] = struct{}{}
	}
	f.spawned++
	metrics.IncSubwatchersSpawned()
	go f.run(ctx, pid)
	return true
}

// Spawned is the number of sub-watchers started so far.
func (f *Fanout) Spawned() int { return f.spawned }

func (f *Fanout) run(ctx context.Context, pid int) {
	metrics.SubwatcherStarted()
	defer metrics.SubwatcherDone()

	var pc panics.Catcher
	pc.Try(func() { f.watch(ctx, pid) })
	if r := pc.Recovered(); r != nil {
		slog.Error("sub-watcher panicked", "pid", pid, "error", r.AsError())
	}
}
