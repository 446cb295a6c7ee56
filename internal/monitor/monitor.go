package monitor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Fullex26/procnotify/internal/config"
	"github.com/Fullex26/procnotify/internal/eventbus"
	"github.com/Fullex26/procnotify/internal/metrics"
	"github.com/Fullex26/procnotify/internal/notifiers"
	"github.com/Fullex26/procnotify/internal/proctable"
	"github.com/Fullex26/procnotify/internal/store"
	"github.com/Fullex26/procnotify/internal/watchers"
	"github.com/Fullex26/procnotify/pkg/models"
)

// Version is set at build time via ldflags: -X github.com/Fullex26/procnotify/internal/monitor.Version=<tag>
var Version = "dev"

// Monitor runs one watch: a start notification, the watch itself and an
// end notification.
type Monitor struct {
	cfg        *config.Config
	bus        *eventbus.Bus
	journal    *store.Store
	table      proctable.Table
	dispatcher *notifiers.Dispatcher
	runner     *watchers.CommandRunner
	interval   time.Duration
	indicator  watchers.IndicatorFunc
	out        io.Writer
	errOut     io.Writer
	hostname   string

	// Name-mode sub-watchers are detached and may publish after Close.
	mu     sync.Mutex
	closed bool
}

// Option customises a Monitor.
type Option func(*Monitor)

// WithOutput sets where status lines and errors are printed.
func WithOutput(out, errOut io.Writer) Option {
	return func(m *Monitor) {
		m.out = out
		m.errOut = errOut
	}
}

// WithTable replaces the process table chosen by watch.probe.
func WithTable(t proctable.Table) Option {
	return func(m *Monitor) { m.table = t }
}

// WithIndicator sets the progress display factory. nil disables it.
func WithIndicator(f watchers.IndicatorFunc) Option {
	return func(m *Monitor) { m.indicator = f }
}

// WithNotifiers replaces the notifiers built from the config.
func WithNotifiers(ns ...notifiers.Notifier) Option {
	return func(m *Monitor) {
		m.dispatcher = notifiers.NewDispatcher(m.observeDelivery, ns...)
	}
}

// New creates a monitor from a validated config.
func New(cfg *config.Config, opts ...Option) (*Monitor, error) {
	interval, err := cfg.PollInterval()
	if err != nil {
		return nil, err
	}

	journal, err := store.Open(store.MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	hostname, _ := os.Hostname()
	m := &Monitor{
		cfg:      cfg,
		bus:      eventbus.New(),
		journal:  journal,
		interval: interval,
		out:      os.Stdout,
		errOut:   os.Stderr,
		hostname: hostname,
	}
	m.dispatcher = notifiers.NewDispatcher(m.observeDelivery, buildNotifiers(cfg)...)

	for _, opt := range opts {
		opt(m)
	}

	if m.table == nil {
		m.table, err = proctable.New(cfg.Watch.Probe)
		if err != nil {
			journal.Close()
			return nil, err
		}
	}
	m.runner = watchers.NewCommandRunner(cfg.Exec.Shell, cfg.Exec.CaptureLimit, m.out)

	m.bus.Subscribe(m.record)
	m.bus.Subscribe(func(e models.Event) { metrics.ObserveEvent(string(e.Type)) })
	return m, nil
}

func buildNotifiers(cfg *config.Config) []notifiers.Notifier {
	ns := []notifiers.Notifier{notifiers.NewTelegram(cfg.Notifications.Telegram)}
	if cfg.Notifications.Ntfy.Enabled {
		ns = append(ns, notifiers.NewNtfy(cfg.Notifications.Ntfy))
	}
	if cfg.Notifications.Discord.Enabled {
		ns = append(ns, notifiers.NewDiscord(cfg.Notifications.Discord))
	}
	if cfg.Notifications.Webhook.Enabled {
		ns = append(ns, notifiers.NewWebhook(cfg.Notifications.Webhook, Version))
	}
	return ns
}

// Close releases the journal. Events published afterwards are dropped.
func (m *Monitor) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.journal.Close()
}

// Journal exposes this run's event journal.
func (m *Monitor) Journal() *store.Store { return m.journal }

// Run watches target to completion and returns the process exit code.
func (m *Monitor) Run(ctx context.Context, target models.Target) int {
	if err := target.Validate(); err != nil {
		fmt.Fprintln(m.errOut, err)
		return 1
	}

	slog.Info("procnotify starting",
		"version", Version,
		"target", target.String(),
		"interval", m.interval,
		"notifiers", len(m.dispatcher.Notifiers()),
	)

	start := time.Now()
	var result models.Result
	var code int
	switch target.Kind {
	case models.TargetPID:
		result, code = m.runPID(ctx, target)
	case models.TargetName:
		result, code = m.runName(ctx, target)
	case models.TargetExec:
		var ok bool
		result, code, ok = m.runExec(ctx, target)
		if !ok {
			return code
		}
	}

	metrics.ObserveWatch(string(target.Kind), outcomeLabel(result), time.Since(start))
	terminations, _ := m.journal.EventCount(models.EventProcessTerminated)
	slog.Info("watch finished",
		"target", target.String(),
		"status", result.Status(),
		"exit_code", code,
		"terminations", terminations,
	)
	return code
}

func (m *Monitor) base() watchers.Base {
	return watchers.Base{
		Table:     m.table,
		Bus:       m.bus,
		Interval:  m.interval,
		Indicator: m.indicator,
		Out:       m.out,
	}
}

func (m *Monitor) runPID(ctx context.Context, target models.Target) (models.Result, int) {
	m.emit(ctx, models.EventWatchStarted, models.SeverityInfo, target, nil,
		fmt.Sprintf("Starting to monitor PID: %d", target.PID))

	result := watchers.NewPidWatcher(m.base(), target.PID, false).Watch(ctx)

	evType, sev, code := models.EventWatchFinished, models.SeverityInfo, 0
	if result.IsError() {
		evType, sev, code = models.EventWatchFailed, models.SeverityCritical, 1
	}
	m.emit(ctx, evType, sev, target, &result,
		fmt.Sprintf("Process %d has finished.", target.PID))
	return result, code
}

func (m *Monitor) runName(ctx context.Context, target models.Target) (models.Result, int) {
	m.emit(ctx, models.EventWatchStarted, models.SeverityInfo, target, nil,
		fmt.Sprintf("Monitoring processes named: %s", target.Name))

	w := watchers.NewNameWatcher(m.base(), target.Name, m.cfg.Watch.DedupePIDs)
	result := w.Watch(ctx)
	slog.Debug("name watch done", "name", target.Name, "subwatchers", w.Fanout().Spawned())

	evType, sev, code := models.EventWatchFinished, models.SeverityInfo, 0
	if result.IsError() {
		evType, sev, code = models.EventWatchFailed, models.SeverityCritical, 1
	}
	m.emit(ctx, evType, sev, target, &result,
		fmt.Sprintf("Processes '%s' have finished.", target.Name))
	return result, code
}

// runExec spawns before announcing anything. ok is false when the command
// never started.
func (m *Monitor) runExec(ctx context.Context, target models.Target) (models.Result, int, bool) {
	h, err := m.runner.Spawn(ctx, target.Command)
	if err != nil {
		fmt.Fprintf(m.errOut, "Failed to execute command: %v\n", err)
		return models.Result{}, 1, false
	}

	m.emit(ctx, models.EventCommandStarted, models.SeverityInfo, target, nil,
		fmt.Sprintf("Starting command: '%s'", target.Command))

	result := m.runner.Await(h)

	evType, sev := models.EventCommandSucceeded, models.SeverityInfo
	if !result.Success {
		evType, sev = models.EventCommandFailed, models.SeverityWarning
	}
	if !result.IsError() {
		metrics.ObserveCommandExit(result.ExitCode)
	}
	m.emit(ctx, evType, sev, target, &result,
		fmt.Sprintf("Command '%s' has finished.", target.Command))

	return result, m.execExitCode(result), true
}

func (m *Monitor) execExitCode(r models.Result) int {
	switch {
	case r.IsError():
		return 1
	case !m.cfg.Exec.MirrorExitCode:
		return 0
	case r.ExitCode < 0:
		// killed by a signal
		return 1
	}
	return r.ExitCode
}

// emit journals the event and sends it to every notifier.
func (m *Monitor) emit(ctx context.Context, evType models.EventType, sev models.Severity, target models.Target, result *models.Result, msg string) {
	event := models.Event{
		ID:        uuid.NewString(),
		Type:      evType,
		Severity:  sev,
		Hostname:  m.hostname,
		Timestamp: time.Now(),
		Message:   msg,
		Source:    string(target.Kind),
		Target:    &target,
		Result:    result,
	}
	if result != nil {
		event.Details = result.Status()
	}

	m.bus.Publish(event)
	if evType.Notifiable() {
		m.dispatcher.Notify(ctx, event)
	}
}

func (m *Monitor) record(event models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		slog.Debug("journal closed, dropping event", "event", event.Type)
		return
	}
	if err := m.journal.SaveEvent(event); err != nil {
		slog.Error("failed to journal event", "event", event.Type, "error", err)
	}
}

func (m *Monitor) observeDelivery(d notifiers.Delivery) {
	metrics.ObserveNotification(d.Notifier, d.Err, d.Duration)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if err := m.journal.RecordDelivery(d.EventID, d.Notifier, d.Err, d.Duration); err != nil {
		slog.Error("failed to journal delivery", "notifier", d.Notifier, "error", err)
	}
}

// TestNotifiers sends a test message to all configured notifiers. The
// attempt is journaled as a notify.test event.
func (m *Monitor) TestNotifiers(ctx context.Context) error {
	err := m.dispatcher.Test(ctx)

	event := models.Event{
		ID:        uuid.NewString(),
		Type:      models.EventNotifyTest,
		Severity:  models.SeverityInfo,
		Hostname:  m.hostname,
		Timestamp: time.Now(),
		Message:   "Test notification",
		Details:   "ok",
		Source:    "test",
	}
	if err != nil {
		event.Severity = models.SeverityWarning
		event.Details = "error: " + err.Error()
	}
	m.bus.Publish(event)
	return err
}

func outcomeLabel(r models.Result) string {
	switch {
	case r.IsError():
		return "error"
	case r.Success:
		return "success"
	case r.ExitCode != 0:
		return "failure"
	}
	return "terminated"
}
