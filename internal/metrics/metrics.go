// Package metrics exposes Prometheus instrumentation for watch runs.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	polls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procnotify",
		Name:      "polls_total",
		Help:      "Process table queries issued, by watcher kind.",
	}, []string{"watcher"})

	subwatchersSpawned = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "procnotify",
		Name:      "subwatchers_spawned_total",
		Help:      "Silent pid watchers started by the name fan-out.",
	})

	subwatchersActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "procnotify",
		Name:      "subwatchers_active",
		Help:      "Silent pid watchers currently running.",
	})

	notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procnotify",
		Name:      "notifications_total",
		Help:      "Notification deliveries by notifier and result.",
	}, []string{"notifier", "result"})

	notifyLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "procnotify",
		Name:      "notification_duration_seconds",
		Help:      "Time spent delivering one notification.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"notifier"})

	watches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procnotify",
		Name:      "watches_total",
		Help:      "Completed watches by target kind and outcome.",
	}, []string{"kind", "outcome"})

	watchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "procnotify",
		Name:      "watch_duration_seconds",
		Help:      "Wall time from start to end of a watch.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"kind"})

	commandExits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procnotify",
		Name:      "command_exits_total",
		Help:      "Exit statuses of spawned commands.",
	}, []string{"code"})

	events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "procnotify",
		Name:      "events_total",
		Help:      "Lifecycle events published, by type.",
	}, []string{"type"})
)

func init() {
	registry.MustRegister(polls, subwatchersSpawned, subwatchersActive,
		notifications, notifyLatency, watches, watchDuration, commandExits, events)
}

// Registry returns the Prometheus registry containing all procnotify metrics.
func Registry() *prometheus.Registry {
	return registry
}

// ObservePoll counts one process table query.
func ObservePoll(watcher string) {
	polls.WithLabelValues(watcher).Inc()
}

func IncSubwatchersSpawned() { subwatchersSpawned.Inc() }
func SubwatcherStarted()     { subwatchersActive.Inc() }
func SubwatcherDone()        { subwatchersActive.Dec() }

// ObserveNotification records one delivery attempt.
func ObserveNotification(notifier string, err error, d time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notifications.WithLabelValues(notifier, result).Inc()
	notifyLatency.WithLabelValues(notifier).Observe(d.Seconds())
}

// ObserveWatch records a finished watch.
func ObserveWatch(kind, outcome string, d time.Duration) {
	watches.WithLabelValues(kind, outcome).Inc()
	watchDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveCommandExit records the exit status of a spawned command.
func ObserveCommandExit(code int) {
	commandExits.WithLabelValues(strconv.Itoa(code)).Inc()
}

// ObserveEvent counts one published lifecycle event.
func ObserveEvent(evType string) {
	events.WithLabelValues(evType).Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
