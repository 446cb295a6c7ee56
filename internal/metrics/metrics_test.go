package metrics_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Fullex26/procnotify/internal/metrics"
)

func TestRegistryExposesMetrics(t *testing.T) {
	metrics.ObservePoll("metrics_test")
	metrics.ObserveNotification("metrics_test_notifier", nil, 20*time.Millisecond)
	metrics.ObserveNotification("metrics_test_notifier", errors.New("down"), time.Millisecond)
	metrics.ObserveWatch("metrics_test_kind", "terminated", 3*time.Second)
	metrics.ObserveCommandExit(3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("unexpected status code from metrics handler: %d", rec.Code)
	}

	body := rec.Body.String()
	for _, line := range []string{
		`procnotify_polls_total{watcher="metrics_test"} 1`,
		`procnotify_notifications_total{notifier="metrics_test_notifier",result="ok"} 1`,
		`procnotify_notifications_total{notifier="metrics_test_notifier",result="error"} 1`,
		`procnotify_watches_total{kind="metrics_test_kind",outcome="terminated"} 1`,
		`procnotify_command_exits_total{code="3"}`,
	} {
		if !strings.Contains(body, line) {
			t.Errorf("expected metric line %q in body:\n%s", line, body)
		}
	}
}

func TestSubwatcherGauge(t *testing.T) {
	before, err := testutil.GatherAndCount(metrics.Registry(), "procnotify_subwatchers_active")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if before != 1 {
		t.Fatalf("expected one subwatchers_active series, got %d", before)
	}

	metrics.SubwatcherStarted()
	metrics.SubwatcherStarted()
	metrics.SubwatcherDone()
	metrics.SubwatcherDone()

	expected := `
# HELP procnotify_subwatchers_active Silent pid watchers currently running.
# TYPE procnotify_subwatchers_active gauge
procnotify_subwatchers_active 0
`
	if err := testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "procnotify_subwatchers_active"); err != nil {
		t.Error(err)
	}
}

func TestObserveEvent(t *testing.T) {
	metrics.ObserveEvent("metrics_test.event")
	metrics.ObserveEvent("metrics_test.event")

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}).
		ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	want := `procnotify_events_total{type="metrics_test.event"} 2`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("expected %q in body:\n%s", want, rec.Body.String())
	}
}
