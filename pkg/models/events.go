package models

import "time"

// Severity levels for events
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	}
	return "unknown"
}

func (s Severity) Emoji() string {
	switch s {
	case SeverityInfo:
		return "ℹ️"
	case SeverityCritical:
		return "🔴"
	default:
		return "🟡"
	}
}

// EventType categorises what happened
type EventType string

const (
	EventWatchStarted      EventType = "watch.started"
	EventWatchFinished     EventType = "watch.finished"
	EventWatchFailed       EventType = "watch.failed"
	EventCommandStarted    EventType = "command.started"
	EventCommandSucceeded  EventType = "command.succeeded"
	EventCommandFailed     EventType = "command.failed"
	EventProcessTerminated EventType = "process.terminated" // per-pid, journal and metrics only
	EventNotifyTest        EventType = "notify.test"
)

// Notifiable reports whether events of this type are delivered to notifiers.
func (t EventType) Notifiable() bool {
	return t != EventProcessTerminated
}

// Event is the core event structure that flows through the system
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Severity  Severity  `json:"severity"`
	Hostname  string    `json:"hostname"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Details   string    `json:"details"`
	Source    string    `json:"source"` // Which watcher generated this

	// Optional typed payloads
	Target *Target `json:"target,omitempty"`
	Result *Result `json:"result,omitempty"`
}
