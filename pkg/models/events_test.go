package models

import "testing"

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityInfo, "info"},
		{SeverityWarning, "warning"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.sev, got, tt.want)
		}
	}
}

func TestSeverity_Emoji(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityInfo, "ℹ️"},
		{SeverityCritical, "🔴"},
		{SeverityWarning, "🟡"},
		{Severity(99), "🟡"}, // default case
	}
	for _, tt := range tests {
		if got := tt.sev.Emoji(); got != tt.want {
			t.Errorf("Severity(%d).Emoji() = %q, want %q", tt.sev, got, tt.want)
		}
	}
}

func TestEventType_Notifiable(t *testing.T) {
	tests := []struct {
		typ  EventType
		want bool
	}{
		{EventWatchStarted, true},
		{EventWatchFinished, true},
		{EventWatchFailed, true},
		{EventCommandStarted, true},
		{EventCommandFailed, true},
		{EventProcessTerminated, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			if got := tt.typ.Notifiable(); got != tt.want {
				t.Errorf("Notifiable() = %v, want %v", got, tt.want)
			}
		})
	}
}
