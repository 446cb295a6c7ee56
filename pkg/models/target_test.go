package models

import (
	"errors"
	"strings"
	"testing"
)

func TestTarget_Validate(t *testing.T) {
	tests := []struct {
		name    string
		target  Target
		wantErr bool
	}{
		{"pid ok", ByPID(42), false},
		{"pid zero", ByPID(0), true},
		{"pid negative", ByPID(-7), true},
		{"pid max", ByPID(MaxPID), false},
		{"pid above int32", ByPID(MaxPID + 1), true},
		{"pid wraps to 1 as int32", ByPID(1<<32 + 1), true},
		{"name ok", ByName("nginx"), false},
		{"name empty", ByName(""), true},
		{"name blank", ByName("   "), true},
		{"exec ok", ByCommand("sleep 1"), false},
		{"exec empty", ByCommand(""), true},
		{"unknown kind", Target{Kind: "tree"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("error %v should wrap ErrInvalidTarget", err)
			}
		})
	}
}

func TestParsePID(t *testing.T) {
	got, err := ParsePID(" 1234 ")
	if err != nil {
		t.Fatalf("ParsePID() error: %v", err)
	}
	if got.Kind != TargetPID || got.PID != 1234 {
		t.Errorf("ParsePID() = %+v", got)
	}

	for _, bad := range []string{"abc", "", "0", "-5", "12x", "2147483648", "4294967297", "99999999999999999999"} {
		if _, err := ParsePID(bad); err == nil {
			t.Errorf("ParsePID(%q) should fail", bad)
		} else if !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("ParsePID(%q) error %v should wrap ErrInvalidTarget", bad, err)
		}
	}

	got, err = ParsePID("2147483647")
	if err != nil || got.PID != MaxPID {
		t.Errorf("ParsePID(max) = %+v, %v", got, err)
	}
}

func TestParsePID_OutOfRangeMessage(t *testing.T) {
	_, err := ParsePID("4294967297")
	if err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("error = %v, want out of range", err)
	}
}

func TestTarget_String(t *testing.T) {
	tests := []struct {
		target Target
		want   string
	}{
		{ByPID(7), "PID 7"},
		{ByName("nginx"), "processes named 'nginx'"},
		{ByCommand("make all"), "command 'make all'"},
		{Target{}, "unknown target"},
	}
	for _, tt := range tests {
		if got := tt.target.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestResult_Status(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{"terminated", Terminated(10), "terminated"},
		{"success", Exited(10, 0), "success"},
		{"failure", Exited(10, 3), "failure (exit status 3)"},
		{"error", Failed(0, errors.New("pgrep missing")), "error: pgrep missing"},
		{"bare error", Result{Outcome: OutcomeError}, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExited_Classification(t *testing.T) {
	if r := Exited(1, 0); !r.Success || r.IsError() {
		t.Errorf("exit 0 should be success: %+v", r)
	}
	r := Exited(1, 3)
	if r.Success {
		t.Error("exit 3 should not be success")
	}
	if r.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", r.ExitCode)
	}
	if !strings.Contains(r.Status(), "3") {
		t.Errorf("Status() = %q should mention the exit code", r.Status())
	}
}
