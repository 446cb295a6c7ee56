package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTarget is returned by Target.Validate.
var ErrInvalidTarget = errors.New("invalid watch target")

// TargetKind selects the watch strategy.
type TargetKind string

const (
	TargetPID  TargetKind = "pid"
	TargetName TargetKind = "name"
	TargetExec TargetKind = "exec"
)

// Target describes what a single invocation watches.
type Target struct {
	Kind    TargetKind `json:"kind"`
	PID     int        `json:"pid,omitempty"`
	Name    string     `json:"name,omitempty"`
	Command string     `json:"command,omitempty"`
}

func ByPID(pid int) Target { return Target{Kind: TargetPID, PID: pid} }
func ByName(name string) Target { return Target{Kind: TargetName, Name: name} }
func ByCommand(command string) Target { return Target{Kind: TargetExec, Command: command} }

// MaxPID is the largest pid any supported OS hands out.
const MaxPID = math.MaxInt32

// ParsePID parses a command-line pid argument.
func ParsePID(s string) (Target, error) {
	pid, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Target{}, fmt.Errorf("%w: pid %q is out of range", ErrInvalidTarget, s)
		}
		return Target{}, fmt.Errorf("%w: pid %q is not a number", ErrInvalidTarget, s)
	}
	t := ByPID(int(pid))
	return t, t.Validate()
}

// Validate checks the kind-specific field.
func (t Target) Validate() error {
	switch t.Kind {
	case TargetPID:
		if t.PID <= 0 {
			return fmt.Errorf("%w: pid must be positive, got %d", ErrInvalidTarget, t.PID)
		}
		if t.PID > MaxPID {
			return fmt.Errorf("%w: pid %d is out of range", ErrInvalidTarget, t.PID)
		}
	case TargetName:
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("%w: process name is empty", ErrInvalidTarget)
		}
	case TargetExec:
		if strings.TrimSpace(t.Command) == "" {
			return fmt.Errorf("%w: command is empty", ErrInvalidTarget)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidTarget, t.Kind)
	}
	return nil
}

func (t Target) String() string {
	switch t.Kind {
	case TargetPID:
		return fmt.Sprintf("PID %d", t.PID)
	case TargetName:
		return fmt.Sprintf("processes named '%s'", t.Name)
	case TargetExec:
		return fmt.Sprintf("command '%s'", t.Command)
	}
	return "unknown target"
}

// Outcome is the terminal state of a watch.
type Outcome string

const (
	OutcomeTerminated Outcome = "terminated"
	OutcomeError      Outcome = "error"
)

// Result is what a watcher reports once, when its loop exits.
type Result struct {
	Outcome Outcome `json:"outcome"`
	PID     int     `json:"pid,omitempty"`

	// Set for spawned commands only.
	Success  bool `json:"success"`
	ExitCode int  `json:"exit_code"`

	Err error `json:"-"`
}

// Terminated builds a plain termination result.
func Terminated(pid int) Result {
	return Result{Outcome: OutcomeTerminated, PID: pid}
}

// Failed builds an error result.
func Failed(pid int, err error) Result {
	return Result{Outcome: OutcomeError, PID: pid, Err: err}
}

// Exited builds the result of a spawned command that ran to completion.
func Exited(pid, code int) Result {
	return Result{Outcome: OutcomeTerminated, PID: pid, Success: code == 0, ExitCode: code}
}

func (r Result) IsError() bool { return r.Outcome == OutcomeError }

// Status renders the outcome for humans.
func (r Result) Status() string {
	switch {
	case r.IsError():
		if r.Err != nil {
			return "error: " + r.Err.Error()
		}
		return "error"
	case r.Success:
		return "success"
	case r.ExitCode != 0:
		return fmt.Sprintf("failure (exit status %d)", r.ExitCode)
	}
	return "terminated"
}
