package proctable

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
)

// PS queries the process table through ps(1) and pgrep(1).
type PS struct {
	self int
	run  func(ctx context.Context, name string, args ...string) ([]byte, error) // injectable for tests
}

func NewPS() *PS {
	return &PS{
		self: os.Getpid(),
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// Alive runs `ps -o pid= -p <pid>`. The header is suppressed so an empty
// answer means the pid is gone.
func (p *PS) Alive(ctx context.Context, pid int) (bool, error) {
	out, err := p.run(ctx, "ps", "-o", "pid=", "-p", strconv.Itoa(pid))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// ps exits non-zero when the selection is empty.
			return false, nil
		}
		return false, fmt.Errorf("%w: ps: %v", ErrLookupFailed, err)
	}
	return slices.Contains(parsePIDs(out, 0), pid), nil
}

// PidsByName runs `pgrep <name>`. Exit status 1 is pgrep's "no processes
// matched"; anything else is a failed lookup.
func (p *PS) PidsByName(ctx context.Context, name string) ([]int, error) {
	out, err := p.run(ctx, "pgrep", name)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: pgrep %s: %v", ErrLookupFailed, name, err)
	}
	return parsePIDs(out, p.self), nil
}
