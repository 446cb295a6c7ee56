package proctable

import (
	"context"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"

	"github.com/shirou/gopsutil/v3/process"
)

// Gopsutil reads the process table in-process instead of forking ps and
// pgrep on every tick.
type Gopsutil struct {
	self int32
}

func NewGopsutil() *Gopsutil {
	return &Gopsutil{self: int32(os.Getpid())}
}

// Alive reports false for pids that do not fit the OS pid type rather than
// letting them wrap onto a live low pid.
func (g *Gopsutil) Alive(ctx context.Context, pid int) (bool, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return false, nil
	}
	ok, err := process.PidExistsWithContext(ctx, int32(pid))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return ok, nil
}

// PidsByName matches name as a regular expression against each process
// name, like pgrep does.
func (g *Gopsutil) PidsByName(ctx context.Context, name string) ([]int, error) {
	re, err := regexp.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: bad pattern %q: %v", ErrLookupFailed, name, err)
	}

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	var pids []int
	for _, p := range procs {
		if p.Pid == g.self {
			continue
		}
		// Processes can exit between listing and reading their name.
		n, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if re.MatchString(n) {
			pids = append(pids, int(p.Pid))
		}
	}
	sort.Ints(pids)
	return pids, nil
}
