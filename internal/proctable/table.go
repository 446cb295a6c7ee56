// Package proctable answers the two questions the watchers ask of the OS
// process table: is this pid alive, and which pids carry this name.
package proctable

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrLookupFailed means the query itself could not run, as opposed to
// running and finding nothing.
var ErrLookupFailed = errors.New("process lookup failed")

// Table is a read-only view of the process table.
type Table interface {
	// Alive reports whether pid currently has an entry.
	Alive(ctx context.Context, pid int) (bool, error)
	// PidsByName lists pids whose process name matches name, pgrep style.
	// No matches is an empty slice and a nil error.
	PidsByName(ctx context.Context, name string) ([]int, error)
}

// New returns the backend selected by the watch.probe setting.
func New(probe string) (Table, error) {
	switch strings.ToLower(probe) {
	case "", "ps":
		return NewPS(), nil
	case "gopsutil":
		return NewGopsutil(), nil
	}
	return nil, fmt.Errorf("unknown process probe %q", probe)
}

// parsePIDs reads one pid per line, skipping blanks and anything that is
// not a positive integer.
func parsePIDs(out []byte, exclude int) []int {
	var pids []int
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		pid, err := strconv.Atoi(line)
		if err != nil || pid <= 0 || pid == exclude {
			continue
		}
		pids = append(pids, pid)
	}
	return pids
}
