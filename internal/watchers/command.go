package watchers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/Fullex26/procnotify/pkg/models"
)

// CommandRunner spawns a shell command and waits for it to exit.
type CommandRunner struct {
	shell        string
	captureLimit int
	out          io.Writer
}

func NewCommandRunner(shell string, captureLimit int, out io.Writer) *CommandRunner {
	if shell == "" {
		shell = "sh"
	}
	if out == nil {
		out = os.Stdout
	}
	return &CommandRunner{shell: shell, captureLimit: captureLimit, out: out}
}

// Handle is a running command.
type Handle struct {
	PID     int
	Command string
	Started time.Time

	cmd    *exec.Cmd
	stdout *tailBuffer
	stderr *tailBuffer

	once   sync.Once
	result models.Result
}

// Stdout returns the captured tail of the command's standard output. Only
// complete once Await has returned.
func (h *Handle) Stdout() string { return string(h.stdout.Bytes()) }

// Stderr returns the captured tail of the command's standard error.
func (h *Handle) Stderr() string { return string(h.stderr.Bytes()) }

// Spawn starts `<shell> -c command`. Output is captured, not shown. The
// error is returned before anything else happens, so callers can avoid
// announcing a command that never ran.
func (r *CommandRunner) Spawn(ctx context.Context, command string) (*Handle, error) {
	cmd := exec.CommandContext(ctx, r.shell, "-c", command)
	h := &Handle{
		Command: command,
		cmd:     cmd,
		stdout:  &tailBuffer{limit: r.captureLimit},
		stderr:  &tailBuffer{limit: r.captureLimit},
	}
	cmd.Stdout = h.stdout
	cmd.Stderr = h.stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting command: %w", err)
	}
	h.PID = cmd.Process.Pid
	h.Started = time.Now()

	fmt.Fprintf(r.out, "Started command '%s', PID: %d\n", command, h.PID)
	return h, nil
}

// Await blocks on the OS wait for the child and classifies its exit.
// Calling it again returns the same result.
func (r *CommandRunner) Await(h *Handle) models.Result {
	h.once.Do(func() {
		h.result = r.wait(h)
	})
	return h.result
}

func (r *CommandRunner) wait(h *Handle) models.Result {
	err := h.cmd.Wait()

	var result models.Result
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result = models.Exited(h.PID, 0)
	case errors.As(err, &exitErr):
		// ExitCode is -1 when the child was killed by a signal.
		result = models.Exited(h.PID, exitErr.ExitCode())
	default:
		fmt.Fprintf(os.Stderr, "Error waiting for process to finish: %v\n", err)
		return models.Failed(h.PID, err)
	}

	slog.Debug("command exited",
		"pid", h.PID,
		"exit_code", result.ExitCode,
		"elapsed", time.Since(h.Started).Round(time.Millisecond),
		"stdout", h.Stdout(),
		"stderr", h.Stderr(),
	)

	if result.Success {
		fmt.Fprintln(r.out, "Process finished successfully.")
	} else {
		fmt.Fprintln(r.out, "Process finished with an error.")
	}
	return result
}

// tailBuffer keeps the last limit bytes written to it. A limit of zero or
// less keeps nothing.
type tailBuffer struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.limit <= 0 {
		return len(p), nil
	}
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = append(b.buf[:0:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf...)
}
