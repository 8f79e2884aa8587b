// Package execx runs the external toolchain (git, the converter, the
// quantizer) and reports exit status and captured output.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// maxCapture bounds how much stderr a streamed command keeps for diagnostics.
const maxCapture = 64 << 10

// waitDelay is how long Wait keeps copying output after ctx is done or the
// child exited while a grandchild still holds its stdio.
const waitDelay = 2 * time.Second

// Cmd describes one external program invocation.
type Cmd struct {
	Path string
	Args []string
	Env  map[string]string // additional env vars
	Dir  string            // working directory
	// Optional tee targets; output is captured either way.
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the invocation for logs.
func (c Cmd) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Result is what a finished command left behind.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands. Pipeline stages only talk to this interface so
// tests can substitute a recorder.
type Runner interface {
	// Run blocks until the command exits, capturing stdout and stderr.
	Run(ctx context.Context, c Cmd) (Result, error)
	// Stream blocks until the command exits, calling onLine for every stderr
	// line as it arrives. Lines end at \n, \r or \r\n; longer runs are
	// delivered in chunks. onLine is called from a single goroutine.
	// Stdout is discarded.
	Stream(ctx context.Context, c Cmd, onLine func(string)) (Result, error)
}

// ExitError is returned when a command ran but exited non-zero.
type ExitError struct {
	Cmd    string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
}

// ExitCode extracts the exit status from err, or -1 when err is not an ExitError.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return -1
}

// ExecRunner is the os/exec backed Runner. Started processes are registered
// with Procs (when set) until they exit.
type ExecRunner struct {
	Procs *ProcManager
}

// NewExecRunner returns a runner tracking children in the default manager.
func NewExecRunner() *ExecRunner { return &ExecRunner{Procs: defaultProcManager} }

func (r *ExecRunner) command(ctx context.Context, c Cmd) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	if c.Dir != "" {
		cmd.Dir = c.Dir
	}
	cmd.WaitDelay = waitDelay
	// inherit environment
	cmd.Env = os.Environ()
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, c.Env[k]))
	}
	return cmd
}

func (r *ExecRunner) Run(ctx context.Context, c Cmd) (Result, error) {
	cmd := r.command(ctx, c)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = tee(&stdout, c.Stdout)
	cmd.Stderr = tee(&stderr, c.Stderr)
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("start %s: %w", c.Path, err)
	}
	r.track(cmd)
	err := cmd.Wait()
	r.untrack(cmd)
	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode(cmd)}
	return res, wrapWait(ctx, c, res, err)
}

func (r *ExecRunner) Stream(ctx context.Context, c Cmd, onLine func(string)) (Result, error) {
	cmd := r.command(ctx, c)
	cmd.Stdout = io.Discard
	if c.Stdout != nil {
		cmd.Stdout = c.Stdout
	}
	tail := &tailBuffer{max: maxCapture}
	lw := newLineWriter(maxLine, func(line string) {
		tail.WriteLine(line)
		if onLine != nil {
			onLine(line)
		}
	})
	// Not a pipe we read ourselves: exec copies stderr and WaitDelay bounds
	// that copy once ctx is done.
	cmd.Stderr = lw
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("start %s: %w", c.Path, err)
	}
	r.track(cmd)
	err := cmd.Wait()
	r.untrack(cmd)
	lw.Flush()
	res := Result{Stderr: tail.String(), ExitCode: exitCode(cmd)}
	return res, wrapWait(ctx, c, res, err)
}

func (r *ExecRunner) track(cmd *exec.Cmd) {
	if r.Procs != nil {
		r.Procs.Add(cmd)
	}
}

func (r *ExecRunner) untrack(cmd *exec.Cmd) {
	if r.Procs != nil {
		r.Procs.Remove(cmd)
	}
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

func wrapWait(ctx context.Context, c Cmd, res Result, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", c.Path, ctxErr)
	}
	// the program succeeded; only a lingering grandchild kept stdio open
	if errors.Is(err, exec.ErrWaitDelay) && res.ExitCode == 0 {
		return nil
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Cmd: c.String(), Code: res.ExitCode, Stderr: res.Stderr}
	}
	return fmt.Errorf("%s: %w", c.Path, err)
}

// tailBuffer keeps the most recent lines up to max bytes.
type tailBuffer struct {
	max   int
	size  int
	lines []string
}

func (t *tailBuffer) WriteLine(line string) {
	t.lines = append(t.lines, line)
	t.size += len(line) + 1
	for t.size > t.max && len(t.lines) > 1 {
		t.size -= len(t.lines[0]) + 1
		t.lines = t.lines[1:]
	}
}

func (t *tailBuffer) String() string {
	if len(t.lines) == 0 {
		return ""
	}
	return strings.Join(t.lines, "\n") + "\n"
}
