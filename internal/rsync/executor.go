package rsync

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Output is the captured result of one external process run.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success reports whether the process exited with status 0.
func (o Output) Success() bool {
	return o.ExitCode == 0
}

// Executor runs an external command synchronously and captures its output.
//
// Implementations return a non-nil error only when the process could not be
// started at all (binary missing, not executable). A process that ran and
// exited non-zero is reported through Output.ExitCode with a nil error, so
// callers decide what a failing exit status means.
type Executor interface {
	Execute(ctx context.Context, name string, args []string) (Output, error)
}

// ExecExecutor implements Executor using os/exec.
type ExecExecutor struct{}

// NewExecExecutor creates an Executor backed by real system processes.
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Execute runs name with args and blocks until it exits.
//
// stdout and stderr are captured into separate buffers so the caller can
// forward the transfer log on success and the error text on failure.
func (e *ExecExecutor) Execute(ctx context.Context, name string, args []string) (Output, error) {
	// #nosec G204 -- args come from BuildArgs and validated configuration
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// -1 when the process was killed by a signal.
			out.ExitCode = exitErr.ExitCode()
			return out, nil
		}
		return out, fmt.Errorf("failed to start %s: %w", name, err)
	}
	return out, nil
}
