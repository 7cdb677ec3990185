package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Output is what a finished process left behind.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner starts a process from an argument vector and waits for it.
// A process that ran and exited non-zero is not an error: the exit code is
// reported in Output. An error means the process could not be run at all.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) (Output, error)
}

// ProcessRunner runs real child processes through os/exec.
type ProcessRunner struct{}

// Run implements Runner.
func (ProcessRunner) Run(ctx context.Context, dir string, argv []string) (Output, error) {
	if len(argv) == 0 {
		return Output{ExitCode: -1}, fmt.Errorf("empty argument vector")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err == nil {
		return out, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			out.ExitCode = -1
			return out, fmt.Errorf("%s interrupted: %w", argv[0], ctx.Err())
		}
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}

	out.ExitCode = -1
	return out, err
}
