// Package executor runs the packaging tool as a child process and records
// its outcome.
package executor

import (
	"context"
	"strings"
	"time"

	"github.com/conneroisu/frozen/internal/command"
	ferrors "github.com/conneroisu/frozen/internal/errors"
	"github.com/conneroisu/frozen/internal/logging"
)

// Result is the outcome of one packaging run. Success is true exactly when
// the tool exited with code zero.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Artifact string
	Duration time.Duration
}

// Err returns a BuildToolInvocation error for an unsuccessful result and
// nil otherwise. The tool's stderr is carried verbatim.
func (r *Result) Err(tool string) error {
	if r.Success {
		return nil
	}
	return ferrors.NewBuildToolError(tool, r.ExitCode, r.Stderr)
}

// Executor runs invocations in a working directory.
type Executor struct {
	runner   Runner
	dir      string
	artifact string
	timeout  time.Duration
	logger   logging.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithArtifact sets the path the produced executable is expected at.
func WithArtifact(path string) Option {
	return func(e *Executor) { e.artifact = path }
}

// WithTimeout bounds each run. Zero waits for the tool indefinitely.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) { e.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Executor. A nil runner means ProcessRunner.
func New(runner Runner, dir string, opts ...Option) *Executor {
	if runner == nil {
		runner = ProcessRunner{}
	}
	e := &Executor{
		runner: runner,
		dir:    dir,
		logger: logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("executor")
	return e
}

// Run executes inv and blocks until the tool exits. A failed run is never
// retried.
func (e *Executor) Run(ctx context.Context, inv command.Invocation) *Result {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	e.logger.Info(ctx, "Running packaging tool", "tool", inv.Program(), "args", len(inv.Args()))

	start := time.Now()
	out, err := e.runner.Run(ctx, e.dir, inv)
	result := &Result{
		ExitCode: out.ExitCode,
		Stdout:   string(out.Stdout),
		Stderr:   string(out.Stderr),
		Artifact: e.artifact,
		Duration: time.Since(start),
	}

	if err != nil {
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		if strings.TrimSpace(result.Stderr) == "" {
			result.Stderr = err.Error()
		}
		e.logger.Error(ctx, err, "Packaging tool could not be run", "tool", inv.Program())
		return result
	}

	result.Success = out.ExitCode == 0
	if result.Success {
		e.logger.Info(ctx, "Packaging tool finished", "duration_ms", result.Duration.Milliseconds())
	} else {
		e.logger.Error(ctx, result.Err(inv.Program()), "Packaging tool failed", "exit_code", result.ExitCode)
	}
	return result
}

// ToolVersion runs "<tool> --version" and returns its trimmed output. A
// tool that cannot be started yields a ToolNotFound error.
func (e *Executor) ToolVersion(ctx context.Context, tool string) (string, error) {
	out, err := e.runner.Run(ctx, e.dir, []string{tool, "--version"})
	if err != nil {
		return "", ferrors.NewToolNotFoundError(tool, err).
			WithSuggestions("pip install " + tool)
	}
	if out.ExitCode != 0 {
		return "", ferrors.NewBuildToolError(tool, out.ExitCode, string(out.Stderr))
	}
	return strings.TrimSpace(string(out.Stdout)), nil
}
