// Package pipeline runs one packaging pass: resolve the configuration, build
// the command, execute the packaging tool and, only if it succeeded, clean up
// and assemble the distribution directory.
//
// Every stage runs to completion before the next one starts.
package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/conneroisu/frozen/internal/command"
	"github.com/conneroisu/frozen/internal/config"
	"github.com/conneroisu/frozen/internal/dist"
	ferrors "github.com/conneroisu/frozen/internal/errors"
	"github.com/conneroisu/frozen/internal/executor"
	"github.com/conneroisu/frozen/internal/logging"
)

// Stage names reported to an Observer.
const (
	StageResolve  = "resolve"
	StageCommand  = "command"
	StageExecute  = "execute"
	StageCleanup  = "cleanup"
	StageAssemble = "assemble"
	StageVerify   = "verify"
)

// Observer receives progress as the pipeline advances. The CLI uses it to
// print human-readable output.
type Observer interface {
	StageStarted(stage string)
	CommandBuilt(inv command.Invocation)
	BuildFinished(result *executor.Result)
	Removed(path string)
	Copied(path string)
	Verified(v dist.Verification)
	Warning(err error)
}

// Report collects everything one run produced.
type Report struct {
	RunID        string
	Config       config.BuildConfig
	Invocation   command.Invocation
	Result       *executor.Result
	Removed      []string
	Copied       []string
	Verification dist.Verification
	Warnings     []error
}

// Options tune a run.
type Options struct {
	// DryRun stops after the command is built.
	DryRun bool
	// SkipCleanup keeps the build directory and descriptor.
	SkipCleanup bool
}

// Pipeline wires the stages together.
type Pipeline struct {
	fs       afero.Fs
	dir      string
	opts     config.Options
	runner   executor.Runner
	logger   logging.Logger
	observer Observer
}

// New creates a pipeline over the working directory dir. The option set is
// cloned so later changes by the caller are not observed.
func New(fs afero.Fs, dir string, opts config.Options, runner executor.Runner, logger logging.Logger, observer Observer) *Pipeline {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Pipeline{
		fs:       fs,
		dir:      dir,
		opts:     opts.Clone(),
		runner:   runner,
		logger:   logger,
		observer: observer,
	}
}

// Layout returns the post-build file layout for the option set.
func (p *Pipeline) Layout() dist.Layout {
	return dist.Layout{
		BuildDir:   p.opts.BuildDir,
		SpecFile:   p.opts.SpecFile(),
		DistDir:    p.opts.DistDir,
		Files:      p.opts.DistFiles,
		Executable: p.opts.ExecutableName(),
	}
}

// Run executes the pipeline. A failed build returns the report so far and a
// BuildToolInvocation error carrying the tool's stderr; cleanup and assembly
// do not run in that case. Warnings never cause an error return.
func (p *Pipeline) Run(ctx context.Context, runOpts Options) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	issues := ferrors.NewCollector()
	logger := p.logger.With("run_id", report.RunID).WithComponent("pipeline")
	op := logging.StartOperation(logger, "package")

	p.observer.StageStarted(StageResolve)
	report.Config = config.Resolve(p.fs, p.dir, p.opts)
	logger.Info(ctx, "Resolved build configuration",
		"script", report.Config.Script,
		"icon", report.Config.Icon,
		"datas", len(report.Config.Datas))

	p.observer.StageStarted(StageCommand)
	report.Invocation = command.Build(report.Config)
	p.observer.CommandBuilt(report.Invocation)

	if runOpts.DryRun {
		op.End(ctx)
		return report, nil
	}

	assembler := dist.NewAssembler(p.fs, p.dir, p.Layout(), logger)
	exec := executor.New(p.runner, p.dir,
		executor.WithArtifact(assembler.ExecutablePath()),
		executor.WithTimeout(p.opts.Timeout),
		executor.WithLogger(logger))

	p.observer.StageStarted(StageExecute)
	report.Result = exec.Run(ctx, report.Invocation)
	p.observer.BuildFinished(report.Result)
	if err := report.Result.Err(report.Invocation.Program()); err != nil {
		logger.Debug(ctx, "Build failure details", "details", ferrors.GetErrorContext(err))
		op.EndWithError(ctx, err)
		return report, err
	}

	if !runOpts.SkipCleanup {
		p.observer.StageStarted(StageCleanup)
		removed, err := assembler.Cleanup(ctx)
		report.Removed = removed
		for _, r := range removed {
			p.observer.Removed(r)
		}
		if err != nil {
			p.warn(report, issues, err)
		}
	}

	p.observer.StageStarted(StageAssemble)
	copied, err := assembler.Assemble(ctx)
	report.Copied = copied
	for _, c := range copied {
		p.observer.Copied(c)
	}
	if err != nil {
		if !dirExists(p.fs, assembler.DistDir()) {
			op.EndWithError(ctx, err)
			return report, err
		}
		p.warn(report, issues, err)
	}

	p.observer.StageStarted(StageVerify)
	report.Verification, err = assembler.Verify(ctx)
	p.observer.Verified(report.Verification)
	if err != nil {
		p.warn(report, issues, err)
	}

	op.End(ctx)
	return report, nil
}

func (p *Pipeline) warn(report *Report, issues *ferrors.Collector, err error) {
	issues.Add(err)
	report.Warnings = issues.Warnings()
	p.observer.Warning(err)
}

func dirExists(fs afero.Fs, path string) bool {
	ok, err := afero.IsDir(fs, path)
	return err == nil && ok
}

// IsBuildFailure reports whether err came from the packaging tool itself.
func IsBuildFailure(err error) bool {
	return errors.Is(err, ferrors.ErrBuildTool)
}

type nopObserver struct{}

func (nopObserver) StageStarted(string)             {}
func (nopObserver) CommandBuilt(command.Invocation) {}
func (nopObserver) BuildFinished(*executor.Result)  {}
func (nopObserver) Removed(string)                  {}
func (nopObserver) Copied(string)                   {}
func (nopObserver) Verified(dist.Verification)      {}
func (nopObserver) Warning(error)                   {}
