package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/conneroisu/frozen/internal/command"
	"github.com/conneroisu/frozen/internal/dist"
	"github.com/conneroisu/frozen/internal/executor"
	"github.com/conneroisu/frozen/internal/pipeline"
)

const rule = "=================================================="

// textObserver prints pipeline progress for humans. Tool stderr goes to
// errOut unmodified.
type textObserver struct {
	out    io.Writer
	errOut io.Writer
}

var _ pipeline.Observer = (*textObserver)(nil)

func newTextObserver(out, errOut io.Writer) *textObserver {
	return &textObserver{out: out, errOut: errOut}
}

func (o *textObserver) printf(format string, args ...interface{}) {
	fmt.Fprintf(o.out, format, args...)
}

func (o *textObserver) banner(title string) {
	o.printf("%s\n%s\n%s\n", rule, title, rule)
}

func (o *textObserver) StageStarted(stage string) {
	switch stage {
	case pipeline.StageExecute:
		o.printf("Running packaging tool...\n")
	case pipeline.StageCleanup:
		o.printf("\nCleaning up build files\n")
	case pipeline.StageAssemble:
		o.printf("\nAssembling distribution folder\n")
	}
}

func (o *textObserver) CommandBuilt(inv command.Invocation) {
	o.printf("Command:\n%s\n\n%s\n\n", inv.String(), rule)
}

func (o *textObserver) BuildFinished(result *executor.Result) {
	if out := strings.TrimRight(result.Stdout, "\n"); out != "" {
		o.printf("Tool output:\n%s\n", out)
	}

	if !result.Success {
		o.printf("\nPackaging failed (exit code %d) after %s\n", result.ExitCode, result.Duration.Round(time.Millisecond))
		o.stderr("Tool error output:", result.Stderr)
		return
	}

	// The tool logs its progress and hidden-import warnings to stderr even
	// when it succeeds.
	o.stderr("Tool messages:", result.Stderr)
	o.printf("\n%s\nPackaging succeeded in %s\n", rule, result.Duration.Round(time.Millisecond))
}

func (o *textObserver) stderr(title, text string) {
	if text == "" {
		return
	}
	fmt.Fprintf(o.errOut, "%s\n%s", title, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(o.errOut)
	}
}

func (o *textObserver) Removed(path string) {
	o.printf("  removed: %s\n", path)
}

func (o *textObserver) Copied(path string) {
	o.printf("  copied:  %s\n", path)
}

func (o *textObserver) Verified(v dist.Verification) {
	if !v.Found {
		return
	}
	o.printf("\nExecutable:\n  %s\n  size: %s\n", v.Path, v.HumanSize())
}

func (o *textObserver) Warning(err error) {
	fmt.Fprintf(o.errOut, "Warning: %v\n", err)
}

// usage prints distribution instructions after a successful build.
func (o *textObserver) usage(executable string) {
	o.printf("\nUsage:\n")
	o.printf("  1. Copy the files in the distribution folder anywhere\n")
	o.printf("  2. Run '%s'\n", executable)
	o.printf("  3. No interpreter or other dependencies need to be installed\n")
}
