// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/frozen/internal/config"
	"github.com/conneroisu/frozen/internal/executor"
)

// WriteFiles creates each named file under dir. The content of a file is
// "content of <name>" so tests can recognise copies.
func WriteFiles(t *testing.T, fs afero.Fs, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(dir, f)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(Content(f)), 0o644))
	}
}

// Content is what WriteFiles stores for name.
func Content(name string) string {
	return "content of " + name
}

// AssertExists fails the test unless path exists on fs.
func AssertExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.True(t, ok, "expected %s to exist", path)
}

// AssertNotExists fails the test if path exists on fs.
func AssertNotExists(t *testing.T, fs afero.Fs, path string) {
	t.Helper()
	ok, err := afero.Exists(fs, path)
	require.NoError(t, err)
	assert.False(t, ok, "expected %s to be absent", path)
}

// PackagingTool imitates the packaging tool on fs. It answers --version
// when Version is set, fails like the real tool when the script is
// missing, and otherwise writes the build directory, the build descriptor
// and the executable named by Options. Messages is written to stderr on a
// successful build.
type PackagingTool struct {
	Fs           afero.Fs
	Options      config.Options
	Version      string
	FailWith     string
	Messages     string
	SkipArtifact bool
	Calls        [][]string
}

var _ executor.Runner = (*PackagingTool)(nil)

// Run implements executor.Runner.
func (p *PackagingTool) Run(ctx context.Context, dir string, argv []string) (executor.Output, error) {
	p.Calls = append(p.Calls, append([]string(nil), argv...))

	if len(argv) == 2 && argv[1] == "--version" {
		if p.Version == "" {
			return executor.Output{ExitCode: -1}, &os.PathError{Op: "exec", Path: argv[0], Err: os.ErrNotExist}
		}
		return executor.Output{Stdout: []byte(p.Version + "\n")}, nil
	}

	if p.FailWith != "" {
		return executor.Output{Stderr: []byte(p.FailWith), ExitCode: 1}, nil
	}

	script := argv[len(argv)-1]
	if ok, _ := afero.Exists(p.Fs, filepath.Join(dir, script)); !ok {
		return executor.Output{
			Stderr:   []byte("ERROR: Script file '" + script + "' does not exist.\n"),
			ExitCode: 1,
		}, nil
	}

	outputs := []string{
		filepath.Join(dir, p.Options.BuildDir, p.Options.Name, "warn-"+p.Options.Name+".txt"),
		filepath.Join(dir, p.Options.SpecFile()),
	}
	if !p.SkipArtifact {
		outputs = append(outputs, filepath.Join(dir, p.Options.DistDir, p.Options.ExecutableName()))
	}
	for _, path := range outputs {
		if err := p.Fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return executor.Output{ExitCode: -1}, err
		}
		if err := afero.WriteFile(p.Fs, path, []byte("generated"), 0o755); err != nil {
			return executor.Output{ExitCode: -1}, err
		}
	}
	return executor.Output{
		Stdout: []byte("Building EXE completed successfully.\n"),
		Stderr: []byte(p.Messages),
	}, nil
}

// BuildCalls returns the recorded invocations other than --version checks.
func (p *PackagingTool) BuildCalls() [][]string {
	var calls [][]string
	for _, c := range p.Calls {
		if len(c) == 2 && c[1] == "--version" {
			continue
		}
		calls = append(calls, c)
	}
	return calls
}
