package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/frozen/internal/command"
	ferrors "github.com/conneroisu/frozen/internal/errors"
)

// fakeRunner records calls and plays back a canned outcome.
type fakeRunner struct {
	calls  [][]string
	dirs   []string
	output Output
	err    error
	runFn  func(ctx context.Context, dir string, argv []string) (Output, error)
}

func (f *fakeRunner) Run(ctx context.Context, dir string, argv []string) (Output, error) {
	f.calls = append(f.calls, append([]string(nil), argv...))
	f.dirs = append(f.dirs, dir)
	if f.runFn != nil {
		return f.runFn(ctx, dir, argv)
	}
	return f.output, f.err
}

func TestExecutor_Success(t *testing.T) {
	runner := &fakeRunner{output: Output{Stdout: []byte("building..."), ExitCode: 0}}
	exec := New(runner, "/work", WithArtifact("/work/dist/App"))

	inv := command.Invocation{"pyinstaller", "--onefile", "main.py"}
	result := exec.Run(context.Background(), inv)

	assert.True(t, result.Success)
	assert.Equal(t, "building...", result.Stdout)
	assert.Equal(t, "/work/dist/App", result.Artifact)
	assert.NoError(t, result.Err("pyinstaller"))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string(inv), runner.calls[0])
	assert.Equal(t, "/work", runner.dirs[0])
}

func TestExecutor_NonZeroExit(t *testing.T) {
	stderr := "ERROR: Script file 'main.py' does not exist.\n"
	runner := &fakeRunner{output: Output{Stderr: []byte(stderr), ExitCode: 1}}
	exec := New(runner, "/work")

	result := exec.Run(context.Background(), command.Invocation{"pyinstaller", "main.py"})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.ExitCode)
	assert.Equal(t, stderr, result.Stderr)

	err := result.Err("pyinstaller")
	require.Error(t, err)
	assert.ErrorIs(t, err, ferrors.ErrBuildTool)
	assert.Equal(t, stderr, ferrors.Stderr(err))
	assert.Len(t, runner.calls, 1, "failed builds are not retried")
}

func TestExecutor_StartFailure(t *testing.T) {
	runner := &fakeRunner{output: Output{ExitCode: -1}, err: errors.New(`exec: "pyinstaller": executable file not found in $PATH`)}
	exec := New(runner, "/work")

	result := exec.Run(context.Background(), command.Invocation{"pyinstaller", "main.py"})

	assert.False(t, result.Success)
	assert.Equal(t, -1, result.ExitCode)
	assert.Contains(t, result.Stderr, "executable file not found")
}

func TestExecutor_Timeout(t *testing.T) {
	runner := &fakeRunner{runFn: func(ctx context.Context, dir string, argv []string) (Output, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
		return Output{}, nil
	}}

	result := New(runner, "/work", WithTimeout(time.Minute)).Run(context.Background(), command.Invocation{"t"})
	assert.True(t, result.Success)
}

func TestExecutor_NoTimeoutByDefault(t *testing.T) {
	runner := &fakeRunner{runFn: func(ctx context.Context, dir string, argv []string) (Output, error) {
		_, ok := ctx.Deadline()
		assert.False(t, ok)
		return Output{}, nil
	}}

	New(runner, "/work").Run(context.Background(), command.Invocation{"t"})
}

func TestExecutor_ToolVersion(t *testing.T) {
	t.Run("installed", func(t *testing.T) {
		runner := &fakeRunner{output: Output{Stdout: []byte("6.3.0\n")}}
		version, err := New(runner, "/work").ToolVersion(context.Background(), "pyinstaller")
		require.NoError(t, err)
		assert.Equal(t, "6.3.0", version)
		assert.Equal(t, []string{"pyinstaller", "--version"}, runner.calls[0])
	})

	t.Run("missing", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("not found")}
		_, err := New(runner, "/work").ToolVersion(context.Background(), "pyinstaller")
		require.Error(t, err)
		assert.ErrorIs(t, err, ferrors.ErrToolNotFound)
		assert.Contains(t, ferrors.FormatError(err), "pip install pyinstaller")
	})
}

func TestProcessRunner_CapturesStreamsSeparately(t *testing.T) {
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}

	out, err := ProcessRunner{}.Run(context.Background(), t.TempDir(), []string{sh, "-c", "echo out; echo err >&2; exit 3"})
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(out.Stdout))
	assert.Equal(t, "err\n", string(out.Stderr))
	assert.Equal(t, 3, out.ExitCode)
}

func TestProcessRunner_MissingScript(t *testing.T) {
	cat, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}
	dir := t.TempDir()
	_, statErr := os.Stat(filepath.Join(dir, "main.py"))
	require.True(t, os.IsNotExist(statErr))

	result := New(ProcessRunner{}, dir).Run(context.Background(), command.Invocation{cat, "main.py"})

	assert.False(t, result.Success)
	assert.NotZero(t, result.ExitCode)
	assert.NotEmpty(t, result.Stderr)
}

func TestProcessRunner_UnknownProgram(t *testing.T) {
	out, err := ProcessRunner{}.Run(context.Background(), t.TempDir(), []string{"frozen-no-such-tool-xyz"})
	assert.Error(t, err)
	assert.Equal(t, -1, out.ExitCode)

	_, err = ProcessRunner{}.Run(context.Background(), "", nil)
	assert.Error(t, err)
}
