package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrozenError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *FrozenError
		expected string
	}{
		{
			name:     "missing asset warning",
			err:      NewMissingAssetWarning("logo.ico"),
			expected: "[ERR_MISSING_ASSET] logo.ico: asset file does not exist",
		},
		{
			name:     "no assets",
			err:      NewNoAssetsProducedError("logo_resources"),
			expected: "[ERR_NO_ASSETS] no asset data produced for module logo_resources",
		},
		{
			name:     "io error with cause",
			err:      NewIOError("dist", "create directory", fmt.Errorf("permission denied")),
			expected: "[ERR_IO] dist: create directory: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestFrozenError_Is(t *testing.T) {
	err := fmt.Errorf("stage failed: %w", NewBuildToolError("pyinstaller", 1, "boom"))

	assert.True(t, errors.Is(err, ErrBuildTool))
	assert.False(t, errors.Is(err, ErrNoAssets))
	assert.Equal(t, "boom", Stderr(err))
}

func TestWarnings(t *testing.T) {
	assert.True(t, IsWarning(NewMissingAssetWarning("a.png")))
	assert.True(t, IsWarning(NewMissingArtifactWarning("dist/app.exe")))
	assert.False(t, IsWarning(NewNoAssetsProducedError("m")))
	assert.False(t, IsWarning(errors.New("plain")))
	assert.True(t, IsRecoverable(NewNoAssetsProducedError("m")))
	assert.False(t, IsRecoverable(NewBuildToolError("t", 2, "")))
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	c.Add(nil)
	c.Add(NewMissingAssetWarning("a.png"))
	c.Add(NewMissingArtifactWarning("dist/app"))
	c.Add(NewBuildToolError("pyinstaller", 1, "bad"))

	warnings := c.Warnings()
	require.Len(t, warnings, 3)
	for _, w := range warnings {
		assert.True(t, IsWarning(w))
	}
	assert.ErrorIs(t, warnings[2], ErrBuildTool)

	warnings[0] = nil
	assert.NotNil(t, c.Warnings()[0], "Warnings returns a copy")
}

func TestFormatError(t *testing.T) {
	err := NewToolNotFoundError("pyinstaller", errors.New("not in PATH")).
		WithSuggestions("pip install pyinstaller")

	formatted := FormatError(err)
	assert.Contains(t, formatted, "pyinstaller is not installed")
	assert.Contains(t, formatted, "Suggestions:")
	assert.Contains(t, formatted, "pip install pyinstaller")

	assert.Equal(t, "plain", FormatError(errors.New("plain")))
	assert.Empty(t, FormatError(nil))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, ErrCodeIO, "x"))

	inner := NewMissingAssetWarning("a.png")
	wrapped := WrapIO(inner, "b.png", "copy failed")
	require.NotNil(t, wrapped)
	assert.Equal(t, "b.png", wrapped.Path)
	assert.Equal(t, inner, wrapped.Unwrap())

	ctx := GetErrorContext(NewBuildToolError("pyinstaller", 3, "trace"))
	assert.Equal(t, "build", ctx["type"])
	assert.Equal(t, 3, ctx["exit_code"])
	assert.Equal(t, "trace", ctx["stderr"])
}

func TestAsWarning(t *testing.T) {
	assert.Nil(t, AsWarning(nil))

	missing := NewMissingArtifactWarning("dist/App.exe")
	assert.Same(t, missing, AsWarning(missing))

	ioErr := WrapIO(errors.New("permission denied"), "dist/README.md", "copy")
	w := AsWarning(ioErr)
	assert.True(t, IsWarning(w))
	assert.True(t, IsRecoverable(w))
	assert.ErrorIs(t, w, &FrozenError{Type: ErrorTypeIO, Code: ErrCodeIO})
	assert.False(t, IsWarning(ioErr), "original is left untouched")

	plain := AsWarning(errors.New("boom"))
	assert.True(t, IsWarning(plain))
}
