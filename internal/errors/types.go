package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeAsset    ErrorType = "asset"
	ErrorTypeBuild    ErrorType = "build"
	ErrorTypeArtifact ErrorType = "artifact"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeMissingAsset    = "ERR_MISSING_ASSET"
	ErrCodeNoAssets        = "ERR_NO_ASSETS"
	ErrCodeBuildTool       = "ERR_BUILD_TOOL"
	ErrCodeToolNotFound    = "ERR_TOOL_NOT_FOUND"
	ErrCodeMissingArtifact = "ERR_MISSING_ARTIFACT"
	ErrCodeConfigInvalid   = "ERR_CONFIG_INVALID"
	ErrCodeIO              = "ERR_IO"
	ErrCodeInternalError   = "ERR_INTERNAL"
)

// FrozenError is a structured error type with context.
type FrozenError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Path        string
	Context     map[string]interface{}
	Suggestions []string
	// Warning marks conditions that are reported but never abort a run.
	Warning     bool
	Recoverable bool
}

// Error implements the error interface.
func (e *FrozenError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, e.Path+":")
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FrozenError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *FrozenError) Is(target error) bool {
	var t *FrozenError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FrozenError) WithContext(key string, value interface{}) *FrozenError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithSuggestions appends hints shown to the user alongside the error.
func (e *FrozenError) WithSuggestions(suggestions ...string) *FrozenError {
	e.Suggestions = append(e.Suggestions, suggestions...)

	return e
}

// Sentinels for errors.Is comparisons. Only Type and Code take part in Is.
var (
	ErrMissingAsset    = &FrozenError{Type: ErrorTypeAsset, Code: ErrCodeMissingAsset}
	ErrNoAssets        = &FrozenError{Type: ErrorTypeAsset, Code: ErrCodeNoAssets}
	ErrBuildTool       = &FrozenError{Type: ErrorTypeBuild, Code: ErrCodeBuildTool}
	ErrToolNotFound    = &FrozenError{Type: ErrorTypeBuild, Code: ErrCodeToolNotFound}
	ErrMissingArtifact = &FrozenError{Type: ErrorTypeArtifact, Code: ErrCodeMissingArtifact}
	ErrConfigInvalid   = &FrozenError{Type: ErrorTypeConfig, Code: ErrCodeConfigInvalid}
)

// NewMissingAssetWarning reports an asset file that does not exist.
func NewMissingAssetWarning(path string) *FrozenError {
	return &FrozenError{
		Type:        ErrorTypeAsset,
		Code:        ErrCodeMissingAsset,
		Message:     "asset file does not exist",
		Path:        path,
		Warning:     true,
		Recoverable: true,
	}
}

// NewNoAssetsProducedError reports an embed step that produced zero entries.
func NewNoAssetsProducedError(module string) *FrozenError {
	return &FrozenError{
		Type:        ErrorTypeAsset,
		Code:        ErrCodeNoAssets,
		Message:     "no asset data produced for module " + module,
		Recoverable: true,
	}
}

// NewBuildToolError reports a packaging tool that exited non-zero. The
// captured stderr is kept verbatim in Context["stderr"].
func NewBuildToolError(tool string, exitCode int, stderr string) *FrozenError {
	e := &FrozenError{
		Type:    ErrorTypeBuild,
		Code:    ErrCodeBuildTool,
		Message: fmt.Sprintf("%s exited with code %d", tool, exitCode),
	}

	return e.WithContext("stderr", stderr).WithContext("exit_code", exitCode)
}

// NewToolNotFoundError reports a packaging tool missing from PATH.
func NewToolNotFoundError(tool string, cause error) *FrozenError {
	return &FrozenError{
		Type:    ErrorTypeBuild,
		Code:    ErrCodeToolNotFound,
		Message: tool + " is not installed",
		Cause:   cause,
	}
}

// NewMissingArtifactWarning reports an executable absent after a successful build.
func NewMissingArtifactWarning(path string) *FrozenError {
	return &FrozenError{
		Type:        ErrorTypeArtifact,
		Code:        ErrCodeMissingArtifact,
		Message:     "expected executable not found",
		Path:        path,
		Warning:     true,
		Recoverable: true,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(message string) *FrozenError {
	return &FrozenError{
		Type:    ErrorTypeConfig,
		Code:    ErrCodeConfigInvalid,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(path, message string, cause error) *FrozenError {
	return &FrozenError{
		Type:    ErrorTypeIO,
		Code:    ErrCodeIO,
		Message: message,
		Path:    path,
		Cause:   cause,
	}
}

// IsWarning reports whether err is a non-fatal condition.
func IsWarning(err error) bool {
	var fe *FrozenError
	if errors.As(err, &fe) {
		return fe.Warning
	}

	return false
}

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var fe *FrozenError
	if errors.As(err, &fe) {
		return fe.Recoverable
	}

	return false
}

// Stderr returns the captured tool output attached to a build tool error.
func Stderr(err error) string {
	var fe *FrozenError
	if errors.As(err, &fe) && fe.Context != nil {
		if s, ok := fe.Context["stderr"].(string); ok {
			return s
		}
	}

	return ""
}
