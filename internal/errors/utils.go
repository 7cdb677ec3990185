package errors

import (
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context, creating a FrozenError if the input is not already one
func Wrap(err error, errType ErrorType, code, message string) *FrozenError {
	if err == nil {
		return nil
	}

	var fe *FrozenError
	if errors.As(err, &fe) {
		return &FrozenError{
			Type:        errType,
			Code:        code,
			Message:     message,
			Cause:       fe,
			Path:        fe.Path,
			Context:     fe.Context,
			Recoverable: fe.Recoverable,
		}
	}

	return &FrozenError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WrapIO wraps an error as an I/O error on path.
func WrapIO(err error, path, message string) *FrozenError {
	fe := Wrap(err, ErrorTypeIO, ErrCodeIO, message)
	if fe != nil {
		fe.Path = path
	}
	return fe
}

// WrapConfig wraps an error as a configuration error
func WrapConfig(err error, message string) *FrozenError {
	return Wrap(err, ErrorTypeConfig, ErrCodeConfigInvalid, message)
}

// FormatError formats an error for user display, including suggestions.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var fe *FrozenError
	if !errors.As(err, &fe) {
		return err.Error()
	}

	result := fe.Error()
	if len(fe.Suggestions) > 0 {
		result += "\n\nSuggestions:"
		for _, suggestion := range fe.Suggestions {
			result += fmt.Sprintf("\n  • %s", suggestion)
		}
	}
	return result
}

// GetErrorContext extracts context information from a FrozenError
func GetErrorContext(err error) map[string]interface{} {
	var fe *FrozenError
	if errors.As(err, &fe) {
		context := make(map[string]interface{})
		for k, v := range fe.Context {
			context[k] = v
		}
		if fe.Path != "" {
			context["file"] = fe.Path
		}
		context["type"] = string(fe.Type)
		context["code"] = fe.Code
		context["warning"] = fe.Warning
		return context
	}

	return map[string]interface{}{
		"message": err.Error(),
		"type":    "unknown",
	}
}

// AsWarning marks err as non-fatal.
// A FrozenError keeps its type and code; any other error is wrapped as an
// internal one.
func AsWarning(err error) error {
	if err == nil || IsWarning(err) {
		return err
	}

	var fe *FrozenError
	if errors.As(err, &fe) {
		w := *fe
		w.Warning = true
		w.Recoverable = true
		return &w
	}

	w := Wrap(err, ErrorTypeInternal, ErrCodeInternalError, "non-fatal failure")
	w.Warning = true
	w.Recoverable = true
	return w
}
