package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

func (vr *ValidationResult) add(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{
		Field:       field,
		Value:       value,
		Message:     message,
		Suggestions: suggestions,
	})
}

// String joins every error into a single line.
func (vr *ValidationResult) String() string {
	parts := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(parts, "; ")
}

// Suggestions returns the suggestions of every error in order.
func (vr *ValidationResult) Suggestions() []string {
	var out []string
	for _, err := range vr.Errors {
		out = append(out, err.Suggestions...)
	}
	return out
}

var dangerousChars = []string{";", "&", "|", "$", "`", "<", ">", "\"", "'"}

// ValidateOptions checks an option set for values the packaging tool or the
// post-build steps cannot handle safely.
func ValidateOptions(opts Options) *ValidationResult {
	result := &ValidationResult{}

	if strings.TrimSpace(opts.Tool) == "" {
		result.add("tool", opts.Tool, "packaging tool must be set", "set tool: pyinstaller")
	} else if c := findDangerous(opts.Tool); c != "" {
		result.add("tool", opts.Tool, "contains dangerous character "+c)
	}

	if strings.TrimSpace(opts.Script) == "" {
		result.add("script", opts.Script, "entry-point script must be set", "set script: main.py")
	}

	switch {
	case strings.TrimSpace(opts.Name) == "":
		result.add("name", opts.Name, "output name must be set")
	case strings.ContainsAny(opts.Name, `/\`) || strings.Contains(opts.Name, ".."):
		result.add("name", opts.Name, "output name must be a plain file name")
	}

	if opts.Optimize < 0 || opts.Optimize > 2 {
		result.add("optimize", opts.Optimize, "optimization level must be 0, 1 or 2")
	}

	if opts.Timeout < 0 {
		result.add("timeout", opts.Timeout, "timeout must not be negative", "use 0 to wait indefinitely")
	}

	for field, dir := range map[string]string{"build_dir": opts.BuildDir, "dist_dir": opts.DistDir} {
		if err := validateRelativePath(dir); err != nil {
			result.add(field, dir, err.Error())
		}
	}

	for i, d := range opts.Datas {
		if d.Source == "" || d.Dest == "" {
			result.add(fmt.Sprintf("datas[%d]", i), d, "source and dest are both required")
		}
	}

	// dist_files are copied flat into the distribution directory.
	seen := make(map[string]string, len(opts.DistFiles))
	for _, f := range opts.DistFiles {
		if err := validateRelativePath(f); err != nil {
			result.add("dist_files", f, err.Error())
			continue
		}
		base := filepath.Base(f)
		if prev, ok := seen[base]; ok {
			result.add("dist_files", f, fmt.Sprintf("file name %s is also used by %s", base, prev),
				"rename one of the files")
			continue
		}
		seen[base] = f
	}

	if opts.DataSeparator == "" {
		result.add("data_separator", opts.DataSeparator, "data separator must not be empty")
	}

	for i, g := range opts.Embed.Groups {
		if g.Module == "" {
			result.add(fmt.Sprintf("embed.groups[%d].module", i), g.Module, "module name is required")
		}
	}

	return result
}

// validateRelativePath rejects empty, absolute and traversing paths.
func validateRelativePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)
	if filepath.IsAbs(cleanPath) {
		return fmt.Errorf("path should be relative: %s", path)
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path contains traversal: %s", path)
	}
	if c := findDangerous(cleanPath); c != "" {
		return fmt.Errorf("path contains dangerous character: %s", c)
	}

	return nil
}

func findDangerous(s string) string {
	for _, char := range dangerousChars {
		if strings.Contains(s, char) {
			return char
		}
	}
	return ""
}
