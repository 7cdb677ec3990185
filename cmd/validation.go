package cmd

import (
	"fmt"
	"strings"
	"unicode"

	ferrors "github.com/conneroisu/frozen/internal/errors"
)

// validateModuleName rejects module names that would place the generated
// file outside the working directory or that cannot be imported.
func validateModuleName(name, ext string) error {
	if err := validatePlainName("module name", name); err != nil {
		return err
	}
	if ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return validateIdentifier(name)
}

// validatePlainName rejects empty values and anything that reads as a path.
func validatePlainName(what, s string) error {
	if s == "" {
		return ferrors.NewConfigError(what + " is empty")
	}
	if strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return ferrors.NewConfigError(fmt.Sprintf("%s %q must be a plain name, not a path", what, s)).
			WithSuggestions("use --dir to choose the working directory")
	}
	return nil
}

// validateIdentifier checks that s is usable as an import name: letters,
// digits and underscores, not starting with a digit.
func validateIdentifier(s string) error {
	if s == "" {
		return ferrors.NewConfigError("identifier is empty")
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return ferrors.NewConfigError(fmt.Sprintf("%q is not a valid identifier: unexpected %q", s, r))
	}
	return nil
}
