package assets

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	ferrors "github.com/conneroisu/frozen/internal/errors"
)

// Entry is one assignment read back from a generated module.
type Entry struct {
	Identifier string
	Data       string
}

// Decode returns the raw bytes of the entry.
func (e Entry) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(e.Data)
}

// ParseModule reads the assignments of a generated module in file order.
// Blank lines and comment lines are ignored.
func ParseModule(r io.Reader) ([]Entry, error) {
	// Lines hold whole files in base64, so no fixed line limit applies.
	reader := bufio.NewReader(r)
	var entries []Entry

	for lineNo := 1; ; lineNo++ {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			entry, perr := parseAssignment(trimmed)
			if perr != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, perr)
			}
			entries = append(entries, entry)
		}

		if errors.Is(err, io.EOF) {
			return entries, nil
		}
	}
}

func parseAssignment(line string) (Entry, error) {
	name, value, ok := strings.Cut(line, "=")
	if !ok {
		return Entry{}, fmt.Errorf("expected assignment, got %q", truncate(line))
	}
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if name == "" {
		return Entry{}, fmt.Errorf("missing identifier")
	}
	if len(value) < 2 || value[0] != '"' || value[len(value)-1] != '"' {
		return Entry{}, fmt.Errorf("value of %s is not a quoted string", name)
	}
	return Entry{Identifier: name, Data: value[1 : len(value)-1]}, nil
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

// FileName guesses the original file name of an identifier by turning its
// last "_" back into a ".": "logo_ico" becomes "logo.ico".
func FileName(identifier string) string {
	i := strings.LastIndex(identifier, "_")
	if i <= 0 || i == len(identifier)-1 {
		return identifier
	}
	return identifier[:i] + "." + identifier[i+1:]
}

// Extract decodes the entry named identifier from the module at modulePath
// and writes it to dest.
func Extract(fs afero.Fs, modulePath, identifier, dest string) error {
	f, err := fs.Open(modulePath)
	if err != nil {
		return ferrors.WrapIO(err, modulePath, "open module")
	}
	defer f.Close()

	entries, err := ParseModule(f)
	if err != nil {
		return ferrors.WrapIO(err, modulePath, "parse module")
	}

	for _, entry := range entries {
		if entry.Identifier != identifier {
			continue
		}
		data, err := entry.Decode()
		if err != nil {
			return ferrors.WrapIO(err, modulePath, "decode "+identifier)
		}
		if dir := filepath.Dir(dest); dir != "." {
			if err := fs.MkdirAll(dir, 0o755); err != nil {
				return ferrors.WrapIO(err, dir, "create directory")
			}
		}
		if err := afero.WriteFile(fs, dest, data, 0o644); err != nil {
			return ferrors.WrapIO(err, dest, "write asset")
		}
		return nil
	}

	return ferrors.NewIOError(modulePath, "no entry named "+identifier, nil)
}
