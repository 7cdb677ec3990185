// Package dist tidies the working tree after a successful packaging run and
// assembles the distribution directory.
package dist

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	ferrors "github.com/conneroisu/frozen/internal/errors"
	"github.com/conneroisu/frozen/internal/logging"
)

// Layout names the files the assembler touches, relative to the working
// directory.
type Layout struct {
	BuildDir   string
	SpecFile   string
	DistDir    string
	Files      []string
	Executable string
}

// Verification reports whether the produced executable is where it should be.
type Verification struct {
	Path  string
	Found bool
	Size  int64
}

// HumanSize formats Size for display, e.g. "12 MB".
func (v Verification) HumanSize() string {
	return humanize.Bytes(uint64(v.Size))
}

// Assembler performs the post-build steps.
type Assembler struct {
	fs     afero.Fs
	dir    string
	layout Layout
	logger logging.Logger
}

// NewAssembler creates an Assembler for the working directory dir.
func NewAssembler(fs afero.Fs, dir string, layout Layout, logger logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Assembler{
		fs:     fs,
		dir:    dir,
		layout: layout,
		logger: logger.WithComponent("assembler"),
	}
}

func (a *Assembler) path(rel string) string {
	return filepath.Join(a.dir, rel)
}

// DistDir returns the absolute distribution directory.
func (a *Assembler) DistDir() string {
	return a.path(a.layout.DistDir)
}

// ExecutablePath returns where the produced executable is expected.
func (a *Assembler) ExecutablePath() string {
	return filepath.Join(a.DistDir(), a.layout.Executable)
}

// Cleanup removes the intermediate build directory and the build descriptor.
// Entries that do not exist are ignored. It returns what was removed.
func (a *Assembler) Cleanup(ctx context.Context) ([]string, error) {
	var removed []string

	for _, rel := range []string{a.layout.BuildDir, a.layout.SpecFile} {
		if rel == "" {
			continue
		}
		target := a.path(rel)
		exists, err := afero.Exists(a.fs, target)
		if err != nil {
			return removed, ferrors.WrapIO(err, target, "stat transient artifact")
		}
		if !exists {
			continue
		}
		if err := a.fs.RemoveAll(target); err != nil {
			return removed, ferrors.WrapIO(err, target, "remove transient artifact")
		}
		a.logger.Info(ctx, "Removed transient artifact", "path", rel)
		removed = append(removed, rel)
	}

	return removed, nil
}

// Assemble creates the distribution directory if needed and copies each
// auxiliary file into it. Missing sources are skipped silently; a failure on
// one file does not stop the others. It returns the copied files and the
// first copy error, if any.
func (a *Assembler) Assemble(ctx context.Context) ([]string, error) {
	distDir := a.DistDir()
	if err := a.fs.MkdirAll(distDir, 0o755); err != nil {
		return nil, ferrors.WrapIO(err, distDir, "create distribution directory")
	}

	var copied []string
	var firstErr error

	for _, rel := range a.layout.Files {
		src := a.path(rel)
		info, err := a.fs.Stat(src)
		if err != nil || info.IsDir() {
			a.logger.Debug(ctx, "Auxiliary file not present, skipping", "path", rel)
			continue
		}

		dst := filepath.Join(distDir, filepath.Base(rel))
		if err := copyFile(a.fs, src, dst, info); err != nil {
			a.logger.Warn(ctx, err, "Failed to copy auxiliary file", "path", rel)
			if firstErr == nil {
				firstErr = ferrors.WrapIO(err, rel, "copy to distribution directory")
			}
			continue
		}
		a.logger.Info(ctx, "Copied auxiliary file", "path", rel)
		copied = append(copied, rel)
	}

	return copied, firstErr
}

// Verify checks for the produced executable. A missing executable yields a
// MissingArtifact warning in the second return value; it never fails the run.
func (a *Assembler) Verify(ctx context.Context) (Verification, error) {
	v := Verification{Path: a.ExecutablePath()}

	info, err := a.fs.Stat(v.Path)
	if err != nil || info.IsDir() {
		warning := ferrors.NewMissingArtifactWarning(v.Path)
		a.logger.Debug(ctx, "Executable not found after build", "path", v.Path)
		return v, warning
	}

	v.Found = true
	v.Size = info.Size()
	a.logger.Info(ctx, "Executable ready", "path", v.Path, "size", v.HumanSize())
	return v, nil
}

// copyFile copies src to dst keeping permission bits and modification time.
func copyFile(fs afero.Fs, src, dst string, info os.FileInfo) error {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if err := fs.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return fs.Chtimes(dst, info.ModTime(), info.ModTime())
}
