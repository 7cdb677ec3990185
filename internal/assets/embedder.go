// Package assets converts binary resource files into generated source
// modules so an entry-point script can carry its images inside a single
// executable.
//
// A generated module is a flat list of assignments, one per asset:
//
//	logo_ico = "AAABAAEAEBAAAAEAIABoBAAAFgAAACgAAAAQAAAAIAAAAAEAIAAAAAAAAAQAA..."
//
// The identifier is derived from the file name (see Identifier) and the value
// is the standard, padded base64 encoding of the file content.
package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	ferrors "github.com/conneroisu/frozen/internal/errors"
	"github.com/conneroisu/frozen/internal/logging"
)

// Header is written at the top of every generated module.
const Header = "# -*- coding: utf-8 -*-\n" +
	"# Code generated by frozen embed. DO NOT EDIT.\n" +
	"# Image resources bundled into the executable as base64 strings.\n\n"

// DefaultExtension is appended to module names that carry none.
const DefaultExtension = ".py"

// Asset is one embedded file.
type Asset struct {
	Path       string
	Content    []byte
	Identifier string
}

// Encoded returns the base64 form of the asset content.
func (a Asset) Encoded() string {
	return base64.StdEncoding.EncodeToString(a.Content)
}

// Module describes a generated module.
type Module struct {
	Name     string
	Path     string
	Assets   []Asset
	Skipped  []string
	Warnings []error
}

// Embedder writes generated modules into a working directory.
type Embedder struct {
	fs        afero.Fs
	dir       string
	extension string
	logger    logging.Logger
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithExtension sets the file extension of generated modules.
func WithExtension(ext string) Option {
	return func(e *Embedder) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		e.extension = ext
	}
}

// WithLogger sets the logger used for progress and warnings. A nil logger
// keeps the default.
func WithLogger(logger logging.Logger) Option {
	return func(e *Embedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEmbedder creates an embedder rooted at dir. Relative asset paths and
// module names are resolved against dir.
func NewEmbedder(fs afero.Fs, dir string, opts ...Option) *Embedder {
	e := &Embedder{
		fs:        fs,
		dir:       dir,
		extension: DefaultExtension,
		logger:    logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("embedder")
	return e
}

// ModuleFile returns the path of the file written for moduleName.
func (e *Embedder) ModuleFile(moduleName string) string {
	name := moduleName
	if e.extension != "" && !strings.HasSuffix(name, e.extension) {
		name += e.extension
	}
	return e.abs(name)
}

func (e *Embedder) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.dir, path)
}

// Embed reads every existing file in paths, in order, and writes one
// assignment per file to the module named moduleName. Missing files are
// skipped with a warning. When nothing could be read the module is not
// written and a NoAssetsProduced error is returned. An existing module file
// is always overwritten.
func (e *Embedder) Embed(ctx context.Context, paths []string, moduleName string) (*Module, error) {
	module := &Module{
		Name: moduleName,
		Path: e.ModuleFile(moduleName),
	}
	ids := make(identifierSet, len(paths))

	e.logger.Info(ctx, "Embedding assets", "module", module.Path, "candidates", len(paths))

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		full := e.abs(p)
		info, err := e.fs.Stat(full)
		if err != nil || info.IsDir() {
			warning := ferrors.NewMissingAssetWarning(p)
			e.logger.Debug(ctx, "Asset file not found, skipping", "path", p, "error", warning)
			module.Skipped = append(module.Skipped, p)
			module.Warnings = append(module.Warnings, warning)
			continue
		}

		content, err := afero.ReadFile(e.fs, full)
		if err != nil {
			return nil, ferrors.WrapIO(err, p, "read asset")
		}

		asset := Asset{
			Path:       p,
			Content:    content,
			Identifier: ids.claim(Identifier(p)),
		}
		e.logger.Debug(ctx, "Converted asset", "path", p, "identifier", asset.Identifier, "bytes", len(content))
		module.Assets = append(module.Assets, asset)
	}

	if len(module.Assets) == 0 {
		err := ferrors.NewNoAssetsProducedError(moduleName)
		e.logger.Debug(ctx, "No asset data produced", "module", moduleName)
		return module, err
	}

	if err := afero.WriteFile(e.fs, module.Path, Render(module.Assets), 0o644); err != nil {
		return nil, ferrors.WrapIO(err, module.Path, "write module")
	}

	e.logger.Info(ctx, "Generated module", "module", module.Path, "assets", len(module.Assets))
	return module, nil
}

// Render produces the module source for assets: the header followed by one
// assignment per line in the given order.
func Render(assets []Asset) []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	for _, a := range assets {
		fmt.Fprintf(&buf, "%s = \"%s\"\n", a.Identifier, a.Encoded())
	}
	return buf.Bytes()
}
