package assets

import (
	"context"
	"errors"

	ferrors "github.com/conneroisu/frozen/internal/errors"
)

// Group is a generated module fed by the first existing candidate file,
// e.g. logo_resources from logo.ico, logo.png or logo.jpg.
type Group struct {
	Module     string
	Candidates []string
}

// EmbedGroups embeds each group in order. A group without any existing
// candidate is logged and skipped. An error is returned only when no group
// produced a module, or when writing a module failed.
func (e *Embedder) EmbedGroups(ctx context.Context, groups []Group) ([]*Module, error) {
	var modules []*Module

	for _, g := range groups {
		candidate, ok := e.firstExisting(g.Candidates)
		if !ok {
			e.logger.Info(ctx, "No candidate file found for module", "module", g.Module, "candidates", g.Candidates)
			continue
		}

		module, err := e.Embed(ctx, []string{candidate}, g.Module)
		if err != nil {
			if errors.Is(err, ferrors.ErrNoAssets) {
				continue
			}
			return modules, err
		}
		modules = append(modules, module)
	}

	if len(modules) == 0 {
		return nil, ferrors.NewNoAssetsProducedError("any resource group")
	}
	return modules, nil
}

func (e *Embedder) firstExisting(candidates []string) (string, bool) {
	for _, c := range candidates {
		info, err := e.fs.Stat(e.abs(c))
		if err == nil && !info.IsDir() {
			return c, true
		}
	}
	return "", false
}
