//go:build property

package assets

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/spf13/afero"
)

// TestEmbedProperties checks that every existing path yields exactly one
// assignment, in input order, and every missing path is skipped.
func TestEmbedProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("one assignment per existing path in order", prop.ForAll(
		func(exists []bool) bool {
			fs := afero.NewMemMapFs()
			paths := make([]string, len(exists))
			var want []string
			var wantSkipped []string

			for i, ok := range exists {
				paths[i] = fmt.Sprintf("asset%d.png", i)
				if ok {
					if err := afero.WriteFile(fs, filepath.Join("/w", paths[i]), []byte{byte(i)}, 0o644); err != nil {
						return false
					}
					want = append(want, paths[i])
				} else {
					wantSkipped = append(wantSkipped, paths[i])
				}
			}

			module, err := NewEmbedder(fs, "/w").Embed(context.Background(), paths, "m")
			if len(want) == 0 {
				return err != nil
			}
			if err != nil || len(module.Assets) != len(want) || len(module.Skipped) != len(wantSkipped) {
				return false
			}
			for i, a := range module.Assets {
				if a.Path != want[i] || a.Identifier != Identifier(want[i]) {
					return false
				}
			}

			data, err := afero.ReadFile(fs, module.Path)
			if err != nil {
				return false
			}
			return string(data) == string(Render(module.Assets))
		},
		gen.SliceOf(gen.Bool()),
	))

	properties.Property("identifiers are unique within a module", prop.ForAll(
		func(names []string) bool {
			ids := make(identifierSet)
			seen := map[string]bool{}
			for _, n := range names {
				for _, file := range []string{n + ".x", n + "_x"} {
					id := ids.claim(Identifier(file))
					if seen[id] {
						return false
					}
					seen[id] = true
				}
			}
			return true
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
