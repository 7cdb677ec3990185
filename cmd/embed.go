package cmd

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/frozen/internal/assets"
	"github.com/conneroisu/frozen/internal/config"
	ferrors "github.com/conneroisu/frozen/internal/errors"
	"github.com/conneroisu/frozen/internal/logging"
	"github.com/conneroisu/frozen/internal/watcher"
)

var embedCmd = &cobra.Command{
	Use:     "embed [paths...]",
	Aliases: []string{"e"},
	Short:   "Embed image files as base64 data modules",
	Long: `Read image files and write a source module holding one base64 string
assignment per file, named after the file ("logo.ico" becomes logo_ico).

With explicit paths every existing file goes into the module named by
--module; missing files are skipped with a warning. Without paths the
configured resource groups are used: each group embeds the first of its
candidate files that exists.

Examples:
  frozen embed                                  # logo_resources, qrcode_resources
  frozen embed icon.png splash.png -m images    # images.py with two entries
  frozen embed --watch                          # Regenerate on every change`,
	RunE: runEmbed,
}

var (
	embedModule string
	embedWatch  bool
)

func init() {
	rootCmd.AddCommand(embedCmd)

	embedCmd.Flags().StringVarP(&embedModule, "module", "m", "", "Module name for explicit paths (extension added if missing)")
	embedCmd.Flags().BoolVarP(&embedWatch, "watch", "w", false, "Watch the asset files and regenerate on change")
}

func runEmbed(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	if len(args) > 0 && embedModule == "" {
		return ferrors.NewConfigError("--module is required when paths are given").
			WithSuggestions("frozen embed " + args[0] + " --module resources")
	}

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	opts, err := config.Load()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		if err := validateModuleName(embedModule, opts.Embed.Extension); err != nil {
			return err
		}
	}
	dir, err := resolveWorkDir()
	if err != nil {
		return err
	}

	out := newTextObserver(cmd.OutOrStdout(), cmd.ErrOrStderr())
	out.banner("Resource conversion")

	embedOnce := func(ctx context.Context) error {
		if len(args) == 0 {
			return embedResourceGroups(ctx, out, dir, opts, logger)
		}
		return embedPaths(ctx, out, dir, opts, logger, args, embedModule)
	}

	err = embedOnce(ctx)
	if !embedWatch {
		return err
	}
	if err != nil && !ferrors.IsRecoverable(err) {
		return err
	}

	return watchAssets(ctx, out, dir, watchedFiles(dir, opts, args), logger, embedOnce)
}

func newEmbedder(dir string, opts config.Options, logger logging.Logger) *assets.Embedder {
	return assets.NewEmbedder(appFs, dir,
		assets.WithExtension(opts.Embed.Extension),
		assets.WithLogger(logger))
}

func embedPaths(ctx context.Context, out *textObserver, dir string, opts config.Options, logger logging.Logger, paths []string, moduleName string) error {
	module, err := newEmbedder(dir, opts, logger).Embed(ctx, paths, moduleName)
	if module != nil {
		printModule(out, module)
	}
	if errors.Is(err, ferrors.ErrNoAssets) {
		out.printf("No asset data was produced for %s\n", moduleName)
	}
	return err
}

func embedResourceGroups(ctx context.Context, out *textObserver, dir string, opts config.Options, logger logging.Logger) error {
	groups := make([]assets.Group, len(opts.Embed.Groups))
	for i, g := range opts.Embed.Groups {
		groups[i] = assets.Group{Module: g.Module, Candidates: g.Candidates}
	}

	modules, err := newEmbedder(dir, opts, logger).EmbedGroups(ctx, groups)

	produced := make(map[string]bool, len(modules))
	for _, m := range modules {
		produced[m.Name] = true
		printModule(out, m)
	}
	for _, g := range groups {
		if !produced[g.Module] {
			out.printf("No file found for %s (tried %v)\n", g.Module, g.Candidates)
		}
	}
	if errors.Is(err, ferrors.ErrNoAssets) {
		out.printf("No image files found; the application will run without custom images\n")
	}
	return err
}

func printModule(out *textObserver, m *assets.Module) {
	for _, w := range m.Warnings {
		out.Warning(w)
	}
	if len(m.Assets) == 0 {
		return
	}
	for _, a := range m.Assets {
		out.printf("  converted: %s -> %s\n", a.Path, a.Identifier)
	}
	out.printf("Generated %s\n", filepath.Base(m.Path))
}

// watchedFiles lists the absolute asset paths that should trigger a rerun.
func watchedFiles(dir string, opts config.Options, args []string) []string {
	var rel []string
	if len(args) > 0 {
		rel = args
	} else {
		for _, g := range opts.Embed.Groups {
			rel = append(rel, g.Candidates...)
		}
	}

	files := make([]string, 0, len(rel))
	for _, p := range rel {
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		files = append(files, p)
	}
	return files
}

func watchAssets(ctx context.Context, out *textObserver, dir string, files []string, logger logging.Logger, rerun func(context.Context) error) error {
	w, err := watcher.New(watcher.DefaultDelay, logger)
	if err != nil {
		return ferrors.Wrap(err, ferrors.ErrorTypeInternal, ferrors.ErrCodeInternalError, "start file watcher")
	}
	defer w.Close()

	if err := w.WatchFiles(files); err != nil {
		return ferrors.WrapIO(err, dir, "watch asset files")
	}

	out.printf("\nWatching %d asset file(s), press Ctrl+C to stop\n", len(files))
	return w.Run(ctx, func(ctx context.Context, events []watcher.Event) error {
		for _, e := range events {
			out.printf("\n%s %s\n", e.Op, filepath.Base(e.Path))
		}
		return rerun(ctx)
	})
}
