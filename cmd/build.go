package cmd

import (
	"errors"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/frozen/internal/config"
	ferrors "github.com/conneroisu/frozen/internal/errors"
	"github.com/conneroisu/frozen/internal/executor"
	"github.com/conneroisu/frozen/internal/pipeline"
)

// Swapped out by tests.
var (
	appFs     afero.Fs = afero.NewOsFs()
	newRunner          = func() executor.Runner { return executor.ProcessRunner{} }
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Package the entry-point script into a single executable",
	Long: `Resolve the build configuration from the working tree, run the packaging
tool and, if it succeeds, remove the intermediate build files and copy the
auxiliary files into the distribution folder.

The icon and each data file are only passed to the tool when they exist.
A failed build leaves the working tree untouched and exits non-zero.

Examples:
  frozen build                    # Package with the configured options
  frozen build --dry-run          # Print the packaging command only
  frozen build --embed            # Regenerate resource modules first
  frozen build --timeout 10m      # Abort the tool after ten minutes`,
	RunE: runBuild,
}

var buildFlagBindings = map[string]string{"timeout": "timeout"}

var (
	buildDryRun        bool
	buildSkipCleanup   bool
	buildSkipPreflight bool
	buildEmbed         bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Print the packaging command without running it")
	buildCmd.Flags().BoolVar(&buildSkipCleanup, "skip-cleanup", false, "Keep the build directory and build descriptor")
	buildCmd.Flags().BoolVar(&buildSkipPreflight, "skip-preflight", false, "Do not check that the packaging tool is installed")
	buildCmd.Flags().BoolVar(&buildEmbed, "embed", false, "Regenerate the resource modules before packaging")
	buildCmd.Flags().Duration("timeout", 0, "Abort the packaging tool after this long (0 means no limit)")

	mustBindPFlags(buildCmd.Flags(), buildFlagBindings)
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	start := time.Now()

	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	opts, err := config.Load()
	if err != nil {
		return err
	}
	dir, err := resolveWorkDir()
	if err != nil {
		return err
	}

	out := newTextObserver(cmd.OutOrStdout(), cmd.ErrOrStderr())
	out.banner("Packaging " + opts.Name)

	if buildEmbed {
		if err := embedResourceGroups(ctx, out, dir, opts, logger); err != nil && !errors.Is(err, ferrors.ErrNoAssets) {
			return err
		}
		out.printf("\n")
	}

	runner := newRunner()
	if !buildDryRun && !buildSkipPreflight {
		version, err := executor.New(runner, dir, executor.WithLogger(logger)).ToolVersion(ctx, opts.Tool)
		if err != nil {
			return err
		}
		out.printf("%s version: %s\n\n", opts.Tool, version)
	}

	report, err := pipeline.New(appFs, dir, opts, runner, logger, out).Run(ctx, pipeline.Options{
		DryRun:      buildDryRun,
		SkipCleanup: buildSkipCleanup,
	})
	if err != nil {
		if pipeline.IsBuildFailure(err) {
			out.printf("\nPackaging failed, check the error output above\n")
		}
		return err
	}

	logger.Info(ctx, "Build finished",
		"run_id", report.RunID,
		"dry_run", buildDryRun,
		"warnings", len(report.Warnings),
		"duration", time.Since(start))

	if report.Verification.Found {
		out.usage(opts.ExecutableName())
	}
	return nil
}
