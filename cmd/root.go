package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	ferrors "github.com/conneroisu/frozen/internal/errors"
	"github.com/conneroisu/frozen/internal/logging"
)

var (
	cfgFile string
	workDir string
)

// rootFlagBindings maps viper keys to persistent flags of rootCmd.
var rootFlagBindings = map[string]string{
	"log.level":  "log-level",
	"log.format": "log-format",
}

var rootCmd = &cobra.Command{
	Use:   "frozen",
	Short: "Package a desktop application script into a single executable",
	Long: `frozen embeds image assets as source modules, resolves a build
configuration from the working tree, runs the packaging tool and assembles
a distribution folder.

Quick Start:
  frozen embed                    Generate logo_resources / qrcode_resources
  frozen build                    Package main.py into dist/
  frozen build --dry-run          Print the packaging command only
  frozen config show              Show the resolved build configuration`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Errors are printed to stderr with any
// suggestions attached; the caller decides the exit code.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", ferrors.FormatError(err))
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .frozen.yml, can also use FROZEN_CONFIG_FILE env var)")
	flags.StringVarP(&workDir, "dir", "C", ".", "working directory holding the script and assets")
	flags.StringP("log-level", "l", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")

	mustBindPFlags(flags, rootFlagBindings)
}

// initConfig points the global Viper instance at the configuration file and
// enables FROZEN_ environment overrides. A missing file is not an error.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("FROZEN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(workDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".frozen")
	}

	viper.SetEnvPrefix("FROZEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the logger selected by --log-level and --log-format.
// Logs go to stderr so stdout stays readable progress output.
func newLogger(cmd *cobra.Command) (logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return nil, ferrors.WrapConfig(err, "invalid --log-level")
	}

	format := viper.GetString("log.format")
	if format == "" {
		format = "text"
	}
	if err := validateFormat(format, "text", "json"); err != nil {
		return nil, ferrors.WrapConfig(err, "invalid --log-format")
	}

	return logging.NewLogger(&logging.LoggerConfig{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	}), nil
}

// resolveWorkDir returns the absolute working directory.
func resolveWorkDir() (string, error) {
	dir, err := filepath.Abs(workDir)
	if err != nil {
		return "", ferrors.WrapIO(err, workDir, "resolve working directory")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", ferrors.WrapIO(err, dir, "open working directory")
	}
	if !info.IsDir() {
		return "", ferrors.NewIOError(dir, "not a directory", nil)
	}
	return dir, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
