package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/frozen/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the build configuration",
	Long: `Inspect the build configuration.

Without a subcommand the resolved build configuration is shown: the
configured options with the icon and data files filtered down to those
present in the working directory.

Examples:
  frozen config                      # Resolved configuration as YAML
  frozen config show --format json   # ... as JSON
  frozen config show --options       # Options before resolution
  frozen config validate             # Check .frozen.yml and FROZEN_* values`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved build configuration",
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file and environment overrides",
	RunE:  runConfigValidate,
}

var (
	configFormat      string
	configShowOptions bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)

	for _, c := range []*cobra.Command{configCmd, configShowCmd} {
		addFormatFlag(c.Flags(), &configFormat, "yaml", "yaml", "json")
		c.Flags().BoolVar(&configShowOptions, "options", false, "Show the options before resolution against the working directory")
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if err := validateFormat(configFormat, "yaml", "json"); err != nil {
		return err
	}

	opts, err := config.Load()
	if err != nil {
		return err
	}

	var value interface{} = opts
	if !configShowOptions {
		dir, err := resolveWorkDir()
		if err != nil {
			return err
		}
		value = config.Resolve(appFs, dir, opts)
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	default:
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return err
		}
		return encoder.Close()
	}
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); err != nil {
		return err
	}

	source := viper.ConfigFileUsed()
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration is valid (%s)\n", source)
	return nil
}
