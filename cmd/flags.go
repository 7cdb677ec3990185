package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// mustBindPFlags binds each viper key to the named flag of fs. A missing
// flag is a programming error.
func mustBindPFlags(fs *pflag.FlagSet, bindings map[string]string) {
	for key, name := range bindings {
		flag := fs.Lookup(name)
		if flag == nil {
			panic(fmt.Sprintf("flag --%s is not defined", name))
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			panic(fmt.Sprintf("bind --%s: %v", name, err))
		}
	}
}

// validateFormat checks an --format style value against the supported set.
func validateFormat(format string, supported ...string) error {
	if slices.Contains(supported, format) {
		return nil
	}
	return fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(supported, ", "))
}

// addFormatFlag registers --format/-f with the given default.
func addFormatFlag(fs *pflag.FlagSet, dst *string, def string, supported ...string) {
	fs.StringVarP(dst, "format", "f", def, "Output format ("+strings.Join(supported, ", ")+")")
}
