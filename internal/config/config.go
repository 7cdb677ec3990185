// Package config provides the build configuration for frozen.
//
// Options is the fixed default option set: packaging tool, entry-point
// script, output name, hidden-import allowlist, exclude-module denylist and
// the auxiliary files that travel with the executable. It is built once per
// run by Load (defaults overlaid with .frozen.yml, FROZEN_* environment
// variables and flags through Viper) and passed by value from then on.
//
// Resolve turns Options plus the current state of the working directory into
// a BuildConfig, the input of the command builder.
package config

import (
	"os"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/viper"

	ferrors "github.com/conneroisu/frozen/internal/errors"
)

// DataFile maps a file in the working tree to a destination directory
// inside the bundle.
type DataFile struct {
	Source string `mapstructure:"source" yaml:"source" json:"source"`
	Dest   string `mapstructure:"dest" yaml:"dest" json:"dest"`
}

// ResourceGroup names a generated module and the candidate files for it.
// The first candidate that exists is embedded.
type ResourceGroup struct {
	Module     string   `mapstructure:"module" yaml:"module" json:"module"`
	Candidates []string `mapstructure:"candidates" yaml:"candidates" json:"candidates"`
}

// EmbedOptions configures asset embedding.
type EmbedOptions struct {
	Extension string          `mapstructure:"extension" yaml:"extension" json:"extension"`
	Groups    []ResourceGroup `mapstructure:"groups" yaml:"groups" json:"groups"`
}

// Options is the default option set for one run.
type Options struct {
	Tool             string        `yaml:"tool" json:"tool"`
	Script           string        `yaml:"script" json:"script"`
	Name             string        `yaml:"name" json:"name"`
	OneFile          bool          `yaml:"onefile" json:"onefile"`
	Windowed         bool          `yaml:"windowed" json:"windowed"`
	Icon             string        `yaml:"icon" json:"icon"`
	Clean            bool          `yaml:"clean" json:"clean"`
	NoConfirm        bool          `yaml:"noconfirm" json:"noconfirm"`
	Optimize         int           `yaml:"optimize" json:"optimize"`
	Strip            bool          `yaml:"strip" json:"strip"`
	HiddenImports    []string      `yaml:"hidden_imports" json:"hidden_imports"`
	ExcludeModules   []string      `yaml:"exclude_modules" json:"exclude_modules"`
	Datas            []DataFile    `yaml:"datas" json:"datas"`
	RuntimeHooks     []string      `yaml:"runtime_hooks" json:"runtime_hooks"`
	UACAdmin         bool          `yaml:"uac_admin" json:"uac_admin"`
	DisableTraceback bool          `yaml:"disable_windowed_traceback" json:"disable_windowed_traceback"`
	IgnoreSignals    bool          `yaml:"bootloader_ignore_signals" json:"bootloader_ignore_signals"`
	BuildDir         string        `yaml:"build_dir" json:"build_dir"`
	DistDir          string        `yaml:"dist_dir" json:"dist_dir"`
	DistFiles        []string      `yaml:"dist_files" json:"dist_files"`
	ExecutableExt    string        `yaml:"executable_ext" json:"executable_ext"`
	DataSeparator    string        `yaml:"data_separator" json:"data_separator"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`
	Embed            EmbedOptions  `yaml:"embed" json:"embed"`
}

// DefaultOptions returns a fresh copy of the built-in option set.
func DefaultOptions() Options {
	return Options{
		Tool:      "pyinstaller",
		Script:    "main.py",
		Name:      "GISCoordinateConverter",
		OneFile:   true,
		Windowed:  true,
		Icon:      "logo.ico",
		Clean:     true,
		NoConfirm: true,
		Optimize:  2,
		Strip:     true,
		HiddenImports: []string{
			"PIL",
			"PIL._tkinter_finder",
			"osgeo",
			"osgeo.gdal",
			"osgeo.ogr",
			"osgeo.osr",
			"json",
			"csv",
			"math",
			"datetime",
			"base64",
			"tkinter",
			"tkinter.ttk",
			"tkinter.filedialog",
			"tkinter.messagebox",
			"tkinter.scrolledtext",
			"warnings",
		},
		ExcludeModules: []string{
			"matplotlib",
			"numpy",
			"scipy",
			"pandas",
			"test",
			"unittest",
			"pydoc",
			"doctest",
			"pdb",
		},
		Datas: []DataFile{
			{Source: "logo.ico", Dest: "."},
			{Source: "qrcode.jpg", Dest: "."},
		},
		RuntimeHooks:     []string{},
		UACAdmin:         false,
		DisableTraceback: true,
		IgnoreSignals:    true,
		BuildDir:         "build",
		DistDir:          "dist",
		DistFiles:        []string{"README.md", "logo.ico", "qrcode.jpg"},
		ExecutableExt:    defaultExecutableExt(runtime.GOOS),
		DataSeparator:    string(os.PathListSeparator),
		Embed: EmbedOptions{
			Extension: ".py",
			Groups: []ResourceGroup{
				{Module: "logo_resources", Candidates: []string{"logo.ico", "logo.png", "logo.jpg"}},
				{Module: "qrcode_resources", Candidates: []string{"qrcode.jpg", "qrcode.png", "wechat_qrcode.jpg"}},
			},
		},
	}
}

func defaultExecutableExt(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}

// ExecutableName is the file name the packaging tool produces.
func (o Options) ExecutableName() string {
	return o.Name + o.ExecutableExt
}

// SpecFile is the build descriptor the packaging tool writes next to the script.
func (o Options) SpecFile() string {
	return o.Name + ".spec"
}

// Clone returns a deep copy so callers can never alias the slices of o.
func (o Options) Clone() Options {
	c := o
	c.HiddenImports = slices.Clone(o.HiddenImports)
	c.ExcludeModules = slices.Clone(o.ExcludeModules)
	c.Datas = slices.Clone(o.Datas)
	c.RuntimeHooks = slices.Clone(o.RuntimeHooks)
	c.DistFiles = slices.Clone(o.DistFiles)
	c.Embed.Groups = make([]ResourceGroup, len(o.Embed.Groups))
	for i, g := range o.Embed.Groups {
		c.Embed.Groups[i] = ResourceGroup{Module: g.Module, Candidates: slices.Clone(g.Candidates)}
	}
	return c
}

// Load builds Options from the global Viper instance.
func Load() (Options, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom overlays every key set in v onto DefaultOptions and validates the
// result. Keys are read one by one rather than through Unmarshal because
// decoding into a pre-filled slice keeps stale trailing elements.
func LoadFrom(v *viper.Viper) (Options, error) {
	opts := DefaultOptions()

	setString(v, "tool", &opts.Tool)
	setString(v, "script", &opts.Script)
	setString(v, "name", &opts.Name)
	setString(v, "icon", &opts.Icon)
	setString(v, "build_dir", &opts.BuildDir)
	setString(v, "dist_dir", &opts.DistDir)
	setString(v, "executable_ext", &opts.ExecutableExt)
	setString(v, "data_separator", &opts.DataSeparator)
	setString(v, "embed.extension", &opts.Embed.Extension)

	setBool(v, "onefile", &opts.OneFile)
	setBool(v, "windowed", &opts.Windowed)
	setBool(v, "clean", &opts.Clean)
	setBool(v, "noconfirm", &opts.NoConfirm)
	setBool(v, "strip", &opts.Strip)
	setBool(v, "uac_admin", &opts.UACAdmin)
	setBool(v, "disable_windowed_traceback", &opts.DisableTraceback)
	setBool(v, "bootloader_ignore_signals", &opts.IgnoreSignals)

	if v.IsSet("optimize") {
		opts.Optimize = v.GetInt("optimize")
	}
	if v.IsSet("timeout") {
		opts.Timeout = v.GetDuration("timeout")
	}

	setStrings(v, "hidden_imports", &opts.HiddenImports)
	setStrings(v, "exclude_modules", &opts.ExcludeModules)
	setStrings(v, "runtime_hooks", &opts.RuntimeHooks)
	setStrings(v, "dist_files", &opts.DistFiles)

	if v.IsSet("datas") {
		var datas []DataFile
		if err := v.UnmarshalKey("datas", &datas); err != nil {
			return Options{}, ferrors.WrapConfig(err, "datas must be a list of {source, dest}")
		}
		opts.Datas = datas
	}
	if v.IsSet("embed.groups") {
		var groups []ResourceGroup
		if err := v.UnmarshalKey("embed.groups", &groups); err != nil {
			return Options{}, ferrors.WrapConfig(err, "embed.groups must be a list of {module, candidates}")
		}
		opts.Embed.Groups = groups
	}

	if result := ValidateOptions(opts); result.HasErrors() {
		return Options{}, ferrors.NewConfigError("invalid configuration: " + result.String()).
			WithSuggestions(result.Suggestions()...)
	}

	return opts, nil
}

func setString(v *viper.Viper, key string, dst *string) {
	if v.IsSet(key) {
		*dst = v.GetString(key)
	}
}

func setBool(v *viper.Viper, key string, dst *bool) {
	if v.IsSet(key) {
		*dst = v.GetBool(key)
	}
}

func setStrings(v *viper.Viper, key string, dst *[]string) {
	if v.IsSet(key) {
		*dst = v.GetStringSlice(key)
	}
}
