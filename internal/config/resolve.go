package config

import (
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

// BuildConfig is the fully resolved input of one packaging run. Icon and
// every entry of Datas point at files that existed when Resolve ran.
type BuildConfig struct {
	Tool             string     `yaml:"tool" json:"tool"`
	Script           string     `yaml:"script" json:"script"`
	Name             string     `yaml:"name" json:"name"`
	OneFile          bool       `yaml:"onefile" json:"onefile"`
	Windowed         bool       `yaml:"windowed" json:"windowed"`
	Icon             string     `yaml:"icon,omitempty" json:"icon,omitempty"`
	Clean            bool       `yaml:"clean" json:"clean"`
	NoConfirm        bool       `yaml:"noconfirm" json:"noconfirm"`
	Optimize         int        `yaml:"optimize" json:"optimize"`
	Strip            bool       `yaml:"strip" json:"strip"`
	HiddenImports    []string   `yaml:"hidden_imports" json:"hidden_imports"`
	ExcludeModules   []string   `yaml:"exclude_modules" json:"exclude_modules"`
	Datas            []DataFile `yaml:"datas" json:"datas"`
	RuntimeHooks     []string   `yaml:"runtime_hooks" json:"runtime_hooks"`
	UACAdmin         bool       `yaml:"uac_admin" json:"uac_admin"`
	DisableTraceback bool       `yaml:"disable_windowed_traceback" json:"disable_windowed_traceback"`
	IgnoreSignals    bool       `yaml:"bootloader_ignore_signals" json:"bootloader_ignore_signals"`
	DataSeparator    string     `yaml:"data_separator" json:"data_separator"`
}

// Resolve derives a BuildConfig from opts and the files present in dir.
// It never fails: a missing icon or data file is simply left out.
func Resolve(fs afero.Fs, dir string, opts Options) BuildConfig {
	cfg := BuildConfig{
		Tool:             opts.Tool,
		Script:           opts.Script,
		Name:             opts.Name,
		OneFile:          opts.OneFile,
		Windowed:         opts.Windowed,
		Clean:            opts.Clean,
		NoConfirm:        opts.NoConfirm,
		Optimize:         opts.Optimize,
		Strip:            opts.Strip,
		HiddenImports:    slices.Clone(opts.HiddenImports),
		ExcludeModules:   slices.Clone(opts.ExcludeModules),
		RuntimeHooks:     slices.Clone(opts.RuntimeHooks),
		UACAdmin:         opts.UACAdmin,
		DisableTraceback: opts.DisableTraceback,
		IgnoreSignals:    opts.IgnoreSignals,
		DataSeparator:    opts.DataSeparator,
	}

	if opts.Icon != "" {
		iconPath := filepath.Join(dir, opts.Icon)
		if isFile(fs, iconPath) {
			cfg.Icon = iconPath
		}
	}

	for _, d := range opts.Datas {
		if isFile(fs, filepath.Join(dir, d.Source)) {
			cfg.Datas = append(cfg.Datas, d)
		}
	}

	return cfg
}

func isFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}
