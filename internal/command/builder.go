// Package command maps a resolved BuildConfig onto the argument vector of
// the packaging tool.
//
// Token groups are always emitted in this order:
//
//	tool
//	--onefile --windowed
//	--icon <path>
//	--name <name>
//	--hidden-import <module>...
//	--exclude-module <module>...
//	--add-data <src><sep><dst>...
//	--clean --noconfirm
//	--optimize=<level>
//	--strip
//	--runtime-hook <hook>...
//	--uac-admin
//	--disable-windowed-traceback
//	--bootloader-ignore-signals
//	<script>
//
// A false or empty field contributes no tokens.
package command

import (
	"strconv"
	"strings"

	"github.com/conneroisu/frozen/internal/config"
)

// Flags of the packaging tool.
const (
	FlagOneFile          = "--onefile"
	FlagWindowed         = "--windowed"
	FlagIcon             = "--icon"
	FlagName             = "--name"
	FlagHiddenImport     = "--hidden-import"
	FlagExcludeModule    = "--exclude-module"
	FlagAddData          = "--add-data"
	FlagClean            = "--clean"
	FlagNoConfirm        = "--noconfirm"
	FlagOptimize         = "--optimize"
	FlagStrip            = "--strip"
	FlagRuntimeHook      = "--runtime-hook"
	FlagUACAdmin         = "--uac-admin"
	FlagDisableTraceback = "--disable-windowed-traceback"
	FlagIgnoreSignals    = "--bootloader-ignore-signals"
)

// Invocation is an ordered process argument vector. Element 0 is the tool.
type Invocation []string

// Program returns the executable to run.
func (inv Invocation) Program() string {
	if len(inv) == 0 {
		return ""
	}
	return inv[0]
}

// Args returns the arguments after the program.
func (inv Invocation) Args() []string {
	if len(inv) < 2 {
		return nil
	}
	return inv[1:]
}

// String renders the invocation for display, quoting tokens that contain
// whitespace or quotes.
func (inv Invocation) String() string {
	parts := make([]string, len(inv))
	for i, tok := range inv {
		if tok == "" || strings.ContainsAny(tok, " \t\n\"'") {
			parts[i] = strconv.Quote(tok)
		} else {
			parts[i] = tok
		}
	}
	return strings.Join(parts, " ")
}

// Build maps cfg onto an Invocation. It has no side effects: equal
// configurations always produce identical token sequences.
func Build(cfg config.BuildConfig) Invocation {
	inv := make(Invocation, 0, 16+2*(len(cfg.HiddenImports)+len(cfg.ExcludeModules)+len(cfg.Datas)+len(cfg.RuntimeHooks)))
	inv = append(inv, cfg.Tool)

	if cfg.OneFile {
		inv = append(inv, FlagOneFile)
	}
	if cfg.Windowed {
		inv = append(inv, FlagWindowed)
	}
	if cfg.Icon != "" {
		inv = append(inv, FlagIcon, cfg.Icon)
	}
	if cfg.Name != "" {
		inv = append(inv, FlagName, cfg.Name)
	}

	inv = appendPairs(inv, FlagHiddenImport, cfg.HiddenImports)
	inv = appendPairs(inv, FlagExcludeModule, cfg.ExcludeModules)
	for _, d := range cfg.Datas {
		inv = append(inv, FlagAddData, d.Source+cfg.DataSeparator+d.Dest)
	}

	if cfg.Clean {
		inv = append(inv, FlagClean)
	}
	if cfg.NoConfirm {
		inv = append(inv, FlagNoConfirm)
	}
	if cfg.Optimize > 0 {
		inv = append(inv, FlagOptimize+"="+strconv.Itoa(cfg.Optimize))
	}
	if cfg.Strip {
		inv = append(inv, FlagStrip)
	}

	inv = appendPairs(inv, FlagRuntimeHook, cfg.RuntimeHooks)

	if cfg.UACAdmin {
		inv = append(inv, FlagUACAdmin)
	}
	if cfg.DisableTraceback {
		inv = append(inv, FlagDisableTraceback)
	}
	if cfg.IgnoreSignals {
		inv = append(inv, FlagIgnoreSignals)
	}

	return append(inv, cfg.Script)
}

func appendPairs(inv Invocation, flag string, values []string) Invocation {
	for _, v := range values {
		inv = append(inv, flag, v)
	}
	return inv
}
