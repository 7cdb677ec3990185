// Package cmd provides the command-line interface for frozen.
//
// Configuration sources, highest precedence first:
//  1. Command-line flags (--timeout, --log-level, ...)
//  2. FROZEN_* environment variables (FROZEN_NAME, FROZEN_OPTIMIZE, ...)
//  3. The configuration file: --config, else FROZEN_CONFIG_FILE, else
//     .frozen.yml in the working directory
//  4. Built-in defaults
//
// # Available Commands
//
//   - build: run the packaging tool and assemble the distribution folder
//   - embed: turn image files into base64 data modules, optionally on change
//   - extract: decode an embedded asset back into a file
//   - config: show or validate the build configuration
//   - version: print build metadata
//
// # Command Examples
//
//	// Preview the packaging command
//	frozen build --dry-run
//
//	// Regenerate resource modules, then package
//	frozen build --embed
//
//	// Embed two images into images.py and keep it up to date
//	frozen embed icon.png splash.png --module images --watch
//
//	// Recover the icon from logo_resources.py
//	frozen extract logo_resources logo_ico --dir assets
//
// # Exit Status
//
// Every command exits 1 when it returns an error, including a packaging
// tool failure. Warnings such as a missing asset or a missing executable
// after a successful build are printed but do not change the exit status.
package cmd
