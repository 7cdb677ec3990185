package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/conneroisu/frozen/internal/assets"
	"github.com/conneroisu/frozen/internal/config"
	ferrors "github.com/conneroisu/frozen/internal/errors"
)

var extractCmd = &cobra.Command{
	Use:   "extract <module> <identifier>",
	Short: "Decode an embedded asset back into a file",
	Long: `Read a module generated by "frozen embed", decode the entry named
identifier and write it as a file. The file name is derived from the
identifier ("logo_ico" becomes "logo.ico") unless --output is given.

Examples:
  frozen extract logo_resources logo_ico                 # Into the temp directory
  frozen extract logo_resources.py logo_ico --dir out    # Into ./out/logo.ico
  frozen extract qrcode_resources qrcode_jpg -o qr.jpg   # Into ./qr.jpg
  frozen extract logo_resources --list                   # List identifiers`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runExtract,
}

var (
	extractDir    string
	extractOutput string
	extractList   bool
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractDir, "dir", os.TempDir(), "Directory to write the decoded file into")
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Exact output path (overrides --dir)")
	extractCmd.Flags().BoolVar(&extractList, "list", false, "List the identifiers in the module instead")
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts, err := config.Load()
	if err != nil {
		return err
	}
	if err := validatePlainName("module", args[0]); err != nil {
		return err
	}
	dir, err := resolveWorkDir()
	if err != nil {
		return err
	}

	modulePath := newEmbedder(dir, opts, nil).ModuleFile(args[0])
	out := newTextObserver(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if extractList {
		return listModule(out, modulePath)
	}
	if len(args) < 2 {
		return ferrors.NewConfigError("an identifier is required").
			WithSuggestions("frozen extract " + args[0] + " --list")
	}

	identifier := args[1]
	if err := validatePlainName("identifier", identifier); err != nil {
		return err
	}
	dest := extractOutput
	if dest == "" {
		dest = filepath.Join(extractDir, assets.FileName(identifier))
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(dir, dest)
	}

	if err := assets.Extract(appFs, modulePath, identifier, dest); err != nil {
		return err
	}
	out.printf("%s\n", dest)
	return nil
}

func listModule(out *textObserver, modulePath string) error {
	f, err := appFs.Open(modulePath)
	if err != nil {
		return ferrors.WrapIO(err, modulePath, "open module")
	}
	defer f.Close()

	entries, err := assets.ParseModule(f)
	if err != nil {
		return ferrors.WrapIO(err, modulePath, "parse module")
	}
	for _, e := range entries {
		out.printf("%s\n", e.Identifier)
	}
	return nil
}
