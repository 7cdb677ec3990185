package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/frozen/internal/config"
	ferrors "github.com/conneroisu/frozen/internal/errors"
	"github.com/conneroisu/frozen/internal/executor"
	"github.com/conneroisu/frozen/internal/testutils"
)

type harness struct {
	dir    string
	cmd    *cobra.Command
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	tool   *testutils.PackagingTool
}

func newHarness(t *testing.T, files ...string) *harness {
	t.Helper()

	h := &harness{
		dir:    t.TempDir(),
		cmd:    &cobra.Command{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.tool = &testutils.PackagingTool{Fs: afero.NewOsFs(), Options: config.DefaultOptions(), Version: "6.3.0"}
	testutils.WriteFiles(t, afero.NewOsFs(), h.dir, files...)
	h.cmd.SetOut(h.stdout)
	h.cmd.SetErr(h.stderr)

	oldRunner := newRunner
	newRunner = func() executor.Runner { return h.tool }
	t.Cleanup(func() {
		newRunner = oldRunner
		resetViper()
	})

	resetViper()
	cfgFile = ""
	workDir = h.dir
	buildDryRun, buildSkipCleanup, buildSkipPreflight, buildEmbed = false, false, false, false
	embedModule, embedWatch = "", false
	extractDir, extractOutput, extractList = h.dir, "", false
	configFormat, configShowOptions = "yaml", false
	versionFormat, versionShort = "text", false
	initConfig()

	return h
}

// resetViper clears the global Viper state and restores the flag bindings
// made at package init.
func resetViper() {
	viper.Reset()
	mustBindPFlags(rootCmd.PersistentFlags(), rootFlagBindings)
	mustBindPFlags(buildCmd.Flags(), buildFlagBindings)
}

func (h *harness) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(h.dir, rel))
	return err == nil
}

func TestBuild_DryRunPrintsCommand(t *testing.T) {
	h := newHarness(t, "main.py", "logo.ico")
	buildDryRun = true

	require.NoError(t, runBuild(h.cmd, nil))

	out := h.stdout.String()
	assert.Contains(t, out, "pyinstaller --onefile --windowed --icon "+filepath.Join(h.dir, "logo.ico"))
	assert.Contains(t, out, "--name GISCoordinateConverter")
	assert.NotContains(t, out, "qrcode.jpg")
	assert.Empty(t, h.tool.Calls)
	assert.Empty(t, h.tool.BuildCalls())
}

func TestBuild_Success(t *testing.T) {
	h := newHarness(t, "main.py", "README.md", "logo.ico")

	require.NoError(t, runBuild(h.cmd, nil))

	out := h.stdout.String()
	assert.Contains(t, out, "pyinstaller version: 6.3.0")
	assert.Contains(t, out, "Building EXE completed successfully.")
	assert.Contains(t, out, "removed: build")
	assert.Contains(t, out, "copied:  README.md")
	assert.Contains(t, out, "Executable:")

	assert.False(t, h.exists("build"))
	assert.False(t, h.exists("GISCoordinateConverter.spec"))
	assert.True(t, h.exists("dist/README.md"))
	assert.True(t, h.exists("dist/logo.ico"))
	assert.False(t, h.exists("dist/qrcode.jpg"))
}

func TestBuild_SuccessShowsToolMessages(t *testing.T) {
	h := newHarness(t, "main.py")
	h.tool.Messages = "WARNING: Hidden import \"osgeo.gdal\" not found!"

	require.NoError(t, runBuild(h.cmd, nil))

	assert.Contains(t, h.stdout.String(), "Building EXE completed successfully.")
	assert.Contains(t, h.stderr.String(), "Tool messages:\nWARNING: Hidden import \"osgeo.gdal\" not found!\n")
}

func TestBuild_SuccessWithoutToolMessages(t *testing.T) {
	h := newHarness(t, "main.py")

	require.NoError(t, runBuild(h.cmd, nil))
	assert.NotContains(t, h.stderr.String(), "Tool messages:")
}

func TestBuild_MissingExecutableWarnsOnce(t *testing.T) {
	h := newHarness(t, "main.py")
	h.tool.SkipArtifact = true

	require.NoError(t, runBuild(h.cmd, nil))

	assert.Equal(t, 1, strings.Count(h.stderr.String(), "expected executable not found"), h.stderr.String())
	assert.NotContains(t, h.stdout.String(), "Executable:")
}

func TestBuild_FailureKeepsTreeAndReportsStderr(t *testing.T) {
	h := newHarness(t, "README.md")
	require.NoError(t, os.MkdirAll(filepath.Join(h.dir, "build"), 0o755))
	h.tool.FailWith = "ERROR: Script file 'main.py' does not exist.\n"

	err := runBuild(h.cmd, nil)
	require.Error(t, err)

	assert.ErrorIs(t, err, ferrors.ErrBuildTool)
	assert.Contains(t, h.stderr.String(), "ERROR: Script file 'main.py' does not exist.\n")
	assert.Contains(t, h.stdout.String(), "Packaging failed")
	assert.True(t, h.exists("build"))
	assert.False(t, h.exists("dist"))
}

func TestBuild_ToolMissing(t *testing.T) {
	h := newHarness(t, "main.py")
	h.tool.Version = ""

	err := runBuild(h.cmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ferrors.ErrToolNotFound)
	assert.Len(t, h.tool.Calls, 1)
}

func TestBuild_EmbedFirst(t *testing.T) {
	h := newHarness(t, "main.py", "logo.png")
	buildEmbed = true
	buildDryRun = true

	require.NoError(t, runBuild(h.cmd, nil))
	assert.True(t, h.exists("logo_resources.py"))
	assert.False(t, h.exists("qrcode_resources.py"))
}

func TestEmbed_ResourceGroups(t *testing.T) {
	h := newHarness(t, "logo.png", "wechat_qrcode.jpg")

	require.NoError(t, runEmbed(h.cmd, nil))

	out := h.stdout.String()
	assert.Contains(t, out, "converted: logo.png -> logo_png")
	assert.Contains(t, out, "Generated logo_resources.py")
	assert.Contains(t, out, "converted: wechat_qrcode.jpg -> wechat_qrcode_jpg")
	assert.True(t, h.exists("qrcode_resources.py"))
}

func TestEmbed_NothingFound(t *testing.T) {
	h := newHarness(t)

	err := runEmbed(h.cmd, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ferrors.ErrNoAssets)
	assert.Contains(t, h.stdout.String(), "No file found for logo_resources")
}

func TestEmbed_ExplicitPaths(t *testing.T) {
	t.Run("requires module", func(t *testing.T) {
		h := newHarness(t, "a.png")
		err := runEmbed(h.cmd, []string{"a.png"})
		assert.ErrorIs(t, err, ferrors.ErrConfigInvalid)
	})

	t.Run("rejects path module names", func(t *testing.T) {
		h := newHarness(t, "a.png")
		embedModule = "../images"
		err := runEmbed(h.cmd, []string{"a.png"})
		assert.ErrorIs(t, err, ferrors.ErrConfigInvalid)
	})

	t.Run("writes module and warns on missing", func(t *testing.T) {
		h := newHarness(t, "a.png", "b.png")
		embedModule = "images"

		require.NoError(t, runEmbed(h.cmd, []string{"a.png", "missing.png", "b.png"}))

		data, err := os.ReadFile(filepath.Join(h.dir, "images.py"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "a_png = ")
		assert.Contains(t, string(data), "b_png = ")
		assert.Equal(t, 1, strings.Count(h.stderr.String(), "missing.png"), h.stderr.String())
	})
}

func TestExtract_RoundTrip(t *testing.T) {
	h := newHarness(t, "logo.ico")
	require.NoError(t, runEmbed(h.cmd, nil))

	outDir := filepath.Join(h.dir, "out")
	extractDir = outDir
	require.NoError(t, runExtract(h.cmd, []string{"logo_resources", "logo_ico"}))

	data, err := os.ReadFile(filepath.Join(outDir, "logo.ico"))
	require.NoError(t, err)
	assert.Equal(t, testutils.Content("logo.ico"), string(data))

	h.stdout.Reset()
	extractList = true
	require.NoError(t, runExtract(h.cmd, []string{"logo_resources.py"}))
	assert.Equal(t, "logo_ico\n", h.stdout.String())
}

func TestExtract_Errors(t *testing.T) {
	h := newHarness(t, "logo.ico")
	require.NoError(t, runEmbed(h.cmd, nil))

	assert.ErrorIs(t, runExtract(h.cmd, []string{"logo_resources"}), ferrors.ErrConfigInvalid)
	assert.ErrorIs(t, runExtract(h.cmd, []string{"logo_resources", "../x"}), ferrors.ErrConfigInvalid)
	assert.Error(t, runExtract(h.cmd, []string{"logo_resources", "nope_png"}))
	assert.Error(t, runExtract(h.cmd, []string{"absent_module", "logo_ico"}))
}

func TestConfigShow_ResolvesAgainstWorkingTree(t *testing.T) {
	h := newHarness(t, "main.py", "qrcode.jpg")
	configFormat = "json"

	require.NoError(t, runConfigShow(h.cmd, nil))

	var cfg config.BuildConfig
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &cfg))
	assert.Empty(t, cfg.Icon)
	require.Len(t, cfg.Datas, 1)
	assert.Equal(t, "qrcode.jpg", cfg.Datas[0].Source)
}

func TestConfigShow_FileAndEnvOverrides(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, ".frozen.yml"), []byte("name: Viewer\noptimize: 1\n"), 0o644))
	t.Setenv("FROZEN_OPTIMIZE", "0")
	initConfig()

	require.NoError(t, runConfigShow(h.cmd, nil))

	out := h.stdout.String()
	assert.Contains(t, out, "name: Viewer")
	assert.Contains(t, out, "optimize: 0")
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, runConfigValidate(h.cmd, nil))
		assert.Contains(t, h.stdout.String(), "Configuration is valid")
	})

	t.Run("invalid", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, os.WriteFile(filepath.Join(h.dir, ".frozen.yml"), []byte("optimize: 7\n"), 0o644))
		initConfig()

		err := runConfigValidate(h.cmd, nil)
		assert.ErrorIs(t, err, ferrors.ErrConfigInvalid)
	})

	t.Run("unsupported format", func(t *testing.T) {
		h := newHarness(t)
		configFormat = "toml"
		assert.Error(t, runConfigShow(h.cmd, nil))
	})
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	versionFormat = "json"

	require.NoError(t, runVersionCommand(h.cmd, nil))

	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &info))
	assert.Contains(t, info, "version")
	assert.Contains(t, info, "platform")
}

func TestValidation(t *testing.T) {
	assert.NoError(t, validateModuleName("logo_resources", ".py"))
	assert.NoError(t, validateModuleName("logo_resources.py", ".py"))
	assert.Error(t, validateModuleName("", ".py"))
	assert.Error(t, validateModuleName("sub/images", ".py"))
	assert.Error(t, validateModuleName("2images", ".py"))
	assert.Error(t, validateModuleName("my-images", ".py"))

	assert.NoError(t, validatePlainName("identifier", "my-logo_png"))
	assert.Error(t, validatePlainName("identifier", `a\b`))

	assert.NoError(t, validateFormat("json", "yaml", "json"))
	assert.Error(t, validateFormat("xml", "yaml", "json"))
}

func TestLoggerFlags(t *testing.T) {
	h := newHarness(t)

	viper.Set("log.level", "loud")
	_, err := newLogger(h.cmd)
	assert.ErrorIs(t, err, ferrors.ErrConfigInvalid)

	viper.Set("log.level", "debug")
	viper.Set("log.format", "json")
	_, err = newLogger(h.cmd)
	assert.NoError(t, err)

	viper.Set("log.format", "xml")
	_, err = newLogger(h.cmd)
	assert.ErrorIs(t, err, ferrors.ErrConfigInvalid)
}

func TestLoggerFlags_DefaultsAfterReset(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, "warn", viper.GetString("log.level"))
	assert.Equal(t, "text", viper.GetString("log.format"))

	viper.Reset()
	_, err := newLogger(h.cmd)
	assert.NoError(t, err, "unset level and format fall back to info and text")
}
