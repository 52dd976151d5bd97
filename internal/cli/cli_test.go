package cli_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"SkyrimAlchemy/internal/cli"
	"SkyrimAlchemy/internal/cli/output"
	"SkyrimAlchemy/internal/loadorder"
	"SkyrimAlchemy/internal/plugin"
	pt "SkyrimAlchemy/internal/plugin/plugintest"
	env "SkyrimAlchemy/pkg"
	"SkyrimAlchemy/pkg/launcher"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "CLI_HELPER_EXIT_CODE"

// TestMain lets the test binary stand in for ModOrganizer.
func TestMain(m *testing.M) {
	if code := os.Getenv(helperEnv); code != "" {
		n, _ := strconv.Atoi(code)
		os.Exit(n)
	}
	os.Exit(m.Run())
}

func helperRunner(code int, calls *[][]string) launcher.Runner {
	return func(cmd *exec.Cmd) error {
		*calls = append(*calls, cmd.Args)
		cmd.Env = append(os.Environ(), helperEnv+"="+strconv.Itoa(code))
		return cmd.Run()
	}
}

func run(t *testing.T, runner launcher.Runner, args ...string) (string, int) {
	t.Helper()
	return runRaw(t, runner, append([]string{"--lang", "en"}, args...)...)
}

// runRaw runs the CLI with exactly args.
func runRaw(t *testing.T, runner launcher.Runner, args ...string) (string, int) {
	t.Helper()
	var buf bytes.Buffer
	prev := output.Writer()
	output.SetWriter(&buf)
	defer output.SetWriter(prev)

	opts := []kong.Option{kong.Writers(&buf, &buf), kong.Exit(func(int) {})}
	if runner != nil {
		opts = append(opts, kong.Bind(runner))
	}
	_, code := cli.Run(context.Background(), args, opts...)
	return buf.String(), code
}

func writeConfig(t *testing.T, dir string, edit func(*launcher.Config)) {
	t.Helper()
	cfg := launcher.DefaultConfig()
	edit(&cfg)
	require.NoError(t, cfg.WriteConfig(filepath.Join(dir, "skyrim-alchemy.toml"), true))
}

func testExecutable(t *testing.T) string {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)
	return exe
}

func TestLaunchIsDefaultCommand(t *testing.T) {
	dir := t.TempDir()
	exe := testExecutable(t)
	writeConfig(t, dir, func(cfg *launcher.Config) { cfg.Launcher.ModOrganizer = exe })

	var calls [][]string
	out, code := run(t, helperRunner(0, &calls), "--dir", dir)
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
	require.Len(t, calls, 1)
	assert.Equal(t, []string{exe, "moshortcut://:skyrim-alchemy-export"}, calls[0])
}

func TestLaunchPassesThroughExitCode(t *testing.T) {
	dir := t.TempDir()
	exe := testExecutable(t)
	writeConfig(t, dir, func(cfg *launcher.Config) {
		cfg.Launcher.ModOrganizer = exe
		cfg.Launcher.Shortcut = "other"
	})

	var calls [][]string
	out, code := run(t, helperRunner(7, &calls), "--dir", dir, "launch")
	assert.Equal(t, 7, code)
	assert.Empty(t, out)
	require.Len(t, calls, 1)
	assert.Equal(t, "moshortcut://:other", calls[0][1])
}

func TestLaunchMissingExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "missing", "ModOrganizer.exe")
	writeConfig(t, dir, func(cfg *launcher.Config) { cfg.Launcher.ModOrganizer = exe })

	var calls [][]string
	out, code := run(t, helperRunner(0, &calls), "--dir", dir)
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "mod organizer executable not found")
	assert.Contains(t, out, "tip:")
	assert.Empty(t, calls)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the configuration file may exist")
}

func TestLaunchIgnoresEnvironment(t *testing.T) {
	exe := testExecutable(t)
	path := filepath.Join(env.ExecutableDir(), "skyrim-alchemy.toml")
	require.NoFileExists(t, path)
	t.Cleanup(func() { os.Remove(path) })
	writeConfig(t, env.ExecutableDir(), func(cfg *launcher.Config) { cfg.Launcher.ModOrganizer = exe })

	var calls [][]string
	out, code := runRaw(t, helperRunner(0, &calls))
	require.Equal(t, 0, code, out)
	require.Len(t, calls, 1)
	want := calls[0]

	// A configuration where the user config directory points elsewhere.
	other := t.TempDir()
	for _, sub := range []string{"", "SkyrimAlchemy"} {
		dir := filepath.Join(other, sub)
		require.NoError(t, os.MkdirAll(dir, 0755))
		writeConfig(t, dir, func(cfg *launcher.Config) {
			cfg.Launcher.ModOrganizer = filepath.Join(other, "ModOrganizer.exe")
			cfg.Launcher.Shortcut = "from-env"
		})
	}
	t.Setenv("XDG_CONFIG_HOME", other)
	t.Setenv("APPDATA", other)
	t.Setenv("HOME", other)
	t.Setenv("LANG", "ru_RU.UTF-8")
	t.Setenv("LC_ALL", "ru_RU.UTF-8")

	calls = nil
	out, code = runRaw(t, helperRunner(0, &calls))
	require.Equal(t, 0, code, out)
	require.Len(t, calls, 1)
	assert.Equal(t, want, calls[0])

	writeConfig(t, env.ExecutableDir(), func(cfg *launcher.Config) {
		cfg.Launcher.ModOrganizer = filepath.Join(other, "missing", "ModOrganizer.exe")
	})
	out, code = runRaw(t, helperRunner(0, &calls), "launch")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "mod organizer executable not found")
	assert.Contains(t, out, "tip: Set launcher.mod_organizer")
}

func TestConfigCommands(t *testing.T) {
	dir := t.TempDir()

	out, code := run(t, nil, "--dir", dir, "config", "path")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, filepath.Join(dir, "skyrim-alchemy.toml"))

	_, code = run(t, nil, "--dir", dir, "config", "init")
	assert.Equal(t, 0, code)
	assert.FileExists(t, filepath.Join(dir, "skyrim-alchemy.toml"))

	out, code = run(t, nil, "--dir", dir, "config", "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "--force")

	_, code = run(t, nil, "--dir", dir, "config", "init", "--force")
	assert.Equal(t, 0, code)

	out, code = run(t, nil, "--dir", dir, "config")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "mod_organizer")
	assert.Contains(t, out, "export-game-data --game-path '")
}

func TestConfigRepairsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skyrim-alchemy.toml")
	require.NoError(t, os.WriteFile(path, []byte("launcher = [broken"), 0644))

	out, code := run(t, nil, "--dir", dir, "config")
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "parse configuration")

	out, code = run(t, nil, "--dir", dir, "config", "path")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, path)

	out, code = run(t, nil, "--dir", dir, "config", "init", "--force")
	require.Equal(t, 0, code, out)
	cfg, err := launcher.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, launcher.DefaultConfig(), cfg)

	_, code = run(t, nil, "--dir", dir, "config")
	assert.Equal(t, 0, code)
}

func TestInvalidLanguage(t *testing.T) {
	_, code := run(t, nil, "--dir", t.TempDir(), "--lang", "de", "config", "path")
	assert.NotEqual(t, 0, code)
}

func writeGame(t *testing.T) (game, local string) {
	t.Helper()
	game, local = t.TempDir(), t.TempDir()
	data := loadorder.DataDir(game)
	require.NoError(t, os.MkdirAll(data, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "Skyrim.esm"), pt.Plugin(pt.Header(plugin.FlagMaster),
		pt.Group("MGEF",
			pt.MagicEffect(0x800, "AlchRestoreHealth", "Restore Health", "Restore <mag> points of Health.", 0, 0.5),
			pt.MagicEffect(0x801, "AlchDamageHealth", "Damage Health", "Causes <mag> points of poison damage.", 0x1, 3),
		),
		pt.Group("INGR",
			pt.Ingredient(0x900, "Wheat", "Wheat", pt.Effect{ID: 0x800, Magnitude: 10}, pt.Effect{ID: 0x801, Magnitude: 2}),
			pt.Ingredient(0x901, "SaltPile", "Salt Pile", pt.Effect{ID: 0x800, Magnitude: 20}),
		)), 0644))
	return game, local
}

func TestExportAndSuggest(t *testing.T) {
	dir := t.TempDir()
	game, local := writeGame(t)
	dataPath := filepath.Join(dir, "data", "game_data.json")
	logPath := filepath.Join(dir, "logs", "export.log")

	out, code := run(t, nil, "--dir", dir, "export-game-data",
		"--game-path", game, "--local-path", local, "--log-file", logPath, dataPath)
	require.Equal(t, 0, code, out)
	assert.NotContains(t, out, "Game data written")

	log, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(log), "# skyrim-alchemy run log")
	assert.Contains(t, string(log), "name: export-game-data")
	assert.Contains(t, string(log), "Reading the load order of "+game)
	assert.Contains(t, string(log), "Load order has 1 plugins")
	assert.Contains(t, string(log), "Game data written to "+dataPath)
	assert.Contains(t, string(log), "end: ")
	assert.NotContains(t, string(log), "error: ")

	raw, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": "1.0.0"`)

	out, code = run(t, nil, "--dir", dir, "suggest-potions", "--limit", "5", dataPath)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Reading "+dataPath)
	assert.Contains(t, out, "Found 1 potions")
	assert.Contains(t, out, "Potion of Restore Health")
	assert.Contains(t, out, "Restore 20 points of Health.")
	assert.Contains(t, out, "Value: 13 gold")
	assert.Contains(t, out, "- Salt Pile\n- Wheat")

	blacklist := filepath.Join(dir, "blacklist.txt")
	require.NoError(t, os.WriteFile(blacklist, []byte("wheat\n"), 0644))
	out, code = run(t, nil, "--dir", dir, "suggest-potions", "--ingredients-blacklist-path", blacklist, dataPath)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "No potions can be brewed")

	_, code = run(t, nil, "--dir", dir, "suggest-potions",
		"--ingredients-blacklist-path", blacklist, "--ingredients-whitelist-path", blacklist, dataPath)
	assert.NotEqual(t, 0, code)

	_, code = run(t, nil, "--dir", dir, "suggest-potions", "--limit", "0", dataPath)
	assert.NotEqual(t, 0, code)
}

func TestSuggestDropsRepeatedEffects(t *testing.T) {
	dir := t.TempDir()
	game, local := t.TempDir(), t.TempDir()
	data := loadorder.DataDir(game)
	require.NoError(t, os.MkdirAll(data, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(data, "Skyrim.esm"), pt.Plugin(pt.Header(plugin.FlagMaster),
		pt.Group("MGEF",
			pt.MagicEffect(0x800, "AlchRestoreHealth", "Restore Health", "Restore <mag> points of Health.", 0, 0.5),
		),
		pt.Group("INGR",
			pt.Ingredient(0x900, "Wheat", "Wheat", pt.Effect{ID: 0x800, Magnitude: 10}),
			pt.Ingredient(0x901, "SaltPile", "Salt Pile", pt.Effect{ID: 0x800, Magnitude: 20}),
			pt.Ingredient(0x902, "Odd", "Odd Root", pt.Effect{ID: 0x800, Magnitude: 1}, pt.Effect{ID: 0x800, Magnitude: 2}),
		)), 0644))

	dataPath := filepath.Join(dir, "game_data.json")
	out, code := run(t, nil, "--dir", dir, "export-game-data", "--game-path", game, "--local-path", local, dataPath)
	require.Equal(t, 0, code, out)

	out, code = run(t, nil, "--dir", dir, "suggest-potions", dataPath)
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Dropped 1 invalid ingredients")
	assert.Contains(t, out, "Found 1 potions")
	assert.NotContains(t, out, "Odd Root")
}

func TestSuggestWithoutExport(t *testing.T) {
	dir := t.TempDir()
	out, code := run(t, nil, "--dir", dir, "suggest-potions", filepath.Join(dir, "missing.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Run the export first")
}

func TestExportEmptyLoadOrder(t *testing.T) {
	dir := t.TempDir()
	game := t.TempDir()
	require.NoError(t, os.MkdirAll(loadorder.DataDir(game), 0755))

	logPath := filepath.Join(dir, "export.log")
	out, code := run(t, nil, "--dir", dir, "export-game-data",
		"--game-path", game, "--local-path", t.TempDir(), "--log-file", logPath, filepath.Join(dir, "gd.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "Check --game-path")

	log, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(log), "error: "+loadorder.ErrEmpty.Error())
	assert.NoFileExists(t, filepath.Join(dir, "gd.json"))
}

func TestLoadOrderJSON(t *testing.T) {
	game, local := writeGame(t)
	out, code := run(t, nil, "--dir", t.TempDir(), "load-order", "--game-path", game, "--local-path", local, "--json")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, `"index": 0,
    "prefix": "00",
    "name": "Skyrim.esm",
    "light": false`)
}
