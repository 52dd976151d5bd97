package launcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Defaults used when no configuration file exists. These mirror the values the
// launcher was originally hard-coded with.
const (
	DefaultModOrganizer = `C:\Modding\MO2\ModOrganizer.exe`
	DefaultShortcut     = "skyrim-alchemy-export"
	DefaultTool         = `target\x86_64-pc-windows-msvc\debug\skyrim-alchemy.exe`
	DefaultGamePath     = `C:\Program Files (x86)\Steam\steamapps\common\Skyrim Special Edition`
	DefaultDataPath     = `data\game_data.json`
	DefaultLogFile      = `logs\export-game-data.log`
)

// ErrConfigExists is returned when writing a configuration over an existing one.
var ErrConfigExists = errors.New("configuration file already exists")

// Config is the launcher configuration as stored in its TOML file.
type Config struct {
	Launcher   LauncherConfig   `toml:"launcher"`
	Downstream DownstreamConfig `toml:"downstream"`
}

// LauncherConfig configures the ModOrganizer launch.
type LauncherConfig struct {
	ModOrganizer string `toml:"mod_organizer" comment:"Path to ModOrganizer.exe"`
	Shortcut     string `toml:"shortcut"      comment:"Name of the ModOrganizer shortcut to run (moshortcut://:<name>)"`
}

// DownstreamConfig describes the export tool ModOrganizer runs for the shortcut.
// The launcher never executes it itself; it is only used to print the command
// line that has to be registered in ModOrganizer.
type DownstreamConfig struct {
	Tool      string `toml:"tool"                 comment:"Path to the skyrim-alchemy executable ModOrganizer runs"`
	GamePath  string `toml:"game_path"            comment:"Directory containing SkyrimSE.exe"`
	LocalPath string `toml:"local_path,omitempty" comment:"Directory containing plugins.txt. Defaults to %LocalAppData%\\Skyrim Special Edition"`
	DataPath  string `toml:"data_path"            comment:"JSON file the game data is exported to"`
	LogFile   string `toml:"log_file"             comment:"File the export's combined output is written to"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Launcher: LauncherConfig{
			ModOrganizer: DefaultModOrganizer,
			Shortcut:     DefaultShortcut,
		},
		Downstream: DownstreamConfig{
			Tool:     DefaultTool,
			GamePath: DefaultGamePath,
			DataPath: DefaultDataPath,
			LogFile:  DefaultLogFile,
		},
	}
}

// LoadConfig reads the configuration at path. A missing file yields the
// defaults; fields left empty in the file keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read configuration: %w", err)
	}
	var fromFile Config
	if err := toml.Unmarshal(data, &fromFile); err != nil {
		return Config{}, fmt.Errorf("parse configuration: %w", err)
	}
	cfg.merge(fromFile)
	return cfg, nil
}

func (cfg *Config) merge(other Config) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&cfg.Launcher.ModOrganizer, other.Launcher.ModOrganizer)
	set(&cfg.Launcher.Shortcut, other.Launcher.Shortcut)
	set(&cfg.Downstream.Tool, other.Downstream.Tool)
	set(&cfg.Downstream.GamePath, other.Downstream.GamePath)
	set(&cfg.Downstream.LocalPath, other.Downstream.LocalPath)
	set(&cfg.Downstream.DataPath, other.Downstream.DataPath)
	set(&cfg.Downstream.LogFile, other.Downstream.LogFile)
}

// WriteConfig writes the configuration to path, creating parent directories.
// An existing file is only replaced when overwrite is set.
func (cfg Config) WriteConfig(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return ErrConfigExists
		}
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create configuration directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Options returns the launch options described by the configuration.
func (cfg Config) Options() Options {
	return Options{
		Executable: cfg.Launcher.ModOrganizer,
		Shortcut:   cfg.Launcher.Shortcut,
	}
}

// DownstreamArgs returns the argument list ModOrganizer should pass to the
// export tool for the configured shortcut.
func (cfg Config) DownstreamArgs() []string {
	d := cfg.Downstream
	args := []string{"export-game-data", "--game-path", d.GamePath}
	if d.LocalPath != "" {
		args = append(args, "--local-path", d.LocalPath)
	}
	if d.LogFile != "" {
		args = append(args, "--log-file", d.LogFile)
	}
	return append(args, d.DataPath)
}
