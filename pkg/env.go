// Package env holds the directories the launcher and the export tool read from
// and write to.
package env

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

var (
	// RootDir is where the configuration file lives.
	RootDir string
	// LogsDir is the default directory for downstream tool logs.
	LogsDir string
	// LocalDir is the game's local application data directory containing plugins.txt.
	LocalDir string
)

func init() {
	if err := SetDirs(ExecutableDir()); err != nil {
		panic(err)
	}
	LocalDir = defaultLocalDir()
}

// ExecutableDir is the directory holding the running binary, the default root.
func ExecutableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// SetDirs points every directory at the specified root.
func SetDirs(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve root directory: %w", err)
	}
	RootDir = abs
	LogsDir = filepath.Join(abs, "logs")
	return nil
}

// ConfigPath returns the path of the TOML configuration file.
func ConfigPath() string {
	return filepath.Join(RootDir, "skyrim-alchemy.toml")
}

// defaultLocalDir returns %LocalAppData%\Skyrim Special Edition on Windows.
// Elsewhere the game only runs under a compatibility layer, so the user cache
// directory is the closest equivalent.
func defaultLocalDir() string {
	if runtime.GOOS == "windows" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "Skyrim Special Edition")
		}
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "Skyrim Special Edition"
	}
	return filepath.Join(cache, "Skyrim Special Edition")
}
