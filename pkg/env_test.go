package env_test

import (
	"os"
	"path/filepath"
	"testing"

	env "SkyrimAlchemy/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutableDirIgnoresEnvironment(t *testing.T) {
	exe, err := os.Executable()
	require.NoError(t, err)
	exe, err = filepath.EvalSymlinks(exe)
	require.NoError(t, err)

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("APPDATA", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	assert.Equal(t, filepath.Dir(exe), env.ExecutableDir())
}

func TestSetDirs(t *testing.T) {
	prev := env.RootDir
	t.Cleanup(func() { require.NoError(t, env.SetDirs(prev)) })

	dir := t.TempDir()
	require.NoError(t, env.SetDirs(dir))
	assert.Equal(t, dir, env.RootDir)
	assert.Equal(t, filepath.Join(dir, "logs"), env.LogsDir)
	assert.Equal(t, filepath.Join(dir, "skyrim-alchemy.toml"), env.ConfigPath())
}
