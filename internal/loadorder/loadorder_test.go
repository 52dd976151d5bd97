package loadorder_test

import (
	"os"
	"path/filepath"
	"testing"

	"SkyrimAlchemy/internal/loadorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), nil, 0644))
	}
}

func TestActivePlugins(t *testing.T) {
	game := t.TempDir()
	local := t.TempDir()
	touch(t, loadorder.DataDir(game),
		"Skyrim.esm", "Update.esm", "Dawnguard.esm", "Dragonborn.esm",
		"ccBGSSSE001-Fish.esm", "ccQDRSSE001-SurvivalMode.esl",
		"Unofficial Skyrim Special Edition Patch.esp", "Alchemy.esp", "Inactive.esp", "Late.esm")
	require.NoError(t, os.WriteFile(filepath.Join(game, "Skyrim.ccc"),
		[]byte("ccBGSSSE001-Fish.esm\r\nccQDRSSE001-SurvivalMode.esl\r\nccMissing.esl\r\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(local, "plugins.txt"), []byte(`# This file is used by Skyrim to keep track of your downloaded content.
*Unofficial Skyrim Special Edition Patch.esp
Inactive.esp
*alchemy.esp
*Late.esm
*skyrim.esm
*Gone.esp
`), 0644))

	got, err := loadorder.ActivePlugins(game, local)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Skyrim.esm",
		"Update.esm",
		"Dawnguard.esm",
		"Dragonborn.esm",
		"ccBGSSSE001-Fish.esm",
		"ccQDRSSE001-SurvivalMode.esl",
		"Late.esm",
		"Unofficial Skyrim Special Edition Patch.esp",
		"Alchemy.esp",
	}, got)
}

func TestActivePluginsWithoutListFiles(t *testing.T) {
	game := t.TempDir()
	touch(t, loadorder.DataDir(game), "Skyrim.esm")
	got, err := loadorder.ActivePlugins(game, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, []string{"Skyrim.esm"}, got)

	_, err = loadorder.ActivePlugins(filepath.Join(game, "missing"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewSortsCreationClub(t *testing.T) {
	lo := loadorder.New([]string{"Skyrim.esm", "ccZ.esl", "Update.esm", "ccA.esl", "Mod.esp"})
	assert.Equal(t, []string{"Skyrim.esm", "Update.esm", "Mod.esp", "ccA.esl", "ccZ.esl"}, lo.Plugins())
	assert.Equal(t, []string{"ccA.esl", "ccZ.esl"}, lo.LightMasters())
	assert.Equal(t, 5, lo.Len())
	assert.True(t, lo.IsLight(3))
	assert.False(t, lo.IsLight(2))
}

func TestIndexAndGet(t *testing.T) {
	lo := loadorder.New([]string{"Skyrim.esm", "Update.esm"})
	i, ok := lo.Index("UPDATE.ESM")
	require.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = lo.Index("Dawnguard.esm")
	assert.False(t, ok)

	name, ok := lo.Get(0)
	require.True(t, ok)
	assert.Equal(t, "Skyrim.esm", name)
	_, ok = lo.Get(2)
	assert.False(t, ok)
	_, ok = lo.Get(-1)
	assert.False(t, ok)
}

func TestMarkLight(t *testing.T) {
	lo := loadorder.New([]string{"Skyrim.esm", "Flagged.esp", "Mod.esp", "ccA.esl"})
	require.NoError(t, lo.MarkLight("flagged.esp"))
	require.NoError(t, lo.MarkLight("ccA.esl"))
	assert.Equal(t, []string{"Skyrim.esm", "Mod.esp", "ccA.esl", "Flagged.esp"}, lo.Plugins())

	require.ErrorContains(t, lo.MarkLight("Unknown.esp"), "not in load order")
}

func TestDrainUnused(t *testing.T) {
	lo := loadorder.New([]string{"Skyrim.esm", "Update.esm", "Dawnguard.esm", "Mod.esp", "ccA.esl", "ccB.esl"})
	// Skyrim 0, Update 1, Dawnguard 2, Mod 3, ccA 4, ccB 5
	remap := lo.DrainUnused([]int{0, 3, 3, 5})
	assert.Equal(t, map[int]int{0: 0, 3: 1, 5: 2}, remap)
	assert.Equal(t, []string{"Skyrim.esm", "Mod.esp", "ccB.esl"}, lo.Plugins())
	assert.Equal(t, []string{"ccB.esl"}, lo.LightMasters())

	remap = lo.DrainUnused([]int{0, 1, 2})
	assert.Equal(t, map[int]int{0: 0, 1: 1, 2: 2}, remap)
	assert.Equal(t, 3, lo.Len())
}

func TestString(t *testing.T) {
	lo := loadorder.New([]string{"Skyrim.esm", "Mod.esp"})
	assert.Equal(t, "0000: Skyrim.esm\n0001: Mod.esp", lo.String())
	assert.True(t, loadorder.New(nil).Empty())
}

func TestRestoreKeepsOrder(t *testing.T) {
	lo := loadorder.Restore([]string{"Skyrim.esm", "ccB.esl", "ccA.esl", "Flagged.esp"})
	assert.Equal(t, []string{"Skyrim.esm", "ccB.esl", "ccA.esl", "Flagged.esp"}, lo.Plugins())
	i, ok := lo.Index("ccA.esl")
	require.True(t, ok)
	assert.Equal(t, 2, i)
}
