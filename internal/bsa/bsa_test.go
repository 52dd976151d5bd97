package bsa_test

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"SkyrimAlchemy/internal/bsa"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	dir, name string
	data      []byte
	toggle    bool
}

func compress(t *testing.T, version uint32, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	if version == bsa.VersionSkyrimSE {
		w := lz4.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	} else {
		w := zlib.NewWriter(&buf)
		_, err := w.Write(data)
		require.NoError(t, err)
		require.NoError(t, w.Close())
	}
	return buf.Bytes()
}

func buildArchive(t *testing.T, version, flags uint32, entries []entry) []byte {
	t.Helper()
	var dirs []string
	byDir := map[string][]entry{}
	for _, e := range entries {
		if _, ok := byDir[e.dir]; !ok {
			dirs = append(dirs, e.dir)
		}
		byDir[e.dir] = append(byDir[e.dir], e)
	}

	recordSize := 16
	if version == bsa.VersionSkyrimSE {
		recordSize = 24
	}
	blocks, names := 0, 0
	for _, d := range dirs {
		blocks += 1 + len(d) + 1 + 16*len(byDir[d])
		for _, e := range byDir[d] {
			names += len(e.name) + 1
		}
	}
	offset := 36 + recordSize*len(dirs) + blocks + names

	var header, records, fileBlocks, nameBlock, data bytes.Buffer
	le := binary.LittleEndian
	binary.Write(&header, le, bsa.Header{
		Magic:             [4]byte{'B', 'S', 'A', 0},
		Version:           version,
		FolderOffset:      36,
		ArchiveFlags:      flags,
		FolderCount:       uint32(len(dirs)),
		FileCount:         uint32(len(entries)),
		FolderNamesLength: uint32(blocks),
		FileNamesLength:   uint32(names),
	})
	for i, d := range dirs {
		binary.Write(&records, le, uint64(i))
		binary.Write(&records, le, uint32(len(byDir[d])))
		if version == bsa.VersionSkyrimSE {
			binary.Write(&records, le, uint32(0))
			binary.Write(&records, le, uint64(0))
		} else {
			binary.Write(&records, le, uint32(0))
		}

		fileBlocks.WriteByte(byte(len(d) + 1))
		fileBlocks.WriteString(d)
		fileBlocks.WriteByte(0)
		for j, e := range byDir[d] {
			var content bytes.Buffer
			if flags&bsa.FlagEmbeddedNames != 0 {
				full := d + `\` + e.name
				content.WriteByte(byte(len(full)))
				content.WriteString(full)
			}
			compressed := (flags&bsa.FlagCompressed != 0) != e.toggle
			if compressed {
				content.Write(compress(t, version, e.data))
			} else {
				content.Write(e.data)
			}
			size := uint32(content.Len())
			if e.toggle {
				size |= 0x40000000
			}
			binary.Write(&fileBlocks, le, uint64(j))
			binary.Write(&fileBlocks, le, size)
			binary.Write(&fileBlocks, le, uint32(offset+data.Len()))
			data.Write(content.Bytes())

			nameBlock.WriteString(e.name)
			nameBlock.WriteByte(0)
		}
	}
	return bytes.Join([][]byte{header.Bytes(), records.Bytes(), fileBlocks.Bytes(), nameBlock.Bytes(), data.Bytes()}, nil)
}

func TestExtractUncompressed(t *testing.T) {
	raw := buildArchive(t, bsa.VersionSkyrim, bsa.FlagDirectoryNames|bsa.FlagFileNames, []entry{
		{dir: "strings", name: "skyrim_english.strings", data: []byte("hello")},
		{dir: `meshes\clutter`, name: "bowl.nif", data: []byte("nif")},
	})
	a, err := bsa.New(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, a.Folders, 2)
	assert.Equal(t, "strings", a.Folders[0].Name)
	assert.Equal(t, "skyrim_english.strings", a.Folders[0].Files[0].Name)
	assert.Equal(t, `meshes\clutter`, a.Folders[1].Name)

	got, err := a.ExtractPath("Strings/Skyrim_English.STRINGS")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = a.ExtractPath("meshes/clutter/bowl.nif")
	require.NoError(t, err)
	assert.Equal(t, []byte("nif"), got)
}

func TestExtractCompressed(t *testing.T) {
	payload := bytes.Repeat([]byte("alchemy "), 64)
	for _, version := range []uint32{bsa.VersionSkyrim, bsa.VersionSkyrimSE} {
		raw := buildArchive(t, version, bsa.FlagDirectoryNames|bsa.FlagFileNames|bsa.FlagCompressed, []entry{
			{dir: "strings", name: "a.strings", data: payload},
			{dir: "strings", name: "b.strings", data: []byte("stored"), toggle: true},
		})
		a, err := bsa.New(bytes.NewReader(raw))
		require.NoError(t, err, "version %d", version)

		f, err := a.Find("strings/a.strings")
		require.NoError(t, err)
		assert.True(t, f.Compressed)
		got, err := a.Extract(f)
		require.NoError(t, err)
		assert.Equal(t, payload, got)

		f, err = a.Find("strings/b.strings")
		require.NoError(t, err)
		assert.False(t, f.Compressed)
		got, err = a.Extract(f)
		require.NoError(t, err)
		assert.Equal(t, []byte("stored"), got)
	}
}

func TestExtractEmbeddedNames(t *testing.T) {
	raw := buildArchive(t, bsa.VersionSkyrimSE,
		bsa.FlagDirectoryNames|bsa.FlagFileNames|bsa.FlagEmbeddedNames|bsa.FlagCompressed,
		[]entry{{dir: "strings", name: "x.strings", data: []byte("embedded")}})
	a, err := bsa.New(bytes.NewReader(raw))
	require.NoError(t, err)
	got, err := a.ExtractPath(`strings\x.strings`)
	require.NoError(t, err)
	assert.Equal(t, []byte("embedded"), got)
}

func TestFindMissing(t *testing.T) {
	raw := buildArchive(t, bsa.VersionSkyrim, bsa.FlagDirectoryNames|bsa.FlagFileNames,
		[]entry{{dir: "strings", name: "x.strings", data: []byte("x")}})
	a, err := bsa.New(bytes.NewReader(raw))
	require.NoError(t, err)
	_, err = a.Find("strings/y.strings")
	require.ErrorIs(t, err, bsa.ErrFileNotFound)
	_, err = a.Find("x.strings")
	require.ErrorIs(t, err, bsa.ErrFileNotFound)
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := bsa.New(bytes.NewReader([]byte("TES4 and more bytes to fill a header of 36 bytes")))
	require.ErrorIs(t, err, bsa.ErrNotArchive)

	raw := buildArchive(t, 103, 0, nil)
	_, err = bsa.New(bytes.NewReader(raw))
	require.ErrorIs(t, err, bsa.ErrUnsupportedVersion)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Test.bsa")
	raw := buildArchive(t, bsa.VersionSkyrimSE, bsa.FlagDirectoryNames|bsa.FlagFileNames,
		[]entry{{dir: "strings", name: "test_english.strings", data: []byte("ok")}})
	require.NoError(t, os.WriteFile(path, raw, 0644))

	a, err := bsa.Open(path)
	require.NoError(t, err)
	defer a.Close()
	got, err := a.ExtractPath("strings/test_english.strings")
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), got)

	_, err = bsa.Open(filepath.Join(t.TempDir(), "missing.bsa"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
