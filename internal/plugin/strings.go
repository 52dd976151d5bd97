package plugin

import (
	"bytes"
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"SkyrimAlchemy/internal/bsa"

	"golang.org/x/text/encoding/charmap"
)

var (
	ErrStringsNotFound = errors.New("strings file not found")
	ErrStringNotFound  = errors.New("string not found")
)

// baseGameStrings lists plugins whose strings ship in the interface archive.
var baseGameStrings = []string{"skyrim", "update", "dawnguard", "hearthfires", "dragonborn"}

const interfaceArchive = "Skyrim - Interface.bsa"

func decodeString(b []byte) string {
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(s)
}

// zstring decodes a NUL terminated Windows-1252 string.
func zstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return decodeString(b)
}

func stem(plugin string) string {
	return strings.TrimSuffix(plugin, filepath.Ext(plugin))
}

// StringsKind selects one of the three strings files of a localized plugin.
type StringsKind int

const (
	// KindStrings holds names. Entries are NUL terminated.
	KindStrings StringsKind = iota
	// KindDLStrings holds descriptions. Entries carry a length prefix.
	KindDLStrings
	// KindILStrings holds dialogue. Entries carry a length prefix.
	KindILStrings
)

func (k StringsKind) Extension() string {
	switch k {
	case KindDLStrings:
		return ".dlstrings"
	case KindILStrings:
		return ".ilstrings"
	}
	return ".strings"
}

// StringsPath is the path of a plugin's english strings file of the given
// kind relative to Data.
func StringsPath(plugin string, kind StringsKind) string {
	return "strings/" + strings.ToLower(stem(plugin)) + "_english" + kind.Extension()
}

// ArchiveName is the archive expected to hold a plugin's strings files.
func ArchiveName(plugin string) string {
	s := stem(plugin)
	if slices.Contains(baseGameStrings, strings.ToLower(s)) {
		return interfaceArchive
	}
	return s + ".bsa"
}

// ReadStringsFile returns the raw strings file of the given kind for plugin,
// looking for a loose file under dataDir before the plugin's archive.
func ReadStringsFile(plugin, dataDir string, kind StringsKind) ([]byte, error) {
	rel := StringsPath(plugin, kind)
	data, err := os.ReadFile(filepath.Join(dataDir, filepath.FromSlash(rel)))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read strings file: %w", err)
	}

	archive := filepath.Join(dataDir, ArchiveName(plugin))
	a, err := bsa.Open(archive)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrStringsNotFound, rel)
		}
		return nil, err
	}
	defer a.Close()
	data, err = a.ExtractPath(rel)
	if errors.Is(err, bsa.ErrFileNotFound) {
		return nil, fmt.Errorf("%w: %s in %s", ErrStringsNotFound, rel, ArchiveName(plugin))
	}
	return data, err
}

type stringsEntry struct {
	id     uint32
	offset uint32
}

// Strings is a decoded strings table.
type Strings struct {
	kind    StringsKind
	entries []stringsEntry
	data    []byte
}

// ParseStrings decodes a strings file of the given kind.
func ParseStrings(b []byte, kind StringsKind) (*Strings, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("strings header: %w", ErrTruncated)
	}
	count := binary.LittleEndian.Uint32(b[0:4])
	size := binary.LittleEndian.Uint32(b[4:8])
	start := 8 + 8*uint64(count)
	if uint64(len(b)) < start+uint64(size) {
		return nil, fmt.Errorf("strings directory: %w", ErrTruncated)
	}
	entries := make([]stringsEntry, count)
	for i := range entries {
		off := 8 + 8*i
		entries[i] = stringsEntry{
			id:     binary.LittleEndian.Uint32(b[off : off+4]),
			offset: binary.LittleEndian.Uint32(b[off+4 : off+8]),
		}
	}
	slices.SortFunc(entries, func(a, b stringsEntry) int {
		return cmp.Compare(a.id, b.id)
	})
	return &Strings{kind: kind, entries: entries, data: b[start : start+uint64(size)]}, nil
}

// Lookup returns the string with the given ID.
func (s *Strings) Lookup(id uint32) (string, error) {
	i, ok := slices.BinarySearchFunc(s.entries, id, func(e stringsEntry, id uint32) int {
		return cmp.Compare(e.id, id)
	})
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrStringNotFound, id)
	}
	off := uint64(s.entries[i].offset)
	if off >= uint64(len(s.data)) {
		return "", fmt.Errorf("string %d: offset %d: %w", id, off, ErrTruncated)
	}
	if s.kind == KindStrings {
		return zstring(s.data[off:]), nil
	}

	// The length counts the terminating NUL.
	if off+4 > uint64(len(s.data)) {
		return "", fmt.Errorf("string %d: length: %w", id, ErrTruncated)
	}
	n := uint64(binary.LittleEndian.Uint32(s.data[off:]))
	if off+4+n > uint64(len(s.data)) {
		return "", fmt.Errorf("string %d: %d bytes: %w", id, n, ErrTruncated)
	}
	return zstring(s.data[off+4 : off+4+n]), nil
}

// StringsTable loads one of a plugin's strings files on first use.
type StringsTable struct {
	Plugin  string
	DataDir string
	Kind    StringsKind

	once    sync.Once
	strings *Strings
	err     error
}

// NewStringsTable returns a table for plugin that reads from dataDir when first used.
func NewStringsTable(plugin, dataDir string, kind StringsKind) *StringsTable {
	return &StringsTable{Plugin: plugin, DataDir: dataDir, Kind: kind}
}

func (t *StringsTable) load() {
	data, err := ReadStringsFile(t.Plugin, t.DataDir, t.Kind)
	if err != nil {
		t.err = err
		return
	}
	t.strings, t.err = ParseStrings(data, t.Kind)
}

// Lookup returns the string with the given ID.
func (t *StringsTable) Lookup(id uint32) (string, error) {
	t.once.Do(t.load)
	if t.err != nil {
		return "", fmt.Errorf("load %s strings for %s: %w", t.Kind.Extension(), t.Plugin, t.err)
	}
	return t.strings.Lookup(id)
}
