// Package loadorder resolves the active plugins of a Skyrim Special Edition
// install and maps them to form ID prefixes.
package loadorder

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// ImplicitMasters are always active when present, in this order.
var ImplicitMasters = []string{
	"Skyrim.esm",
	"Update.esm",
	"Dawnguard.esm",
	"HearthFires.esm",
	"Dragonborn.esm",
}

const (
	pluginsFile = "plugins.txt"
	cccFile     = "Skyrim.ccc"
)

var ErrEmpty = errors.New("load order is empty")

// DataDir returns the Data directory of a game install.
func DataDir(gamePath string) string {
	return filepath.Join(gamePath, "Data")
}

// ActivePlugins lists the active plugins of the install at gamePath, using
// the plugins.txt found in localPath. Only plugins present in Data are kept.
func ActivePlugins(gamePath, localPath string) ([]string, error) {
	entries, err := os.ReadDir(DataDir(gamePath))
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	present := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() || e.Type()&fs.ModeSymlink != 0 {
			present[strings.ToLower(e.Name())] = e.Name()
		}
	}

	var order []string
	seen := make(map[string]bool)
	add := func(name string) {
		key := strings.ToLower(name)
		actual, ok := present[key]
		if !ok || seen[key] {
			return
		}
		seen[key] = true
		order = append(order, actual)
	}

	for _, name := range ImplicitMasters {
		add(name)
	}

	ccc, err := readLines(filepath.Join(gamePath, cccFile))
	if err != nil {
		return nil, err
	}
	for _, name := range ccc {
		add(name)
	}

	lines, err := readLines(filepath.Join(localPath, pluginsFile))
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if name, ok := strings.CutPrefix(line, "*"); ok {
			add(strings.TrimSpace(name))
		}
	}

	// Masters always load before other plugins.
	sort.SliceStable(order, func(i, j int) bool {
		return IsMasterFile(order[i]) && !IsMasterFile(order[j])
	})
	return order, nil
}

// readLines returns the non-comment lines of a Windows-1252 text file. A
// missing file has no lines.
func readLines(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
		raw = decoded
	}
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

// IsMasterFile reports whether the file extension marks a master.
func IsMasterFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".esm" || ext == ".esl"
}

func isLightFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".esl")
}

func isCreationClub(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "cc") && strings.HasSuffix(lower, ".esl")
}

// LoadOrder maps plugins to load order indexes. Regular plugins come first,
// followed by light masters; Creation Club light masters are sorted
// alphabetically.
type LoadOrder struct {
	plugins []string
	light   []string
}

// New builds a load order from the active plugins in order.
func New(plugins []string) *LoadOrder {
	lo := &LoadOrder{}
	for _, p := range plugins {
		if isCreationClub(p) {
			lo.light = append(lo.light, p)
		} else {
			lo.plugins = append(lo.plugins, p)
		}
	}
	slices.Sort(lo.light)
	return lo
}

// MarkLight moves a light flagged plugin after the regular plugins.
// Plugins with an .esl extension are already placed and left untouched.
func (lo *LoadOrder) MarkLight(name string) error {
	if isLightFile(name) {
		return nil
	}
	i := slices.IndexFunc(lo.plugins, func(p string) bool {
		return strings.EqualFold(p, name)
	})
	if i < 0 {
		return fmt.Errorf("mark %s as light master: not in load order", name)
	}
	lo.light = append(lo.light, lo.plugins[i])
	lo.plugins = slices.Delete(lo.plugins, i, i+1)
	return nil
}

func (lo *LoadOrder) entries() []string {
	return append(slices.Clip(lo.plugins), lo.light...)
}

// Index returns the position of name, ignoring case.
func (lo *LoadOrder) Index(name string) (int, bool) {
	i := slices.IndexFunc(lo.entries(), func(p string) bool {
		return strings.EqualFold(p, name)
	})
	return i, i >= 0
}

// Get returns the plugin at index.
func (lo *LoadOrder) Get(index int) (string, bool) {
	entries := lo.entries()
	if index < 0 || index >= len(entries) {
		return "", false
	}
	return entries[index], true
}

func (lo *LoadOrder) Len() int { return len(lo.plugins) + len(lo.light) }

func (lo *LoadOrder) Empty() bool { return lo.Len() == 0 }

// Plugins returns every entry in index order.
func (lo *LoadOrder) Plugins() []string { return lo.entries() }

// LightMasters returns the light masters in order.
func (lo *LoadOrder) LightMasters() []string { return slices.Clone(lo.light) }

// IsLight reports whether the entry at index is a light master.
func (lo *LoadOrder) IsLight(index int) bool {
	return index >= len(lo.plugins) && index < lo.Len()
}

// DrainUnused drops every entry whose index is not in used and returns the
// mapping from old to new index for the entries that remain.
func (lo *LoadOrder) DrainUnused(used []int) map[int]int {
	keep := make(map[int]bool, len(used))
	for _, i := range used {
		keep[i] = true
	}
	remap := make(map[int]int, len(keep))
	var plugins, light []string
	for i, p := range lo.entries() {
		if !keep[i] {
			continue
		}
		remap[i] = len(plugins) + len(light)
		if lo.IsLight(i) {
			light = append(light, p)
		} else {
			plugins = append(plugins, p)
		}
	}
	lo.plugins, lo.light = plugins, light
	return remap
}

func (lo *LoadOrder) String() string {
	var b strings.Builder
	for i, p := range lo.entries() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%04d: %s", i, p)
	}
	return b.String()
}

// Restore rebuilds a load order whose entries are already in index order.
func Restore(entries []string) *LoadOrder {
	return &LoadOrder{plugins: slices.Clone(entries)}
}
