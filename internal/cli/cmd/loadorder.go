package cmd

import (
	"encoding/json"
	"fmt"

	"SkyrimAlchemy/internal/cli/output"
	"SkyrimAlchemy/internal/loadorder"
	env "SkyrimAlchemy/pkg"
	"SkyrimAlchemy/pkg/launcher"

	"github.com/iancoleman/orderedmap"
	"github.com/jedib0t/go-pretty/v6/table"
)

// LoadOrderCmd prints the active load order with the form ID prefix each
// plugin gets in game.
type LoadOrderCmd struct {
	GamePath  string `help:"${arg_gamepath}" type:"path" placeholder:"PATH"`
	LocalPath string `help:"${arg_localpath}" type:"path" placeholder:"PATH"`
	JSON      bool   `name:"json" help:"${arg_json}"`
}

func (c *LoadOrderCmd) Run(cfg launcher.Config) error {
	active, err := loadorder.ActivePlugins(
		firstNonEmpty(c.GamePath, cfg.Downstream.GamePath),
		firstNonEmpty(c.LocalPath, cfg.Downstream.LocalPath, env.LocalDir))
	if err != nil {
		return fmt.Errorf("read load order: %w", err)
	}
	lo := loadorder.New(active)
	if lo.Empty() {
		return loadorder.ErrEmpty
	}

	if c.JSON {
		entries := make([]*orderedmap.OrderedMap, lo.Len())
		for i, name := range lo.Plugins() {
			entry := orderedmap.New()
			entry.Set("index", i)
			entry.Set("prefix", Prefix(lo, i))
			entry.Set("name", name)
			entry.Set("light", lo.IsLight(i))
			entries[i] = entry
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("encode load order: %w", err)
		}
		output.Plain("%s", data)
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(output.Writer())
	t.AppendHeader(table.Row{
		output.Translate("table.index"),
		output.Translate("table.plugin"),
		output.Translate("table.light"),
	})
	for i, name := range lo.Plugins() {
		light := ""
		if lo.IsLight(i) {
			light = "✓"
		}
		t.AppendRow(table.Row{Prefix(lo, i), name, light})
	}
	t.Render()
	return nil
}

// Prefix returns the form ID prefix of the plugin at index: two hex digits
// for regular plugins, FE and three hex digits for light masters.
func Prefix(lo *loadorder.LoadOrder, index int) string {
	regular := lo.Len() - len(lo.LightMasters())
	if index < regular {
		return fmt.Sprintf("%02X", index)
	}
	return fmt.Sprintf("FE:%03X", index-regular)
}
