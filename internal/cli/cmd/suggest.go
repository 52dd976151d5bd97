package cmd

import (
	"context"
	"strings"
	"time"

	"SkyrimAlchemy/internal/alchemy"
	"SkyrimAlchemy/internal/cli/output"
	"SkyrimAlchemy/internal/gamedata"
	"SkyrimAlchemy/pkg/launcher"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.uber.org/zap"
)

// SuggestPotionsCmd prints the most valuable potions that can be brewed from
// exported game data.
type SuggestPotionsCmd struct {
	Blacklist string `name:"ingredients-blacklist-path" help:"${arg_blacklist}" type:"existingfile" group:"filter" xor:"filter"`
	Whitelist string `name:"ingredients-whitelist-path" help:"${arg_whitelist}" type:"existingfile" group:"filter" xor:"filter"`
	Limit     int    `help:"${arg_limit}" default:"20"`
	DataPath  string `arg:"" optional:"" help:"${arg_datapath}" type:"path"`
}

func (c *SuggestPotionsCmd) Validate() error {
	if c.Limit < 1 {
		return alchemy.ErrInvalidLimit
	}
	return nil
}

func (c *SuggestPotionsCmd) Run(ctx context.Context, cfg launcher.Config, log *zap.Logger) error {
	path := firstNonEmpty(c.DataPath, cfg.Downstream.DataPath)
	output.Status(output.Translate("suggest.reading"), path)
	gd, err := gamedata.Load(path)
	if err != nil {
		return err
	}
	output.Info(output.Translate("suggest.loaded"), len(gd.Ingredients), len(gd.MagicEffects))
	if n := gd.PurgeInvalid(log); n > 0 {
		output.Warning(output.Translate("suggest.purged"), n)
	}

	opts := alchemy.SuggestOptions{Limit: c.Limit, Log: log}
	if c.Blacklist != "" {
		if opts.Blacklist, err = alchemy.ReadNames(c.Blacklist); err != nil {
			return err
		}
	}
	if c.Whitelist != "" {
		if opts.Whitelist, err = alchemy.ReadNames(c.Whitelist); err != nil {
			return err
		}
	}

	potions, err := suggest(ctx, gd, opts)
	if err != nil {
		return err
	}
	if len(potions) == 0 {
		output.Warning(output.Translate("suggest.none"))
		return nil
	}
	output.Success(output.Translate("suggest.found"), len(potions))

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(output.Writer())
	t.AppendHeader(table.Row{
		output.Translate("table.rank"),
		output.Translate("table.gold"),
		output.Translate("table.name"),
		output.Translate("table.ingredients"),
	})
	for i, p := range potions {
		t.AppendRow(table.Row{i + 1, p.Gold, p.Name(), strings.Join(p.IngredientNames(), ", ")})
	}
	t.Render()

	for _, p := range potions {
		output.Plain("")
		output.Header("%s", p.Name())
		details := strings.TrimPrefix(p.String(), p.Name()+"\n")
		output.Plain("%s", strings.TrimSuffix(details, "\n"))
	}
	return nil
}

// suggest runs alchemy.Suggest behind a spinner.
func suggest(ctx context.Context, gd *gamedata.GameData, opts alchemy.SuggestOptions) ([]*alchemy.Potion, error) {
	bar := output.CreateIndeterminateBar(output.Translate("suggest.computing"))
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bar.Add(1)
			}
		}
	}()

	potions, err := alchemy.Suggest(ctx, gd, opts)
	close(done)
	<-stopped
	bar.Finish()
	return potions, err
}
