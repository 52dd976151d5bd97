package gamedata

import (
	"context"
	"fmt"
	"runtime"

	"SkyrimAlchemy/internal/loadorder"
	"SkyrimAlchemy/internal/logging"
	"SkyrimAlchemy/internal/plugin"

	"github.com/Songmu/flextime"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExportOptions configures Export.
type ExportOptions struct {
	GamePath  string
	LocalPath string
	Log       *zap.Logger

	// OnLoadOrder is called once the active plugins are known.
	OnLoadOrder func(plugins []string)
	// OnParsed is called after each plugin is parsed, from any goroutine.
	OnParsed func(name string)
}

// Export reads the active load order and builds game data from its plugins.
// Plugins are parsed concurrently and merged in load order.
func Export(ctx context.Context, opts ExportOptions) (*GameData, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	start := flextime.Now()
	active, err := loadorder.ActivePlugins(opts.GamePath, opts.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("read load order: %w", err)
	}
	if len(active) == 0 {
		return nil, loadorder.ErrEmpty
	}
	log.Debug("resolved load order", zap.Int("plugins", len(active)), logging.Since(start))
	if opts.OnLoadOrder != nil {
		opts.OnLoadOrder(active)
	}

	start = flextime.Now()
	parser := plugin.NewParser(loadorder.DataDir(opts.GamePath), log)
	parsed := make([]*plugin.Plugin, len(active))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range active {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := parser.ParseFile(name)
			if err != nil {
				return err
			}
			parsed[i] = p
			if opts.OnParsed != nil {
				opts.OnParsed(name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Debug("parsed plugins", zap.Int("plugins", len(parsed)), logging.Since(start))

	b := NewBuilder(loadorder.New(active))
	for _, p := range parsed {
		if err := b.Add(p); err != nil {
			return nil, err
		}
	}
	gd, err := b.Build()
	if err != nil {
		return nil, err
	}
	log.Info("built game data",
		zap.Int("ingredients", len(gd.Ingredients)),
		zap.Int("magic_effects", len(gd.MagicEffects)),
		zap.Int("plugins", gd.LoadOrder.Len()))
	return gd, nil
}
