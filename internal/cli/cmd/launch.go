package cmd

import (
	"context"

	"SkyrimAlchemy/pkg/launcher"

	"go.uber.org/zap"
)

// LaunchCmd runs the ModOrganizer shortcut that exports game data and waits
// for ModOrganizer to exit. It prints nothing of its own.
type LaunchCmd struct{}

func (c *LaunchCmd) Run(ctx context.Context, cfg launcher.Config, run launcher.Runner, log *zap.Logger) error {
	opts := cfg.Options()
	log.Debug("launching mod organizer",
		zap.String("executable", opts.Executable),
		zap.String("argument", launcher.ShortcutURI(opts.Shortcut)))
	if err := launcher.Launch(ctx, opts, run); err != nil {
		return err
	}
	log.Debug("mod organizer exited")
	return nil
}
