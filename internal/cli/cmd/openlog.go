package cmd

import (
	"fmt"
	"os"

	"SkyrimAlchemy/internal/cli/output"
	"SkyrimAlchemy/pkg/launcher"

	"github.com/pkg/browser"
)

// OpenLogCmd opens the export log with the system's default handler.
type OpenLogCmd struct{}

func (c *OpenLogCmd) Run(cfg launcher.Config) error {
	path := cfg.Downstream.LogFile
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	output.Info(output.Translate("openlog.opening"), path)
	return browser.OpenFile(path)
}
