package cmd

import (
	"context"

	"SkyrimAlchemy/internal/cli/output"
	"SkyrimAlchemy/internal/gamedata"
	"SkyrimAlchemy/internal/logging"
	env "SkyrimAlchemy/pkg"
	"SkyrimAlchemy/pkg/launcher"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// ExportGameDataCmd exports the ingredients and magic effects of the active
// load order. It is the command ModOrganizer runs for the export shortcut.
type ExportGameDataCmd struct {
	GamePath   string `help:"${arg_gamepath}" type:"path" placeholder:"PATH"`
	LocalPath  string `help:"${arg_localpath}" type:"path" placeholder:"PATH"`
	LogFile    string `help:"${arg_logfile}" type:"path" placeholder:"FILE"`
	ExportPath string `arg:"" optional:"" help:"${arg_exportpath}" type:"path"`
}

func (c *ExportGameDataCmd) Run(ctx context.Context, cfg launcher.Config, verbosity int, log *zap.Logger) (err error) {
	if c.LogFile != "" {
		f, ferr := logging.OpenFile(c.LogFile, "export-game-data")
		if ferr != nil {
			return ferr
		}
		prev := output.Writer()
		output.SetWriter(f)
		log = logging.New(f, verbosity)
		defer func() {
			output.SetWriter(prev)
			if cerr := f.Close(err); err == nil {
				err = cerr
			}
		}()
	}

	gamePath := firstNonEmpty(c.GamePath, cfg.Downstream.GamePath)
	localPath := firstNonEmpty(c.LocalPath, cfg.Downstream.LocalPath, env.LocalDir)
	exportPath := firstNonEmpty(c.ExportPath, cfg.Downstream.DataPath)
	output.Status(output.Translate("export.reading"), gamePath)

	var bar *progressbar.ProgressBar
	gd, err := gamedata.Export(ctx, gamedata.ExportOptions{
		GamePath:  gamePath,
		LocalPath: localPath,
		Log:       log,
		OnLoadOrder: func(plugins []string) {
			output.Info(output.Translate("export.loadorder"), len(plugins))
			if c.LogFile == "" {
				bar = output.CreateProgressBar(int64(len(plugins)), output.Translate("export.parsing"))
			}
		},
		OnParsed: func(string) {
			if bar != nil {
				bar.Add(1)
			}
		},
	})
	if err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}

	output.Info(output.Translate("export.ingredients"), len(gd.Ingredients), len(gd.MagicEffects))
	if err := gd.Write(exportPath); err != nil {
		return err
	}
	output.Success(output.Translate("export.written"), exportPath)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
