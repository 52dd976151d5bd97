package cmd

import (
	"fmt"
	"strings"

	"SkyrimAlchemy/internal/cli/output"
	env "SkyrimAlchemy/pkg"
	"SkyrimAlchemy/pkg/launcher"

	"github.com/pelletier/go-toml/v2"
)

// ConfigCmd manages the configuration file.
type ConfigCmd struct {
	Show ConfigShowCmd `cmd:"" default:"1" help:"${config_show}"`
	Init ConfigInitCmd `cmd:"" help:"${config_init}"`
	Path ConfigPathCmd `cmd:"" help:"${config_path}"`
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(cfg launcher.Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode configuration: %w", err)
	}
	output.Plain("%s", strings.TrimRight(string(data), "\n"))
	output.Plain("")
	output.Header("%s", output.Translate("config.downstream"))
	output.Plain("%s", DownstreamCommandLine(cfg))
	return nil
}

// DownstreamCommandLine formats the command ModOrganizer has to run for the
// export shortcut. Flag values are single quoted.
func DownstreamCommandLine(cfg launcher.Config) string {
	args := cfg.DownstreamArgs()
	parts := []string{cfg.Downstream.Tool}
	for i, arg := range args {
		if i > 0 && strings.HasPrefix(args[i-1], "--") {
			arg = "'" + strings.ReplaceAll(arg, "'", "''") + "'"
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

type ConfigInitCmd struct {
	Force bool `help:"${arg_force}"`
}

func (c *ConfigInitCmd) Run() error {
	path := env.ConfigPath()
	if err := launcher.DefaultConfig().WriteConfig(path, c.Force); err != nil {
		return err
	}
	output.Success(output.Translate("config.written"), path)
	return nil
}

type ConfigPathCmd struct{}

func (c *ConfigPathCmd) Run() error {
	output.Plain("%s", env.ConfigPath())
	return nil
}
