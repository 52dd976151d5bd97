package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"SkyrimAlchemy/internal/cli/cmd"
	"SkyrimAlchemy/internal/cli/output"
	"SkyrimAlchemy/internal/gamedata"
	"SkyrimAlchemy/internal/loadorder"
	"SkyrimAlchemy/internal/logging"
	env "SkyrimAlchemy/pkg"
	"SkyrimAlchemy/pkg/launcher"

	"github.com/Xuanwo/go-locale"
	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"go.abhg.dev/komplete"
	"golang.org/x/text/language"
)

const (
	name    = "skyrim-alchemy"
	version = "0.3.0"
)

type aboutCmd struct{}

func (aboutCmd) Run() error {
	w := output.Writer()
	color.New(color.Bold).Fprintln(w, name, version)
	color.New(color.Underline).Fprintln(w, output.Translate("launcher.description"))
	fmt.Fprintln(w, output.Translate("launcher.copyright"))
	fmt.Fprintln(w, output.Translate("launcher.license"))
	return nil
}

type CLI struct {
	Launch         cmd.LaunchCmd         `cmd:"" default:"1" help:"${launch}"`
	ExportGameData cmd.ExportGameDataCmd `cmd:"" help:"${export}"`
	SuggestPotions cmd.SuggestPotionsCmd `cmd:"" help:"${suggest}"`
	LoadOrder      cmd.LoadOrderCmd      `cmd:"" help:"${loadorder}"`
	Config         cmd.ConfigCmd         `cmd:"" help:"${config}"`
	OpenLog        cmd.OpenLogCmd        `cmd:"" help:"${openlog}"`
	Completions    komplete.Command      `cmd:"" help:"${completions}"`
	About          aboutCmd              `cmd:"" help:"${about}"`

	Verbosity string `help:"${arg_verbosity}" enum:"info,extra,debug" default:"info"`
	Dir       string `help:"${arg_dir}" type:"path" default:"${exe_dir}" placeholder:"PATH"`
	NoColor   bool   `help:"${arg_nocolor}"`
	Lang      string `help:"${arg_lang}" placeholder:"en|ru"`
}

func (c *CLI) AfterApply(ctx *kong.Context) error {
	var verbosity int
	switch c.Verbosity {
	case "info":
		verbosity = logging.VerbosityInfo
	case "extra":
		verbosity = logging.VerbosityExtra
	case "debug":
		verbosity = logging.VerbosityDebug
	}
	ctx.Bind(verbosity)
	ctx.Bind(logging.New(os.Stderr, verbosity))

	if err := env.SetDirs(c.Dir); err != nil {
		return err
	}
	if c.NoColor {
		color.NoColor = true
	}
	if c.Lang != "" && c.Lang != "en" && c.Lang != "ru" {
		return fmt.Errorf("invalid language '%s': must be 'en' or 'ru'", c.Lang)
	}

	// Read on first use, so the config commands still work on a broken file.
	return ctx.BindSingletonProvider(func() (launcher.Config, error) {
		return launcher.LoadConfig(env.ConfigPath())
	})
}

func vars() kong.Vars {
	vars := make(kong.Vars)
	for k, v := range output.Translations() {
		vars[strings.ReplaceAll(k, ".", "_")] = v
	}
	vars["exe_dir"] = env.ExecutableDir()
	return vars
}

func valueFormatter(value *kong.Value) string {
	if value.Enum != "" {
		return fmt.Sprintf("%s [%s]", value.Help, strings.Join(value.EnumSlice(), ", "))
	}
	return value.Help
}

func groups() kong.Groups {
	return kong.Groups{
		"filter": output.Translate("arg_group_filter"),
	}
}

// tips prints a tip message based on an error, if any are available.
func tips(err error) {
	// ModOrganizer isn't where the configuration says
	if errors.Is(err, launcher.ErrExecutableNotFound) || errors.Is(err, launcher.ErrNoShortcut) {
		output.Tip(output.Translate("tip.modorganizer"))
	}
	if errors.Is(err, launcher.ErrConfigExists) {
		output.Tip(output.Translate("tip.configexists"))
	}
	// Suggesting before exporting, or from an export of another version
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, gamedata.ErrIncompatibleVersion) {
		output.Tip(output.Translate("tip.gamedata"))
	}
	if errors.Is(err, loadorder.ErrEmpty) {
		output.Tip(output.Translate("tip.loadorder"))
	}
}

// langFromArgs finds --lang before parsing, since help text is translated
// when the parser is built.
func langFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--lang" && i+1 < len(args) {
			return args[i+1]
		}
		if v, ok := strings.CutPrefix(arg, "--lang="); ok {
			return v
		}
	}
	return ""
}

// flagsWithValue are the global flags that consume the following argument.
var flagsWithValue = []string{"--verbosity", "--dir", "--lang"}

// isLaunch reports whether args select the launch command, either by name
// or by naming no command at all.
func isLaunch(args []string) bool {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if slices.Contains(flagsWithValue, arg) {
			i++
			continue
		}
		if strings.HasPrefix(arg, "-") {
			continue
		}
		return arg == "launch"
	}
	return true
}

// setLang picks the message language. The launch command only honours
// --lang and otherwise speaks English regardless of the system locale.
func setLang(args []string) {
	if flag := langFromArgs(args); flag != "" {
		if tag, err := language.Parse(flag); err == nil {
			output.SetLang(tag)
			return
		}
	}
	if isLaunch(args) {
		output.SetLang(language.English)
		return
	}
	if tag, err := locale.Detect(); err == nil {
		output.SetLang(tag)
		return
	}
	output.SetLang(language.English)
}

// Run parses args and runs the selected command. It returns the function to
// exit with and the exit code. Extra options are applied last and may
// replace the default bindings.
func Run(ctx context.Context, args []string, options ...kong.Option) (func(int), int) {
	setLang(args)

	opts := []kong.Option{
		kong.Name(name),
		kong.Description(output.Translate("launcher.description")),
		kong.ConfigureHelp(kong.HelpOptions{
			NoExpandSubcommands: true,
			Compact:             true,
		}),
		kong.ValueFormatter(valueFormatter),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(launcher.Runner(launcher.ConsoleRunner)),
		groups(),
		vars(),
	}
	parser := kong.Must(&CLI{}, append(opts, options...)...)
	komplete.Run(parser)

	kctx, err := parser.Parse(args)
	if err != nil {
		exitCode := 1
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) {
			exitCode = parseErr.ExitCode()
		}
		output.Error("%s", err)
		return parser.Exit, exitCode
	}

	if err := kctx.Run(); err != nil {
		// The child already reported its own failure.
		var exitErr *launcher.ExitError
		if errors.As(err, &exitErr) {
			return kctx.Exit, exitErr.ExitCode()
		}
		output.Error("%s", err)
		tips(err)
		var coder kong.ExitCoder
		if errors.As(err, &coder) {
			return kctx.Exit, coder.ExitCode()
		}
		return kctx.Exit, 1
	}
	return kctx.Exit, 0
}
