package output

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

var out io.Writer = color.Output

// SetWriter redirects every message to w. Colors are disabled, since w is
// usually a log file rather than a terminal.
func SetWriter(w io.Writer) {
	out = w
	color.NoColor = true
}

// Writer returns the writer messages are printed to.
func Writer() io.Writer {
	return out
}

// Info prints an general informational message.
func Info(format string, a ...any) {
	color.New(color.Bold, color.FgBlue).Fprint(out, "| ")
	fmt.Fprintf(out, format+"\n", a...)
}

// Success prints a success information message.
//
// Indicates a command or task has successfully completed.
func Success(format string, a ...any) {
	color.New(color.Bold, color.FgGreen).Fprint(out, "| ")
	fmt.Fprintf(out, format+"\n", a...)
}

// Warning prints a cautionary message.
//
// Indicates that there may be an issue.
func Warning(format string, a ...any) {
	color.New(color.Bold, color.FgYellow).Fprintf(out, "| %s: ", Translate("launcher.warning"))
	fmt.Fprintf(out, format+"\n", a...)
}

// Error prints an error message.
//
// Indicates a fatal error.
func Error(format string, a ...any) {
	color.New(color.Bold, color.FgRed).Fprintf(out, "| %s: ", Translate("launcher.error"))
	fmt.Fprintf(out, format+"\n", a...)
}

// Tip prints a tip message.
//
// Indicates an action that should be performed.
func Tip(format string, a ...any) {
	color.New(color.Bold, color.FgYellow).Fprintf(out, "| %s: ", Translate("launcher.tip"))
	fmt.Fprintf(out, format+"\n", a...)
}

// Header prints a header message.
func Header(format string, a ...any) {
	color.New(color.Bold, color.Underline).Fprintf(out, format+"\n", a...)
}

// Status prints a status message.
func Status(format string, a ...any) {
	color.New(color.Faint).Fprintf(out, format+"\n", a...)
}

// Plain prints a message without any prefix.
func Plain(format string, a ...any) {
	fmt.Fprintf(out, format+"\n", a...)
}

// CreateProgressBar creates a progress bar for operations with a known number of steps.
func CreateProgressBar(total int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][%s][reset] ", description)),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// CreateIndeterminateBar creates a spinner for operations with unknown duration.
func CreateIndeterminateBar(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(fmt.Sprintf("[cyan][%s][reset] ", description)),
		progressbar.OptionSetWriter(out),
		progressbar.OptionEnableColorCodes(!color.NoColor),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
	)
}
