// Package launcher starts ModOrganizer with a configured shortcut and waits
// for it to exit.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"
)

// ShortcutScheme is the URI prefix ModOrganizer uses to run a named shortcut.
const ShortcutScheme = "moshortcut://:"

// WaitDelay bounds how long Launch waits for the child's output pipes after
// the child was killed by an interrupt.
const WaitDelay = 5 * time.Second

var (
	// ErrExecutableNotFound is returned when the ModOrganizer executable is missing.
	ErrExecutableNotFound = errors.New("mod organizer executable not found")
	// ErrNoShortcut is returned when no shortcut name is configured.
	ErrNoShortcut = errors.New("no shortcut name configured")
)

// Options designate what to launch.
type Options struct {
	// Executable is the path to ModOrganizer.exe.
	Executable string
	// Shortcut is the name of a shortcut registered inside ModOrganizer.
	Shortcut string
}

// A Runner runs a prepared command and waits for it to finish.
type Runner func(cmd *exec.Cmd) error

// ConsoleRunner runs the command attached to the current console, the way a
// shell runs a child without opening a new window.
func ConsoleRunner(cmd *exec.Cmd) error {
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ExitError reports that the launched process exited with a non-zero status.
type ExitError struct {
	Executable string
	Code       int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Executable, e.Code)
}

// ExitCode lets the CLI exit with the child's status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ShortcutURI returns the single argument that makes ModOrganizer run the named shortcut.
func ShortcutURI(name string) string {
	return ShortcutScheme + name
}

// Command prepares the ModOrganizer invocation: exactly one argument, and no
// new window for the child on platforms that have one.
func Command(ctx context.Context, opts Options) *exec.Cmd {
	cmd := exec.CommandContext(ctx, opts.Executable, ShortcutURI(opts.Shortcut))
	cmd.WaitDelay = WaitDelay
	hideWindow(cmd)
	return cmd
}

// Launch starts ModOrganizer with the configured shortcut and blocks until it
// exits. Nothing is written to disk. A non-zero exit status is returned as
// *ExitError.
func Launch(ctx context.Context, opts Options, run Runner) error {
	if opts.Shortcut == "" {
		return ErrNoShortcut
	}
	info, err := os.Stat(opts.Executable)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
		return fmt.Errorf("%w: %s", ErrExecutableNotFound, opts.Executable)
	}
	if err != nil {
		return fmt.Errorf("stat mod organizer executable: %w", err)
	}

	if run == nil {
		run = ConsoleRunner
	}
	err = run(Command(ctx, opts))

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Executable: opts.Executable, Code: exitErr.ExitCode()}
	}
	if err != nil {
		return fmt.Errorf("run mod organizer: %w", err)
	}
	return nil
}
