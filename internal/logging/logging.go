// Package logging builds the diagnostic logger and the framed log files the
// export tool writes its combined output to.
package logging

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Songmu/flextime"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels accepted by the CLI.
const (
	VerbosityInfo = iota
	VerbosityExtra
	VerbosityDebug
)

// clock lets tests pin log timestamps through flextime.
type clock struct{}

func (clock) Now() time.Time                         { return flextime.Now() }
func (clock) NewTicker(d time.Duration) *time.Ticker { return time.NewTicker(d) }

// New returns a console logger writing to w. Extra verbosity enables debug
// messages; debug verbosity also annotates callers.
func New(w io.Writer, verbosity int) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")

	level := zapcore.InfoLevel
	if verbosity >= VerbosityExtra {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)

	opts := []zap.Option{zap.WithClock(clock{})}
	if verbosity >= VerbosityDebug {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...)
}

// Since reports the time elapsed since start on the flextime clock.
func Since(start time.Time) zap.Field {
	return zap.Duration("elapsed", flextime.Now().Sub(start))
}

// File is a log file that receives a single run's merged stdout and stderr,
// framed by a header and footer. Opening it truncates any previous log.
type File struct {
	Path  string
	Name  string
	RunID string

	fp *os.File
	w  *bufio.Writer
}

// OpenFile creates or truncates the log file at path and writes its header.
func OpenFile(path, name string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	fp, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}
	f := &File{
		Path:  path,
		Name:  name,
		RunID: uuid.NewString(),
		fp:    fp,
		w:     bufio.NewWriter(fp),
	}
	fmt.Fprintln(f.w, "# skyrim-alchemy run log")
	fmt.Fprintf(f.w, "name: %s\n", f.Name)
	fmt.Fprintf(f.w, "run_id: %s\n", f.RunID)
	fmt.Fprintf(f.w, "start: %s\n", flextime.Now().Format(time.RFC3339))
	fmt.Fprint(f.w, "---\n")
	return f, nil
}

// Write appends p to the log body.
func (f *File) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

// Close writes the footer, recording runErr if the run failed, and closes the file.
func (f *File) Close(runErr error) error {
	fmt.Fprint(f.w, "\n---\n")
	fmt.Fprintf(f.w, "end: %s\n", flextime.Now().Format(time.RFC3339))
	if runErr != nil {
		fmt.Fprintf(f.w, "error: %s\n", runErr)
	}
	if err := f.w.Flush(); err != nil {
		f.fp.Close()
		return fmt.Errorf("flush log file: %w", err)
	}
	return f.fp.Close()
}
