// Package logging provides the run log for movie-wallpaper.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FilePrefix starts every log file name.
const FilePrefix = "movie_wallpaper_run_"

// Options configures a Logger.
type Options struct {
	// Dir receives the timestamped log file.
	Dir string
	// Verbose enables debug records and mirrors records to Console.
	Verbose bool
	// Console receives human-readable records when Verbose is set.
	// Defaults to os.Stderr.
	Console io.Writer
	// RunID tags every record; a random UUID when empty.
	RunID string
	// Now overrides the clock used for the file name.
	Now func() time.Time
}

// Logger writes structured records to a per-run log file. A nil *Logger
// is valid and discards everything.
type Logger struct {
	zl       zerolog.Logger
	file     *os.File
	filePath string
	runID    string
}

// Setup creates a new logger that writes to a timestamped log file.
// Returns nil if logging is disabled (noLog=true).
func Setup(logDir string, verbose, noLog bool) (*Logger, error) {
	if noLog {
		return nil, nil
	}
	return New(Options{Dir: logDir, Verbose: verbose})
}

// New creates a logger from opts.
func New(opts Options) (*Logger, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", opts.Dir, err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	filename := FilePrefix + now().Format("20060102_150405") + ".log"
	filePath := filepath.Join(opts.Dir, filename)

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var out io.Writer = file
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
		console := opts.Console
		if console == nil {
			console = os.Stderr
		}
		out = zerolog.MultiLevelWriter(file, zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339})
	}

	zl := zerolog.New(out).Level(level).With().Timestamp().Str("run_id", runID).Logger()

	l := &Logger{
		zl:       zl,
		file:     file,
		filePath: filePath,
		runID:    runID,
	}

	l.Info("movie-wallpaper starting")
	if opts.Verbose {
		l.Info("Debug level logging enabled")
	}
	l.Info("Log file: %s", filePath)

	return l, nil
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

// RunID returns the identifier attached to every record.
func (l *Logger) RunID() string {
	if l == nil {
		return ""
	}
	return l.runID
}

// With returns a child logger that adds key=value to every record.
func (l *Logger) With(key, value string) *Logger {
	if l == nil {
		return nil
	}
	child := *l
	child.zl = l.zl.With().Str(key, value).Logger()
	return &child
}

// Info logs an info-level message.
func (l *Logger) Info(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Info().Msgf(format, args...)
}

// Debug logs a debug-level message (only if verbose mode is enabled).
func (l *Logger) Debug(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Debug().Msgf(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Warn().Msgf(format, args...)
}

// Error logs an error message with err attached.
func (l *Logger) Error(err error, format string, args ...any) {
	if l == nil {
		return
	}
	l.zl.Error().Err(err).Msgf(format, args...)
}

// Zerolog exposes the underlying logger for structured events.
func (l *Logger) Zerolog() *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return &l.zl
}
