package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the process logger
type Options struct {
	// Level is a zerolog level name; empty means info
	Level string
	// Name prefixes the log file, e.g. "mc-portfolio"
	Name string
	// LogDir enables a dated log file next to the console output
	LogDir string
	// JSON disables the human-readable console writer
	JSON bool
	// Output overrides stderr as the console sink
	Output io.Writer
}

// Logger wraps a zerolog.Logger with the optional log file it writes to
type Logger struct {
	zerolog.Logger
	file *os.File
	path string
}

// New builds a logger writing to the console and, when LogDir is set, to
// logs/<name>_<date>.log
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	var console io.Writer = out
	if !opts.JSON {
		console = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	l := &Logger{}
	writers := []io.Writer{console}

	if opts.LogDir != "" {
		if err := os.MkdirAll(opts.LogDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		name := opts.Name
		if name == "" {
			name = "mc-portfolio"
		}
		timestamp := time.Now().Format("2006-01-02")
		l.path = filepath.Join(opts.LogDir, fmt.Sprintf("%s_%s.log", name, timestamp))

		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.file = file
		writers = append(writers, file)
	}

	l.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return l, nil
}

// Path returns the log file path, or "" when only the console is used
func (l *Logger) Path() string {
	return l.path
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Component returns a child logger tagged with the component name
func (l *Logger) Component(name string) zerolog.Logger {
	return l.Logger.With().Str("component", name).Logger()
}
