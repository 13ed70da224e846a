package utils

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging throughout the application.
// Messages are printf-style and carry a "[component]" prefix by convention.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a console Logger writing to stdout at info level.
func NewLogger() *Logger {
	l, _ := NewLoggerWith(os.Stdout, "info", "console")
	return l
}

// NewLoggerWith creates a Logger for the given output, level and format.
// Format is "console" for human-readable output or "json".
func NewLoggerWith(out io.Writer, level, format string) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: invalid level %q: %w", level, err)
	}

	if format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "2006-01-02 15:04:05",
		}
	}

	zl := zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return &Logger{zl: zl}, nil
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

// Elapsed logs at debug level how long an operation took since start.
func (l *Logger) Elapsed(op string, start time.Time) {
	l.zl.Debug().Str("op", op).Dur("elapsed", time.Since(start)).Msg("done")
}
