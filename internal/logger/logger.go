// Package logger builds the process logger. Output never goes to stdout, which
// carries channel responses in serve mode.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey string

const loggerKey contextKey = "logger"

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
}

type Config struct {
	// Level of the logger. Valid options: debug, info, warn, error, disable.
	Level string

	// File enables a rotating JSON log file at this path when not empty.
	File string

	// MaxSize is the maximum size in megabytes of the log file before it gets rotated.
	MaxSize int

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int

	// Compress determines if the rotated log files should be compressed using gzip.
	Compress bool

	// Console writes human readable output to ConsoleTo (stderr when nil).
	Console   bool
	ConsoleTo io.Writer
}

// ParseLevel 解析日志级别
func ParseLevel(level string) (zerolog.Level, error) {
	switch level {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disable":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unrecognized logging level '%s'", level)
	}
}

// New builds a logger writing to the configured sinks. The returned closer releases
// the log file and must be called on shutdown.
func New(cfg Config, extra ...io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	writers := append([]io.Writer(nil), extra...)
	var closer io.Closer = nopCloser{}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0700); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("create log directory: %w", err)
		}
		fileLogger := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.Compress,
		}
		writers = append(writers, fileLogger)
		closer = fileLogger
	}

	if cfg.Console {
		out := cfg.ConsoleTo
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:     out,
			NoColor: runtime.GOOS == "windows",
		})
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(io.MultiWriter(writers...)).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

// WithContext 将日志记录器放入 context
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, &logger)
}

// FromContext extracts the logger from the context, or a disabled logger if none is set.
func FromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
