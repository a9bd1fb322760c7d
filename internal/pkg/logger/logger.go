package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// Output formats accepted by Init.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var globalLogger *slog.Logger

// Options configures the global logger.
type Options struct {
	Level   string    // debug, info, warn, error
	Format  string    // json (zap backed) or console (tint)
	Writer  io.Writer // console output, default os.Stdout
	NoColor bool      // disable ANSI colors in the console format
	File    string    // optional log file for the json format
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(levelStr string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// Init builds the global slog logger and returns the zap logger backing it.
// For the console format the returned zap logger is a development logger at the same level,
// so components that take *zap.Logger keep working.
func Init(opts Options) (*zap.Logger, error) {
	level, ok := ParseLevel(opts.Level)

	zapLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	var zapLogger *zap.Logger
	var err error

	switch opts.Format {
	case FormatConsole:
		writer := opts.Writer
		if writer == nil {
			writer = os.Stdout
		}
		globalLogger = slog.New(tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			NoColor:    opts.NoColor,
		}))
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zapLevel
		zapLogger, err = cfg.Build()
	default:
		cfg := zap.NewProductionConfig()
		cfg.Level = zapLevel
		if opts.File != "" {
			cfg.OutputPaths = []string{opts.File}
		}
		zapLogger, err = cfg.Build()
		if err == nil {
			globalLogger = slog.New(zapslog.NewHandler(zapLogger.Core()))
		}
	}
	if err != nil {
		return nil, err
	}

	slog.SetDefault(globalLogger)
	if !ok {
		globalLogger.Warn("Invalid log level string, defaulting to INFO", "input", opts.Level)
	}
	return zapLogger, nil
}

func toZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func current() *slog.Logger {
	if globalLogger == nil {
		return slog.Default()
	}
	return globalLogger
}

// Debug logs a message at DebugLevel.
func Debug(msg string, args ...any) {
	current().Log(context.Background(), slog.LevelDebug, msg, args...)
}

// Info logs a message at InfoLevel.
func Info(msg string, args ...any) {
	current().Log(context.Background(), slog.LevelInfo, msg, args...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, args ...any) {
	current().Log(context.Background(), slog.LevelWarn, msg, args...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, args ...any) {
	current().Log(context.Background(), slog.LevelError, msg, args...)
}

// Fatal logs a message at ErrorLevel then exits.
func Fatal(msg string, args ...any) {
	current().Error(msg, args...)
	os.Exit(1)
}
