package logging

import (
	"context"
	"log/slog"
)

// The helpers below accept a nil logger so components built without one
// (mostly in tests) stay silent instead of panicking.

func logAt(logger *slog.Logger, level slog.Level, msg string, args []any) {
	if logger == nil {
		return
	}
	ctx := context.Background()
	if !logger.Enabled(ctx, level) {
		return
	}
	logger.Log(ctx, level, msg, args...)
}

func Debug(logger *slog.Logger, msg string, args ...any) { logAt(logger, slog.LevelDebug, msg, args) }

func Info(logger *slog.Logger, msg string, args ...any) { logAt(logger, slog.LevelInfo, msg, args) }

func Warn(logger *slog.Logger, msg string, args ...any) { logAt(logger, slog.LevelWarn, msg, args) }

// Error attaches err under "error" when it is non-nil.
func Error(logger *slog.Logger, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, "error", err)
	}
	logAt(logger, slog.LevelError, msg, args)
}
