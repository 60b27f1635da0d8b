package providers

import (
	"context"
	"log/slog"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/logging"
)

// logWithProvider emits a log entry if logger is non-nil and always includes provider name.
func logWithProvider(ctx context.Context, logger *slog.Logger, level slog.Level, provider string, msg string, args ...any) {
	logger = logging.FromContext(ctx, logger)
	if logger == nil {
		return
	}
	args = append(args, slog.String(logging.FieldProvider, provider))
	logger.Log(ctx, level, msg, args...)
}

// LogFailure records why a source returned nothing. Rate limits are called out
// separately so operators can tell quota exhaustion from outages.
func LogFailure(ctx context.Context, logger *slog.Logger, provider string, err error) {
	if rl, ok := AsRateLimitError(err); ok {
		logWithProvider(ctx, logger, slog.LevelWarn, provider, "transfer source rate limited",
			"retry_after_ms", rl.RetryAfter.Milliseconds(), "error", err)
		return
	}
	logWithProvider(ctx, logger, slog.LevelError, provider, "transfer source failed", "error", err)
}
