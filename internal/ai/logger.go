package ai

import (
	"context"
	"log/slog"
)

// LoggerFrom returns the logger commands store in ctx under "logger", or
// slog.Default()
func LoggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value("logger").(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
