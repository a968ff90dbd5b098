package logger

import (
	"log/slog"
	"os"
)

// New returns a structured slog logger. Production gets JSON at info level;
// anything else gets human-readable text at debug so local runs stay legible.
func New(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
