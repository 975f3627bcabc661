package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// New builds the application logger. The text format uses tint for readable
// CLI output; json is meant for scheduled/daemon runs.
func New(level, format string) *slog.Logger {
	lvl := parseLevel(level)

	if format == "json" {
		h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
		return slog.New(h).With("app", "xema-aggregation")
	}

	h := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	})
	return slog.New(h)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
