package logger

import (
	"log/slog"
	"os"
)

// Log is the application-wide structured logger. It defaults to an info-level
// JSON logger so packages can log before Init runs (tests included).
var Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
	Level: slog.LevelInfo,
}))

func Init() {
	// JSON handler for production-ready logging
	Log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
