// Package logging configures the engine's slog default handler. Every
// executor and storage package logs through slog's package-level functions
// rather than taking a logger dependency, matching the conventional
// util.InitSlog.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Init configures slog based on the LOG_LEVEL environment variable.
// Supported levels: debug, info, warn, error. Unset or unrecognized
// values default to info.
func Init() {
	if logLevel, ok := os.LookupEnv("LOG_LEVEL"); ok {
		var level slog.Level

		switch strings.ToLower(logLevel) {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		handler := slog.NewTextHandler(os.Stderr, opts)
		slog.SetDefault(slog.New(handler))
	}
}
