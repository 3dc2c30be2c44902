// Package logging sets up the process-wide structured logger. Thurbox
// never writes to stdout or stderr once the alternate screen is
// entered, so every log line goes to <data-dir>/thurbox.log.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup opens (creating if needed) the log file at path and installs a
// JSON-handler slog.Logger as the process default. The returned closer
// must be called on shutdown.
func Setup(path string) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if os.Getenv("THURBOX_DEBUG") != "" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, f, nil
}

// Discard returns a logger that drops everything, for use in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
