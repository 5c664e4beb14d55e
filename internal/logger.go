package internal

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// NewJSONLogger returns the structured logger used by the server.
func NewJSONLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewConsoleLogger returns a human-readable logger for one-shot commands.
// charmbracelet/log levels share slog's numbering.
func NewConsoleLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           log.Level(level),
	}))
}
