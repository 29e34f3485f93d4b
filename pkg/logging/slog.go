package logging

import (
	"log/slog"
	"os"
)

// New returns a JSON logger. level accepts slog level names ("debug",
// "info", "warn", "error"); anything unparseable falls back to info.
func New(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: l,
	})
	return slog.New(h)
}
