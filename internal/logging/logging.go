// Package logging builds the process logger from configuration.
package logging

import (
	"io"
	"log/slog"

	"github.com/drgolem/ashowinfo/internal/config"

	"github.com/google/uuid"
)

// New returns a slog logger writing to w with the configured level and
// handler format. Every record carries the run_id of this process.
func New(cfg config.Logging, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With("run_id", uuid.NewString())
}
