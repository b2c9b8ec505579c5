// Package logging builds the structured JSON logger used by the CLI.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ukaji3/pvextract-go/internal/config"
)

type contextKey string

// RunIDKey is the context key and log attribute carrying the run id.
const RunIDKey contextKey = "run_id"

// NewRunID returns a fresh id for one conversion run.
func NewRunID() string {
	return uuid.NewString()
}

// WithRunID stores a run id in the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// RunID returns the run id stored in ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(RunIDKey).(string)
	return id
}

// New creates a JSON logger for cfg. The returned close function releases
// the log file, if any.
func New(cfg config.LogConfig) (*slog.Logger, func() error, error) {
	out, closeFn, err := openOutput(cfg)
	if err != nil {
		return nil, nil, err
	}
	return NewWithWriter(out, ParseLevel(cfg.Level)), closeFn, nil
}

// NewWithWriter creates a JSON logger writing to w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(&runHandler{Handler: handler})
}

func openOutput(cfg config.LogConfig) (io.Writer, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		return os.Stdout, noop, nil
	case "file", "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		if strings.EqualFold(cfg.Output, "both") {
			return io.MultiWriter(os.Stderr, file), file.Close, nil
		}
		return file, file.Close, nil
	default:
		return os.Stderr, noop, nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// ParseLevel converts a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// runHandler adds the run id found in the record's context.
type runHandler struct {
	slog.Handler
}

func (h *runHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := RunID(ctx); id != "" {
		r.AddAttrs(slog.String(string(RunIDKey), id))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *runHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &runHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *runHandler) WithGroup(name string) slog.Handler {
	return &runHandler{Handler: h.Handler.WithGroup(name)}
}
