package trace

import (
	"context"
	"log/slog"

	"github.com/QuangTung97/buddysim/allocator"
)

// LogHook writes every history entry to a structured logger.
// Rejected requests are logged at info level, everything else at debug.
type LogHook struct {
	Logger  *slog.Logger
	Session string
}

// NewLogHook ...
func NewLogHook(logger *slog.Logger, session string) *LogHook {
	return &LogHook{Logger: logger, Session: session}
}

// Func ...
func (h *LogHook) Func(entry allocator.HistoryEntry) {
	level := slog.LevelDebug
	if entry.Kind.IsError() {
		level = slog.LevelInfo
	}
	h.Logger.LogAttrs(context.Background(), level, "history entry",
		slog.String("session", h.Session),
		slog.Int("step", entry.Step),
		slog.String("kind", entry.Kind.String()),
		slog.String("message", entry.Message),
	)
}
