package testutil

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/gobatis/internal/ctxlog"
)

// NewLogContext returns a context carrying a debug-level text logger that
// writes into the returned buffer.
func NewLogContext() (context.Context, *SafeBuffer) {
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return ctxlog.WithLogger(context.Background(), logger), buf
}
