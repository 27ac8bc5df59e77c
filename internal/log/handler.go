package log

import (
	"context"
	"log/slog"

	"github.com/ErlanBelekov/account-recovery/internal/requestid"
)

// ContextHandler decorates an slog.Handler so every record carries the
// request_id of the reset attempt being handled, which ties audit rows,
// email dispatch logs and HTTP logs together.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler wraps inner; records pass through unchanged except for
// the attributes pulled from the context.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id := requestid.FromContext(ctx); id != "" {
		r.AddAttrs(slog.String("request_id", id))
	}
	return h.inner.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}
