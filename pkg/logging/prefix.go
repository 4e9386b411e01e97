package logging

import (
	"context"
	"log/slog"
)

// PrefixHandler is a slog.Handler that prepends a fixed prefix to every
// record message before passing it on.
type PrefixHandler struct {
	prefix  string
	handler slog.Handler
}

// NewPrefixHandler wraps handler so that messages start with prefix and a space.
func NewPrefixHandler(prefix string, handler slog.Handler) *PrefixHandler {
	if ph, ok := handler.(*PrefixHandler); ok {
		return &PrefixHandler{prefix: ph.prefix + " " + prefix, handler: ph.handler}
	}
	return &PrefixHandler{prefix: prefix, handler: handler}
}

// WithPrefix returns a logger whose messages start with prefix.
// A nil logger yields a no-op logger.
func WithPrefix(log *slog.Logger, prefix string) *slog.Logger {
	if log == nil {
		log = Nop()
	}
	return slog.New(NewPrefixHandler(prefix, log.Handler()))
}

// Enabled reports whether the wrapped handler handles records at level.
func (h *PrefixHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record message and forwards it.
func (h *PrefixHandler) Handle(ctx context.Context, r slog.Record) error {
	nr := slog.NewRecord(r.Time, r.Level, h.prefix+" "+r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		nr.AddAttrs(a)
		return true
	})
	return h.handler.Handle(ctx, nr)
}

// WithAttrs returns a new PrefixHandler with the given attributes.
func (h *PrefixHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &PrefixHandler{prefix: h.prefix, handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new PrefixHandler with the given group.
func (h *PrefixHandler) WithGroup(name string) slog.Handler {
	return &PrefixHandler{prefix: h.prefix, handler: h.handler.WithGroup(name)}
}
