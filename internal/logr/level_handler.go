package logr

import (
	"context"
	"log/slog"
)

// LevelHandler wraps a slog handler, dropping records below a minimum level.
// It permits raising or lowering the level of a handler constructed
// elsewhere, e.g. the slog default handler.
type LevelHandler struct {
	level   slog.Leveler
	handler slog.Handler
}

// NewLevelHandler returns a LevelHandler with the given level. All methods
// except Enabled delegate to h.
func NewLevelHandler(level slog.Leveler, h slog.Handler) *LevelHandler {
	// Optimization: avoid chains of LevelHandlers.
	if lh, ok := h.(*LevelHandler); ok {
		h = lh.handler
	}
	return &LevelHandler{level: level, handler: h}
}

func (h *LevelHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.handler.Handle(ctx, r)
}

func (h *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithAttrs(attrs))
}

func (h *LevelHandler) WithGroup(name string) slog.Handler {
	return NewLevelHandler(h.level, h.handler.WithGroup(name))
}

func (h *LevelHandler) Handler() slog.Handler {
	return h.handler
}

// VerbosityHandler wraps a slog handler, translating the levels logr assigns
// to V-levelled records (V(n) is logged at slog level -n) into the slog
// levels returned by toSlogLevel, so that V(1) is logged as DEBUG.
type VerbosityHandler struct {
	handler slog.Handler
}

func NewVerbosityHandler(h slog.Handler) *VerbosityHandler {
	return &VerbosityHandler{handler: h}
}

func (h *VerbosityHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, fromLogrLevel(level))
}

func (h *VerbosityHandler) Handle(ctx context.Context, r slog.Record) error {
	r.Level = fromLogrLevel(r.Level)
	return h.handler.Handle(ctx, r)
}

func (h *VerbosityHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewVerbosityHandler(h.handler.WithAttrs(attrs))
}

func (h *VerbosityHandler) WithGroup(name string) slog.Handler {
	return NewVerbosityHandler(h.handler.WithGroup(name))
}

// fromLogrLevel maps a level below INFO, as produced by logr.V, to the
// corresponding slog level. Other levels are unchanged.
func fromLogrLevel(level slog.Level) slog.Level {
	if level >= slog.LevelInfo {
		return level
	}
	return toSlogLevel(int(-level))
}
