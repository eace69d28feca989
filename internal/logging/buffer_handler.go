package logging

import (
	"context"
	"log/slog"
	"maps"
	"time"
)

// LogCallback receives every buffered log entry. The event bus hooks in
// here so this package does not import it.
type LogCallback func(entry LogEntry)

// BufferHandler feeds the global ring buffer and the registered callback.
// Both are looked up per record, so handlers built before Initialize start
// buffering once it runs.
type BufferHandler struct {
	level  slog.Leveler
	module string
	prefix string
	attrs  map[string]any
}

// NewBufferHandler creates a buffer handler filtering at level.
func NewBufferHandler(level slog.Leveler) *BufferHandler {
	return &BufferHandler{level: level, module: "main", attrs: map[string]any{}}
}

// Enabled implements slog.Handler.
func (h *BufferHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *BufferHandler) Handle(_ context.Context, r slog.Record) error {
	buffer := GetBuffer()
	callback := getCallback()
	if buffer == nil && callback == nil {
		return nil
	}

	module := h.module
	attrs := maps.Clone(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "module" {
			module = a.Value.String()
			return true
		}
		putAttr(attrs, h.prefix, a)
		return true
	})

	entry := LogEntry{
		Timestamp:  r.Time,
		Level:      levelToString(r.Level),
		Module:     module,
		Message:    r.Message,
		Attributes: attrs,
	}
	if buffer != nil {
		entry = buffer.Write(entry)
	}
	if callback != nil {
		callback(entry)
	}
	return nil
}

// WithAttrs implements slog.Handler. The module attribute is lifted out
// of any group.
func (h *BufferHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &BufferHandler{level: h.level, module: h.module, prefix: h.prefix, attrs: maps.Clone(h.attrs)}
	for _, a := range attrs {
		if a.Key == "module" {
			next.module = a.Value.String()
			continue
		}
		putAttr(next.attrs, h.prefix, a)
	}
	return next
}

// WithGroup implements slog.Handler.
func (h *BufferHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &BufferHandler{level: h.level, module: h.module, prefix: h.prefix + name + ".", attrs: h.attrs}
}

// putAttr stores a under a dotted key, flattening groups. Errors, times and
// durations become strings so entries marshal cleanly to JSON.
func putAttr(attrs map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := prefix + a.Key

	switch a.Value.Kind() {
	case slog.KindGroup:
		inner := prefix
		if a.Key != "" {
			inner = key + "."
		}
		for _, ga := range a.Value.Group() {
			putAttr(attrs, inner, ga)
		}
	case slog.KindTime:
		attrs[key] = a.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		attrs[key] = a.Value.Duration().String()
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok {
			attrs[key] = err.Error()
		} else {
			attrs[key] = a.Value.Any()
		}
	default:
		attrs[key] = a.Value.Any()
	}
}

func levelToString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "error"
	case level >= slog.LevelWarn:
		return "warn"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}
