// Package slogutil provides the slog handler and helpers for ghscout logging.
// Logs always go to stderr or a file: stdout is reserved for protocol output.
package slogutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ScoutHandler is a custom slog handler that formats records as:
// TIMESTAMP [level] Message | key=value key=value
//
// Attributes added via Logger.With are rendered once, up front, and
// groups collapse into a dotted key prefix.
type ScoutHandler struct {
	w         io.Writer
	level     slog.Leveler
	preset    string // pre-rendered " key=value" pairs from With
	keyPrefix string // dotted prefix from WithGroup
	mu        *sync.Mutex
}

// NewScoutHandler creates a new log handler.
func NewScoutHandler(w io.Writer, opts *slog.HandlerOptions) *ScoutHandler {
	level := slog.Leveler(slog.LevelInfo)
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &ScoutHandler{w: w, level: level, mu: &sync.Mutex{}}
}

// Enabled reports whether the handler handles records at the given level.
func (h *ScoutHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and writes the log record.
func (h *ScoutHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString(r.Time.UTC().Format(time.RFC3339))
	buf.WriteString(" [")
	buf.WriteString(levelString(r.Level))
	buf.WriteString("] ")
	buf.WriteString(r.Message)

	var pairs bytes.Buffer
	pairs.WriteString(h.preset)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&pairs, h.keyPrefix, a)
		return true
	})
	if pairs.Len() > 0 {
		buf.WriteString(" |")
		buf.Write(pairs.Bytes())
	}

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new handler with the given attributes added.
// The attributes are rendered immediately.
func (h *ScoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var pairs bytes.Buffer
	pairs.WriteString(h.preset)
	for _, a := range attrs {
		writeAttr(&pairs, h.keyPrefix, a)
	}
	clone := *h
	clone.preset = pairs.String()
	return &clone
}

// WithGroup returns a new handler that prefixes subsequent attribute
// keys with the group name.
func (h *ScoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.keyPrefix += name + "."
	return &clone
}

func writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	if a.Key == "" {
		return
	}
	buf.WriteString(" ")
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteString("=")
	buf.WriteString(formatValue(a.Value.Resolve()))
}

func levelString(level slog.Level) string {
	switch {
	case level < slog.LevelInfo:
		return "debug"
	case level < slog.LevelWarn:
		return "info"
	case level < slog.LevelError:
		return "warn"
	default:
		return "error"
	}
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindDuration:
		return v.Duration().String()
	default:
		return fmt.Sprint(v.Any())
	}
}
