package trace

import (
	"sort"

	"go.uber.org/zap"
)

// ZapTracer turns trace events into structured zap log records.
type ZapTracer struct {
	logger *zap.Logger
	level  Level
}

// NewZapTracer creates a tracer writing through logger.
func NewZapTracer(logger *zap.Logger, level Level) *ZapTracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTracer{logger: logger, level: level}
}

// Emit logs the event. Span ends and points are logged at info level,
// span begins and heartbeats at debug level.
func (t *ZapTracer) Emit(ev *Event) {
	if !t.level.ShouldEmit(ev.Scope) && ev.Kind != KindHeartbeat {
		return
	}
	fields := make([]zap.Field, 0, 6+len(ev.Extra))
	fields = append(fields,
		zap.String("kind", ev.Kind.String()),
		zap.String("scope", ev.Scope.String()),
		zap.Uint64("span", ev.SpanID),
	)
	if ev.ParentID != 0 {
		fields = append(fields, zap.Uint64("parent", ev.ParentID))
	}
	if ev.Detail != "" {
		fields = append(fields, zap.String("detail", ev.Detail))
	}
	keys := make([]string, 0, len(ev.Extra))
	for k := range ev.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.String(k, ev.Extra[k]))
	}

	switch ev.Kind {
	case KindSpanBegin, KindHeartbeat:
		t.logger.Debug(ev.Name, fields...)
	default:
		t.logger.Info(ev.Name, fields...)
	}
}

// Flush syncs the underlying logger.
func (t *ZapTracer) Flush() error {
	// Sync on a terminal-backed logger reports EINVAL; that is not a trace failure.
	_ = t.logger.Sync() //nolint:errcheck
	return nil
}

// Close flushes the logger.
func (t *ZapTracer) Close() error {
	return t.Flush()
}

// Level returns the current tracing level.
func (t *ZapTracer) Level() Level {
	return t.level
}

// Enabled returns true if tracing is active.
func (t *ZapTracer) Enabled() bool {
	return t.level > LevelOff
}
