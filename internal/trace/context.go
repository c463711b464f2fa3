package trace

import "context"

type tracerKey struct{}

type spanKey struct{}

// WithTracer returns ctx carrying t. A nil t stores Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer carried by ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// SpanContext identifies the innermost span open on a context.
type SpanContext struct {
	SpanID uint64
	GID    uint64
}

// CurrentSpan returns the span StartSpan last attached to ctx. The zero
// value means there is none.
func CurrentSpan(ctx context.Context) SpanContext {
	if ctx == nil {
		return SpanContext{}
	}
	sc, _ := ctx.Value(spanKey{}).(SpanContext)
	return sc
}

// StartSpan begins a span on the tracer of ctx, parented to CurrentSpan(ctx).
// The returned context carries the new span; it is ctx itself when the
// scope is not recorded.
func StartSpan(ctx context.Context, scope Scope, name string) (*Span, context.Context) {
	sp := Begin(FromContext(ctx), scope, name, CurrentSpan(ctx).SpanID)
	if sp.id != 0 {
		ctx = context.WithValue(ctx, spanKey{}, SpanContext{SpanID: sp.id, GID: sp.gid})
	}
	return sp, ctx
}
