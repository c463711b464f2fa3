// Package trace provides a tracing subsystem for the offload toolchain.
//
// The trace package records pipeline phases, pass runs and per-cluster
// decisions so that a run can be inspected after the fact or while it hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	offload opt --trace=- --trace-level=detail model.ir
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: zero-overhead no-op tracer when disabled
//   - StreamTracer: immediate write to output (file/stderr)
//   - RingTracer: circular buffer for crash dumps
//   - ZapTracer: structured log records through a zap.Logger
//   - MultiTracer: combines multiple tracers
//
// # Levels
//
//   - LevelOff: no tracing
//   - LevelError: only crash dumps
//   - LevelPhase: driver and pass boundaries
//   - LevelDetail: per-cluster events
//   - LevelDebug: everything including per-op decisions
//
// # Scopes
//
//   - ScopeDriver: top-level CLI operations
//   - ScopePass: pass runs and pipeline stages
//   - ScopeCluster: one device cluster inside a pass
//   - ScopeOp: single operation decisions
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "verify", parentID)
//	defer span.End("")
package trace
