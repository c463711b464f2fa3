// Package irtext reads the generic text form of the IR.
//
// The grammar mirrors what ir.Print writes:
//
//	module [devices ["<name>", ...]] {
//	  %r0, %r1 = "dialect.op"(%a, %b) ({ ^(%p: type): ... }) [offload, key = "v"] : (t0, t1)
//	}
//
// Reading is split in two phases. The parser turns tokens into a small
// syntax tree; the binder then resolves value names against lexical scopes
// and builds an *ir.Module. Both phases report through diag.Reporter and keep
// going after errors, so one run surfaces as many problems as possible.
// Line comments start with "//".
package irtext
