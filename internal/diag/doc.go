// Package diag defines the diagnostic model shared by the text IR reader,
// the snapshot loader and the pass pipeline.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in diagnostic.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the source.Span pointing to the issue.
//   - Notes – optional secondary spans/messages for additional context.
//
// # Emitting diagnostics
//
// Producers use a diag.Reporter to decouple emission from storage. The IR
// parser constructs a ReportBuilder via ReportError and chains WithNote before
// calling Emit. diag.BagReporter aggregates diagnostics into a Bag, which
// supports sorting and deduplication.
//
// Rendering lives in internal/diagfmt.
package diag
