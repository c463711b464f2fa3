package pipeline

import (
	"fmt"
	"time"
)

// Stage describes a high-level pipeline phase.
type Stage string

const (
	// StageParse reads the text form or decodes a snapshot.
	StageParse Stage = "parse"
	// StagePasses runs the pass pipeline.
	StagePasses Stage = "passes"
	// StageEmit renders the result.
	StageEmit Stage = "emit"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the task is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the task is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the task is done.
	StatusDone Status = "done"
	// StatusError indicates the task encountered an error.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the overall pipeline when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Run calls OnEvent from several
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// EmitFormat selects what Run produces for each file.
type EmitFormat string

const (
	// EmitText renders the generic text form.
	EmitText EmitFormat = "text"
	// EmitSnapshot encodes an .irpack snapshot.
	EmitSnapshot EmitFormat = "irpack"
	// EmitNone produces no output; useful for verification runs.
	EmitNone EmitFormat = "none"
)

// ParseEmitFormat validates a format name.
func ParseEmitFormat(s string) (EmitFormat, error) {
	switch f := EmitFormat(s); f {
	case EmitText, EmitSnapshot, EmitNone:
		return f, nil
	case "":
		return EmitText, nil
	default:
		return "", &FormatError{Value: s}
	}
}

// FormatError reports an unknown emit format.
type FormatError struct{ Value string }

func (e *FormatError) Error() string {
	return fmt.Sprintf("unknown emit format %q (expected: text|irpack|none)", e.Value)
}

// Timings holds stage durations.
type Timings struct {
	stages map[Stage]time.Duration
}

// Set stores a duration for the given stage.
func (t *Timings) Set(stage Stage, dur time.Duration) {
	if t == nil {
		return
	}
	if t.stages == nil {
		t.stages = make(map[Stage]time.Duration)
	}
	t.stages[stage] = dur
}

// Has reports whether a duration for stage is recorded.
func (t Timings) Has(stage Stage) bool {
	_, ok := t.stages[stage]
	return ok
}

// Duration returns the recorded duration for stage.
func (t Timings) Duration(stage Stage) time.Duration {
	return t.stages[stage]
}

// Sum returns the sum of durations across the provided stages.
func (t Timings) Sum(stages ...Stage) time.Duration {
	var total time.Duration
	for _, stage := range stages {
		total += t.stages[stage]
	}
	return total
}
