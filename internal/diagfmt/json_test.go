package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"offload/internal/diag"
	"offload/internal/source"
)

func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.ir", []byte(undefinedSrc))

	var buf bytes.Buffer
	opts := JSONOpts{IncludePositions: true, PathMode: PathModeBasename, IncludeNotes: true}
	if err := JSON(&buf, undefinedBag(fileID), fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got count=%d len=%d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("Expected severity=ERROR, got %s", d.Severity)
	}
	if d.Code != "IR3001" {
		t.Errorf("Expected code=IR3001, got %s", d.Code)
	}
	if d.Location.File != "test.ir" {
		t.Errorf("Expected file=test.ir, got %s", d.Location.File)
	}
	if d.Location.StartByte != 20 || d.Location.EndByte != 30 {
		t.Errorf("Expected bytes 20..30, got %d..%d", d.Location.StartByte, d.Location.EndByte)
	}
	if d.Location.StartLine != 2 || d.Location.StartCol != 12 {
		t.Errorf("Expected 2:12, got %d:%d", d.Location.StartLine, d.Location.StartCol)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.ir", []byte(undefinedSrc))

	output, err := BuildDiagnosticsOutput(undefinedBag(fileID), fs, JSONOpts{PathMode: PathModeBasename})
	if err != nil {
		t.Fatalf("BuildDiagnosticsOutput() error: %v", err)
	}
	loc := output.Diagnostics[0].Location
	if loc.StartLine != 0 || loc.StartCol != 0 {
		t.Errorf("positions should be omitted, got %d:%d", loc.StartLine, loc.StartCol)
	}
}

func TestJSONNotes(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.ir", []byte(undefinedSrc))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IRRedefinedValue, source.Span{File: fileID, Start: 11, End: 13}, "value %0 redefined").
		WithNote(source.Span{File: fileID, Start: 0, End: 6}, "previous definition here"))

	with, _ := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludeNotes: true})
	if len(with.Diagnostics[0].Notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(with.Diagnostics[0].Notes))
	}
	if got := with.Diagnostics[0].Notes[0].Message; got != "previous definition here" {
		t.Errorf("unexpected note %q", got)
	}
	without, _ := BuildDiagnosticsOutput(bag, fs, JSONOpts{})
	if len(without.Diagnostics[0].Notes) != 0 {
		t.Errorf("notes should be omitted")
	}
}

func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.ir", []byte(undefinedSrc))
	bag := diag.NewBag(10)
	for i := range 5 {
		bag.Add(diag.NewError(diag.IRUndefinedValue, source.Span{File: fileID, Start: uint32(i), End: uint32(i + 1)}, "x"))
	}

	output, err := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 3})
	if err != nil {
		t.Fatalf("BuildDiagnosticsOutput() error: %v", err)
	}
	if output.Count != 3 || output.Total != 5 || !output.Truncated {
		t.Errorf("count=%d total=%d truncated=%v, want 3, 5, true", output.Count, output.Total, output.Truncated)
	}
}
