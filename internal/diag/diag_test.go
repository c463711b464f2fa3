package diag_test

import (
	"testing"

	"offload/internal/diag"
	"offload/internal/source"
)

func span(start, end uint32) source.Span {
	return source.Span{File: 1, Start: start, End: end}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code diag.Code
		want string
	}{
		{diag.LexUnknownChar, "LEX1001"},
		{diag.SynUnclosedBrace, "SYN2006"},
		{diag.IRUndefinedValue, "IR3001"},
		{diag.IODecodeError, "IO4002"},
		{diag.PipePassFailed, "PIPE5001"},
		{diag.UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if got := diag.Code(9999).Title(); got != diag.UnknownCode.Title() {
		t.Errorf("unregistered code title = %q", got)
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	b := diag.NewBag(2)
	for i := range 3 {
		added := b.Add(diag.NewError(diag.IRUndefinedValue, span(uint32(i), uint32(i+1)), "x"))
		if want := i < 2; added != want {
			t.Errorf("Add #%d = %v, want %v", i, added, want)
		}
	}
	other := diag.NewBag(4)
	other.Add(diag.New(diag.SevWarning, diag.SynInfo, span(0, 1), "w"))
	other.Add(diag.New(diag.SevWarning, diag.SynInfo, span(1, 2), "w"))
	b.Merge(other)
	if b.Len() != 4 || b.Cap() < 4 {
		t.Errorf("after merge Len=%d Cap=%d", b.Len(), b.Cap())
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Errorf("HasErrors=%v HasWarnings=%v", b.HasErrors(), b.HasWarnings())
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := diag.NewBag(8)
	b.Add(diag.New(diag.SevWarning, diag.SynInfo, span(5, 6), "late"))
	b.Add(diag.New(diag.SevWarning, diag.SynInfo, span(0, 1), "early warning"))
	b.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 1), "early error"))
	b.Add(diag.NewError(diag.SynUnexpectedToken, span(0, 1), "early error again"))
	b.Sort()
	b.Dedup()

	var got []string
	for _, d := range b.Items() {
		got = append(got, d.Message)
	}
	want := []string{"early error", "early warning", "late"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDedupReporter(t *testing.T) {
	bag := diag.NewBag(8)
	r := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	r.Report(diag.LexUnknownChar, diag.SevError, span(1, 2), "bad", nil)
	r.Report(diag.LexUnknownChar, diag.SevError, span(1, 2), "bad", nil)
	r.Report(diag.LexUnknownChar, diag.SevError, span(1, 2), "other", nil)
	r.Report(diag.LexUnknownChar, diag.SevWarning, span(1, 2), "bad", nil)
	if bag.Len() != 3 {
		t.Errorf("bag has %d items, want 3", bag.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := diag.NewBag(8)
	rep := diag.BagReporter{Bag: bag}
	b := diag.ReportError(rep, diag.IRRedefinedValue, span(4, 6), "value %x redefined").
		WithNote(span(0, 2), "first defined here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("bag has %d items, want 1", bag.Len())
	}
	d := bag.Items()[0]
	if d.Severity != diag.SevError || len(d.Notes) != 1 || d.Notes[0].Msg != "first defined here" {
		t.Errorf("unexpected diagnostic %+v", d)
	}

	diag.ReportWarning(rep, diag.SynInfo, span(0, 0), "w").Emit()
	diag.ReportInfo(rep, diag.SynInfo, span(0, 0), "i").Emit()
	items := bag.Items()
	if items[1].Severity != diag.SevWarning || items[2].Severity != diag.SevInfo {
		t.Errorf("severities = %v, %v", items[1].Severity, items[2].Severity)
	}
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("m.ir", []byte("module {\n  %0 = \"x\"(%y) : (i32)\n}\n"))
	at := func(start, end uint32) source.Span { return source.Span{File: id, Start: start, End: end} }

	diags := []diag.Diagnostic{
		diag.NewError(diag.IRUndefinedValue, at(20, 22), "use of undefined\nvalue %y").
			WithNote(at(0, 6), "in this module"),
		diag.New(diag.SevWarning, diag.SynInfo, at(0, 6), "first"),
		diag.NewError(diag.IRUndefinedValue, source.Span{File: id + 5}, "unknown file"),
	}

	got := diag.FormatShortDiagnostics(diags, fs, false)
	want := "warning SYN2000 m.ir:1:1 first\n" +
		"error IR3001 m.ir:2:12 use of undefined value %y"
	if got != want {
		t.Errorf("without notes:\n%s\nwant:\n%s", got, want)
	}

	got = diag.FormatShortDiagnostics(diags, fs, true)
	want = "note IR3001 m.ir:1:1 in this module\n" +
		"warning SYN2000 m.ir:1:1 first\n" +
		"error IR3001 m.ir:2:12 use of undefined value %y"
	if got != want {
		t.Errorf("with notes:\n%s\nwant:\n%s", got, want)
	}
}
