package irtext

import (
	"errors"

	"offload/internal/diag"
	"offload/internal/ir"
	"offload/internal/source"
)

// ParseFile reads a module from file. Problems are sent to reporter; ok is
// false when any error was reported, in which case the module must not be
// used.
func ParseFile(file *source.File, reporter diag.Reporter) (m *ir.Module, ok bool) {
	if reporter != nil {
		// Recovery can hit the same bad token from more than one rule.
		reporter = diag.NewDedupReporter(reporter)
	}
	lexReporter := &countingReporter{next: reporter}
	p := parser{lx: NewLexer(file, lexReporter), reporter: reporter}
	mod := p.parseModule()
	if mod == nil || p.errors > 0 || lexReporter.errors > 0 {
		return nil, false
	}

	b := binder{m: ir.NewModule(), reporter: reporter}
	b.bindModule(mod)
	if b.errors > 0 {
		return nil, false
	}
	return b.m, true
}

// ParseString parses src as a virtual file named "input.ir" and folds any
// diagnostics into the returned error.
func ParseString(src string) (*ir.Module, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("input.ir", []byte(src))
	bag := diag.NewBag(64)
	m, ok := ParseFile(fs.Get(id), diag.BagReporter{Bag: bag})
	if !ok {
		bag.Sort()
		return nil, errors.New(diag.FormatShortDiagnostics(bag.Items(), fs, true))
	}
	return m, nil
}

// MustParse is ParseString for fixtures known to be valid.
func MustParse(src string) *ir.Module {
	m, err := ParseString(src)
	if err != nil {
		panic(err)
	}
	return m
}

type countingReporter struct {
	next   diag.Reporter
	errors int
}

func (r *countingReporter) Report(code diag.Code, sev diag.Severity, primary source.Span, msg string, notes []diag.Note) {
	if sev == diag.SevError {
		r.errors++
	}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}
