package irtext

import (
	"fmt"
	"slices"

	"offload/internal/diag"
	"offload/internal/ir"
	"offload/internal/source"
)

func irType(s string) ir.Type { return ir.Type(s) }

func attr(name, value string) ir.Attr { return ir.Attr{Name: name, Value: value} }

type binding struct {
	id   ir.ValueID
	span source.Span
}

// binder resolves value names and builds the module. Names live in lexical
// scopes, one per region; a name is visible in its region and in every region
// nested below it. Shadowing an outer name is an error.
type binder struct {
	m        *ir.Module
	reporter diag.Reporter
	scopes   []map[string]binding
	errors   int
}

func (b *binder) push() { b.scopes = append(b.scopes, make(map[string]binding)) }

func (b *binder) pop() { b.scopes = b.scopes[:len(b.scopes)-1] }

func (b *binder) lookup(name string) (binding, bool) {
	for i := len(b.scopes) - 1; i >= 0; i-- {
		if v, ok := b.scopes[i][name]; ok {
			return v, true
		}
	}
	return binding{}, false
}

// define binds ref to id. id may be ir.NoValueID for results of ops that
// could not be built; later uses then stay silent instead of cascading.
func (b *binder) define(ref valueRef, id ir.ValueID) {
	if prev, ok := b.lookup(ref.Name); ok {
		diag.ReportError(b.reporter, diag.IRRedefinedValue, ref.Span,
			fmt.Sprintf("value %%%s redefined", ref.Name)).
			WithNote(prev.span, "previous definition here").
			Emit()
		b.errors++
		return
	}
	b.scopes[len(b.scopes)-1][ref.Name] = binding{id: id, span: ref.Span}
	if id != ir.NoValueID {
		b.m.SetName(id, ref.Name)
	}
}

func (b *binder) report(code diag.Code, sp source.Span, msg string) {
	b.errors++
	if b.reporter != nil {
		b.reporter.Report(code, diag.SevError, sp, msg, nil)
	}
}

func (b *binder) bindModule(mod *moduleSyntax) {
	if mod.HasDevices {
		b.m.SetDevices(mod.Devices)
	}
	b.bindRegion(b.m.Body, mod.Body)
}

func (b *binder) bindRegion(r ir.RegionID, rs *regionSyntax) {
	b.push()
	defer b.pop()
	for _, prm := range rs.Params {
		b.define(prm.Ref, b.m.AddParam(r, prm.Type))
	}
	for _, syn := range rs.Ops {
		b.bindOp(r, syn)
	}
}

func (b *binder) bindOp(r ir.RegionID, syn *opSyntax) {
	ok := true
	if len(syn.Results) != len(syn.Types) {
		b.report(diag.IRResultCountMismatch, syn.TypeSpan,
			fmt.Sprintf("%q names %d results but lists %d types", syn.Name, len(syn.Results), len(syn.Types)))
		ok = false
	}

	operands := make([]ir.ValueID, len(syn.Operands))
	for i, ref := range syn.Operands {
		v, found := b.lookup(ref.Name)
		switch {
		case !found:
			b.report(diag.IRUndefinedValue, ref.Span, fmt.Sprintf("use of undefined value %%%s", ref.Name))
			ok = false
		case v.id == ir.NoValueID:
			ok = false
		}
		operands[i] = v.id
	}

	if !ok {
		// Still bind nested regions so their own errors surface.
		for _, rs := range syn.Regions {
			b.bindDetached(rs)
		}
		for _, ref := range syn.Results {
			b.define(ref, ir.NoValueID)
		}
		return
	}

	attrs := make([]ir.Attr, len(syn.Attrs))
	for i, a := range syn.Attrs {
		attrs[i] = a.Attr
	}
	op := b.m.NewOp(ir.OpState{
		Name:       syn.Name,
		Operands:   operands,
		Results:    syn.Types,
		NumRegions: len(syn.Regions),
		Offload:    syn.Offload,
		Attrs:      attrs,
	})
	b.m.Append(r, op)

	regions := slices.Clone(b.m.Op(op).Regions)
	for i, rs := range syn.Regions {
		b.bindRegion(regions[i], rs)
	}
	results := slices.Clone(b.m.Op(op).Results)
	for i, ref := range syn.Results {
		b.define(ref, results[i])
	}
}

// bindDetached resolves names in a region whose owner could not be built.
func (b *binder) bindDetached(rs *regionSyntax) {
	b.push()
	defer b.pop()
	for _, prm := range rs.Params {
		b.define(prm.Ref, ir.NoValueID)
	}
	for _, syn := range rs.Ops {
		for _, ref := range syn.Operands {
			if _, found := b.lookup(ref.Name); !found {
				b.report(diag.IRUndefinedValue, ref.Span, fmt.Sprintf("use of undefined value %%%s", ref.Name))
			}
		}
		for _, sub := range syn.Regions {
			b.bindDetached(sub)
		}
		for _, ref := range syn.Results {
			b.define(ref, ir.NoValueID)
		}
	}
}
