package irtext

import (
	"offload/internal/ir"
	"offload/internal/source"
)

type valueRef struct {
	Name string
	Span source.Span
}

type paramSyntax struct {
	Ref  valueRef
	Type ir.Type
}

type attrSyntax struct {
	Attr ir.Attr
	Span source.Span
}

type opSyntax struct {
	Results  []valueRef
	Name     string
	NameSpan source.Span
	Operands []valueRef
	Regions  []*regionSyntax
	Attrs    []attrSyntax
	Offload  bool
	Types    []ir.Type
	TypeSpan source.Span
}

type regionSyntax struct {
	Params []paramSyntax
	Ops    []*opSyntax
}

type moduleSyntax struct {
	Devices    []string
	HasDevices bool
	Body       *regionSyntax
}
