package ir

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Print writes a human-readable representation of m in the generic text
// form understood by package irtext.
func Print(w io.Writer, m *Module) error {
	if w == nil || m == nil {
		return nil
	}
	_, err := io.WriteString(w, m.String())
	return err
}

func (m *Module) String() string {
	p := newPrinter(m)
	p.module()
	return p.sb.String()
}

type printer struct {
	m     *Module
	sb    strings.Builder
	names map[ValueID]string
}

func newPrinter(m *Module) *printer {
	p := &printer{m: m, names: make(map[ValueID]string)}
	p.assignNames()
	return p
}

// assignNames keeps explicit value names where they are unique and numbers
// the rest in print order, skipping numbers already taken.
func (p *printer) assignNames() {
	var defs []ValueID
	var collect func(r RegionID)
	collect = func(r RegionID) {
		reg := p.m.Region(r)
		defs = append(defs, reg.Params...)
		for _, op := range reg.Ops {
			o := p.m.Op(op)
			defs = append(defs, o.Results...)
			for _, sub := range o.Regions {
				collect(sub)
			}
		}
	}
	collect(p.m.Body)

	taken := make(map[string]struct{}, len(defs))
	var unnamed []ValueID
	for _, v := range defs {
		name := p.m.Value(v).Name
		if _, dup := taken[name]; name == "" || dup {
			unnamed = append(unnamed, v)
			continue
		}
		taken[name] = struct{}{}
		p.names[v] = name
	}
	next := 0
	for _, v := range unnamed {
		for {
			name := strconv.Itoa(next)
			next++
			if _, dup := taken[name]; !dup {
				taken[name] = struct{}{}
				p.names[v] = name
				break
			}
		}
	}
}

func (p *printer) ref(v ValueID) string {
	if name, ok := p.names[v]; ok {
		return "%" + name
	}
	return fmt.Sprintf("%%<undef:%d>", v)
}

func (p *printer) module() {
	p.sb.WriteString("module")
	if p.m.HasDevices {
		p.sb.WriteString(" devices [")
		for i, d := range p.m.Devices {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(strconv.Quote(d))
		}
		p.sb.WriteString("]")
	}
	p.sb.WriteString(" ")
	p.region(p.m.Body, 0)
	p.sb.WriteString("\n")
}

func (p *printer) region(r RegionID, indent int) {
	reg := p.m.Region(r)
	p.sb.WriteString("{\n")
	inner := strings.Repeat(" ", indent+2)
	if len(reg.Params) > 0 {
		p.sb.WriteString(inner)
		p.sb.WriteString("^(")
		for i, v := range reg.Params {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			fmt.Fprintf(&p.sb, "%s: %s", p.ref(v), p.m.TypeOf(v))
		}
		p.sb.WriteString("):\n")
	}
	for _, op := range reg.Ops {
		p.op(op, indent+2)
	}
	p.sb.WriteString(strings.Repeat(" ", indent))
	p.sb.WriteString("}")
}

func (p *printer) op(id OpID, indent int) {
	o := p.m.Op(id)
	p.sb.WriteString(strings.Repeat(" ", indent))
	if len(o.Results) > 0 {
		for i, v := range o.Results {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.sb.WriteString(p.ref(v))
		}
		p.sb.WriteString(" = ")
	}
	p.sb.WriteString(strconv.Quote(o.Name))
	p.sb.WriteString("(")
	for i, v := range o.Operands {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(p.ref(v))
	}
	p.sb.WriteString(")")

	if len(o.Regions) > 0 {
		p.sb.WriteString(" (")
		for i, r := range o.Regions {
			if i > 0 {
				p.sb.WriteString(", ")
			}
			p.region(r, indent)
		}
		p.sb.WriteString(")")
	}

	if o.Offload || len(o.Attrs) > 0 {
		parts := make([]string, 0, len(o.Attrs)+1)
		if o.Offload {
			parts = append(parts, "offload")
		}
		for _, a := range o.Attrs {
			parts = append(parts, a.Name+" = "+strconv.Quote(a.Value))
		}
		p.sb.WriteString(" [")
		p.sb.WriteString(strings.Join(parts, ", "))
		p.sb.WriteString("]")
	}

	p.sb.WriteString(" : (")
	for i, v := range o.Results {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.sb.WriteString(string(p.m.TypeOf(v)))
	}
	p.sb.WriteString(")\n")
}
