package ir

import (
	"fmt"
	"slices"
)

// OpState describes an operation to create with NewOp.
type OpState struct {
	Name       string
	Operands   []ValueID
	Results    []Type
	NumRegions int
	Offload    bool
	Attrs      []Attr
}

// NewOp creates a detached operation, its results and its (empty) regions.
// Pointers previously obtained from Op, Value or Region must not be used
// after this call: the arenas may have grown.
func (m *Module) NewOp(st OpState) OpID {
	id := nextID[OpID](len(m.ops))
	for _, v := range st.Operands {
		if m.Value(v) == nil {
			panic(fmt.Errorf("ir: op %q reads unknown value %d", st.Name, v))
		}
	}
	m.ops = append(m.ops, Op{
		ID:       id,
		Name:     st.Name,
		Operands: slices.Clone(st.Operands),
		Attrs:    slices.Clone(st.Attrs),
		Offload:  st.Offload,
		Parent:   NoRegionID,
	})
	for i, v := range st.Operands {
		m.values[v].Uses = append(m.values[v].Uses, Use{Op: id, Operand: i})
	}

	results := make([]ValueID, len(st.Results))
	for i, t := range st.Results {
		results[i] = m.newValue(Value{
			Kind:   ValueResult,
			Type:   t,
			Def:    id,
			Region: NoRegionID,
			Index:  i,
		})
	}
	regions := make([]RegionID, st.NumRegions)
	for i := range regions {
		regions[i] = m.newRegion(id)
	}
	m.ops[id].Results = results
	m.ops[id].Regions = regions
	return id
}

// AddParam appends a parameter to the region.
func (m *Module) AddParam(r RegionID, t Type) ValueID {
	idx := len(m.regions[r].Params)
	v := m.newValue(Value{
		Kind:   ValueParam,
		Type:   t,
		Def:    NoOpID,
		Region: r,
		Index:  idx,
	})
	m.regions[r].Params = append(m.regions[r].Params, v)
	return v
}

// SetName assigns a printing hint to a value.
func (m *Module) SetName(v ValueID, name string) {
	m.values[v].Name = name
}

// Result returns the i-th result of op.
func (m *Module) Result(op OpID, i int) ValueID {
	return m.ops[op].Results[i]
}

// Append attaches a detached op at the end of region r.
func (m *Module) Append(r RegionID, op OpID) {
	m.mustBeDetached(op)
	m.regions[r].Ops = append(m.regions[r].Ops, op)
	m.ops[op].Parent = r
}

// InsertBefore attaches a detached op right before anchor.
func (m *Module) InsertBefore(anchor, op OpID) {
	m.mustBeDetached(op)
	r := m.ops[anchor].Parent
	if r == NoRegionID {
		panic(fmt.Errorf("ir: anchor op %d is detached", anchor))
	}
	idx := m.IndexInRegion(anchor)
	m.regions[r].Ops = slices.Insert(m.regions[r].Ops, idx, op)
	m.ops[op].Parent = r
}

// MoveBefore moves op right before anchor, possibly into another region.
// The op keeps its identity, operands and results.
func (m *Module) MoveBefore(op, anchor OpID) {
	if op == anchor {
		return
	}
	m.Detach(op)
	m.InsertBefore(anchor, op)
}

// Detach removes op from its parent region. Its uses and results stay intact.
func (m *Module) Detach(op OpID) {
	r := m.ops[op].Parent
	if r == NoRegionID {
		return
	}
	idx := m.IndexInRegion(op)
	m.regions[r].Ops = slices.Delete(m.regions[r].Ops, idx, idx+1)
	m.ops[op].Parent = NoRegionID
}

func (m *Module) mustBeDetached(op OpID) {
	if m.ops[op].Parent != NoRegionID {
		panic(fmt.Errorf("ir: op %d (%s) is already attached to region %d", op, m.ops[op].Name, m.ops[op].Parent))
	}
}
