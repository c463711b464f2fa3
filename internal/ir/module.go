package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// Module is the whole-program graph. Ops, values and regions live in arenas
// owned by the module and are addressed by stable IDs; nothing is ever freed,
// detached ops simply lose their parent.
type Module struct {
	// Devices lists the runtime devices attached to the module.
	// It is meaningful only when HasDevices is set.
	Devices    []string
	HasDevices bool

	Body RegionID

	ops     []Op
	values  []Value
	regions []Region
}

// NewModule returns an empty module with an empty body region.
func NewModule() *Module {
	m := &Module{}
	m.Body = m.newRegion(NoOpID)
	return m
}

// SetDevices attaches the runtime device list to the module.
func (m *Module) SetDevices(names []string) {
	m.Devices = append([]string(nil), names...)
	m.HasDevices = true
}

func (m *Module) Op(id OpID) *Op {
	if id < 0 || int(id) >= len(m.ops) {
		return nil
	}
	return &m.ops[id]
}

func (m *Module) Value(id ValueID) *Value {
	if id < 0 || int(id) >= len(m.values) {
		return nil
	}
	return &m.values[id]
}

func (m *Module) Region(id RegionID) *Region {
	if id < 0 || int(id) >= len(m.regions) {
		return nil
	}
	return &m.regions[id]
}

// NumOps returns the size of the op arena, detached ops included.
func (m *Module) NumOps() int { return len(m.ops) }

// NumValues returns the size of the value arena.
func (m *Module) NumValues() int { return len(m.values) }

// NumRegions returns the size of the region arena.
func (m *Module) NumRegions() int { return len(m.regions) }

// TypeOf returns the type of a value or "" for an unknown ID.
func (m *Module) TypeOf(id ValueID) Type {
	if v := m.Value(id); v != nil {
		return v.Type
	}
	return ""
}

func nextID[T ~int32](n int) T {
	id, err := safecast.Conv[int32](n)
	if err != nil {
		panic(fmt.Errorf("ir arena overflow: %w", err))
	}
	return T(id)
}

func (m *Module) newRegion(parent OpID) RegionID {
	id := nextID[RegionID](len(m.regions))
	m.regions = append(m.regions, Region{ID: id, Parent: parent})
	return id
}

func (m *Module) newValue(v Value) ValueID {
	v.ID = nextID[ValueID](len(m.values))
	m.values = append(m.values, v)
	return v.ID
}
