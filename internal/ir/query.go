package ir

// IndexInRegion returns the position of op within its parent region, or -1
// for a detached op.
func (m *Module) IndexInRegion(op OpID) int {
	r := m.Region(m.ops[op].Parent)
	if r == nil {
		return -1
	}
	for i, id := range r.Ops {
		if id == op {
			return i
		}
	}
	return -1
}

// IsBeforeInRegion reports whether a and b share a region and a comes first.
func (m *Module) IsBeforeInRegion(a, b OpID) bool {
	if m.ops[a].Parent == NoRegionID || m.ops[a].Parent != m.ops[b].Parent {
		return false
	}
	return m.IndexInRegion(a) < m.IndexInRegion(b)
}

// DefiningRegion returns the region a value becomes visible in: the owning
// region of a parameter, or the parent region of the defining op.
func (m *Module) DefiningRegion(v ValueID) RegionID {
	val := m.Value(v)
	if val == nil {
		return NoRegionID
	}
	if val.Kind == ValueParam {
		return val.Region
	}
	return m.ops[val.Def].Parent
}

// IsAncestorRegion reports whether r equals anc or is nested inside it.
func (m *Module) IsAncestorRegion(anc, r RegionID) bool {
	for r != NoRegionID {
		if r == anc {
			return true
		}
		parent := m.regions[r].Parent
		if parent == NoOpID {
			return false
		}
		r = m.ops[parent].Parent
	}
	return false
}

// IsDefinedWithin reports whether v is defined in r or any region nested in r.
func (m *Module) IsDefinedWithin(v ValueID, r RegionID) bool {
	return m.IsAncestorRegion(r, m.DefiningRegion(v))
}

// AncestorIn returns the op of region r that is op itself or encloses op,
// or NoOpID when op does not live under r.
func (m *Module) AncestorIn(op OpID, r RegionID) OpID {
	for op != NoOpID {
		parent := m.ops[op].Parent
		if parent == NoRegionID {
			return NoOpID
		}
		if parent == r {
			return op
		}
		op = m.regions[parent].Parent
	}
	return NoOpID
}

// Users returns the distinct ops reading v, in use-list order.
func (m *Module) Users(v ValueID) []OpID {
	uses := m.values[v].Uses
	out := make([]OpID, 0, len(uses))
	seen := make(map[OpID]struct{}, len(uses))
	for _, u := range uses {
		if _, ok := seen[u.Op]; ok {
			continue
		}
		seen[u.Op] = struct{}{}
		out = append(out, u.Op)
	}
	return out
}

// UsedValuesDefinedAbove returns the values read by ops in r (nested regions
// included) that are defined outside r. Duplicates are dropped and first-seen
// order is kept.
func (m *Module) UsedValuesDefinedAbove(r RegionID) []ValueID {
	var out []ValueID
	seen := make(map[ValueID]struct{})
	m.WalkRegion(r, func(op OpID) bool {
		for _, v := range m.ops[op].Operands {
			if _, ok := seen[v]; ok {
				continue
			}
			if m.IsDefinedWithin(v, r) {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
		return true
	})
	return out
}
