package ir

// Walk visits every op attached under the module body in pre-order.
// Returning false from fn skips the op's nested regions.
func (m *Module) Walk(fn func(op OpID) bool) {
	m.WalkRegion(m.Body, fn)
}

// WalkRegion visits the ops of r and of every region nested in it, in
// pre-order, using an explicit stack. The visited op lists are the ones seen
// when an op is pushed; callers must not mutate the graph from fn.
func (m *Module) WalkRegion(r RegionID, fn func(op OpID) bool) {
	reg := m.Region(r)
	if reg == nil {
		return
	}
	stack := make([]OpID, 0, len(reg.Ops))
	stack = pushReversed(stack, reg.Ops)
	for len(stack) > 0 {
		op := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(op) {
			continue
		}
		regions := m.ops[op].Regions
		for i := len(regions) - 1; i >= 0; i-- {
			stack = pushReversed(stack, m.regions[regions[i]].Ops)
		}
	}
}

func pushReversed(stack, ops []OpID) []OpID {
	for i := len(ops) - 1; i >= 0; i-- {
		stack = append(stack, ops[i])
	}
	return stack
}

// Collect returns, in walk order, every op under the module body whose name
// matches.
func (m *Module) Collect(name string) []OpID {
	var out []OpID
	m.Walk(func(op OpID) bool {
		if m.ops[op].Name == name {
			out = append(out, op)
		}
		return true
	})
	return out
}
