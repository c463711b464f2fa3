package ir

import "slices"

// SetOperand points operand slot i of op at v, keeping use lists in sync.
func (m *Module) SetOperand(op OpID, i int, v ValueID) {
	old := m.ops[op].Operands[i]
	if old == v {
		return
	}
	use := Use{Op: op, Operand: i}
	if idx := slices.Index(m.values[old].Uses, use); idx >= 0 {
		m.values[old].Uses = slices.Delete(m.values[old].Uses, idx, idx+1)
	}
	m.ops[op].Operands[i] = v
	m.values[v].Uses = append(m.values[v].Uses, use)
}

// ReplaceUsesWhere redirects every use of from accepted by pred to to.
// It returns the number of rewritten uses.
func (m *Module) ReplaceUsesWhere(from, to ValueID, pred func(Use) bool) int {
	uses := slices.Clone(m.values[from].Uses)
	n := 0
	for _, u := range uses {
		if pred != nil && !pred(u) {
			continue
		}
		m.SetOperand(u.Op, u.Operand, to)
		n++
	}
	return n
}

// ReplaceAllUses redirects every use of from to to.
func (m *Module) ReplaceAllUses(from, to ValueID) int {
	return m.ReplaceUsesWhere(from, to, nil)
}
