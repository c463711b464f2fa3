package headextract

import "offload/internal/ir"

// BuildHeadSet grows the set of offload-tagged ops reachable from the
// boundary inputs of cluster. The search is level-synchronous: each round
// looks at the direct body ops reading a value that became available in the
// previous round, either as an operand or from inside one of their nested
// regions, and accepts those that are tagged and read only available values.
// Results of accepted ops become available for the next round. The search
// stops when a round accepts nothing.
//
// Untagged ops are never accepted, so anything downstream of them stays in
// the cluster even when it is tagged. Ops that read no value at all are
// never reached.
//
// The returned slice is in acceptance order.
func BuildHeadSet(m *ir.Module, cluster ir.OpID, inputs []ir.ValueID) []ir.OpID {
	body := clusterBody(m, cluster)
	term := m.Region(body).Terminator()

	available := newSetVector(inputs...)
	head := newSetVector[ir.OpID]()

	fresh := available.items
	for len(fresh) > 0 {
		var accepted []ir.OpID
		visited := make(map[ir.OpID]struct{})
		for _, v := range fresh {
			for _, user := range m.Users(v) {
				// A read from inside a nested region makes the enclosing
				// body op a candidate again.
				op := m.AncestorIn(user, body)
				if op == ir.NoOpID || op == term {
					continue
				}
				if _, ok := visited[op]; ok || head.has(op) {
					continue
				}
				visited[op] = struct{}{}
				if isHeadCandidate(m, op, available) {
					accepted = append(accepted, op)
				}
			}
		}

		// Results join the available set only after the whole round.
		fresh = nil
		for _, op := range accepted {
			head.insert(op)
			for _, r := range m.Op(op).Results {
				if available.insert(r) {
					fresh = append(fresh, r)
				}
			}
		}
	}
	return head.items
}

// isHeadCandidate reports whether op is tagged and everything it reads,
// including values captured by its nested regions, is available.
func isHeadCandidate(m *ir.Module, op ir.OpID, available *setVector[ir.ValueID]) bool {
	o := m.Op(op)
	if !o.Offload {
		return false
	}
	for _, v := range o.Operands {
		if !available.has(v) {
			return false
		}
	}
	for _, r := range o.Regions {
		for _, v := range m.UsedValuesDefinedAbove(r) {
			if !available.has(v) {
				return false
			}
		}
	}
	return true
}
