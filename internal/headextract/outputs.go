package headextract

import "offload/internal/ir"

// ClassifyOutputs returns the values the host launch has to yield. An op of
// the head set whose results are read by anything outside the head set
// exports all of its results, used or not, in result order. Ops are visited
// in head-set order.
func ClassifyOutputs(m *ir.Module, cluster ir.OpID, head []ir.OpID) []ir.ValueID {
	inHead := headMembership(m, cluster, head)
	var outputs []ir.ValueID
	for _, op := range head {
		results := m.Op(op).Results
		if hasExternalUse(m, results, inHead) {
			outputs = append(outputs, results...)
		}
	}
	return outputs
}

func hasExternalUse(m *ir.Module, results []ir.ValueID, inHead func(ir.OpID) bool) bool {
	for _, r := range results {
		for _, u := range m.Value(r).Uses {
			if !inHead(u.Op) {
				return true
			}
		}
	}
	return false
}

// headMembership returns a predicate telling whether an op is a member of
// head or is nested inside one.
func headMembership(m *ir.Module, cluster ir.OpID, head []ir.OpID) func(ir.OpID) bool {
	body := clusterBody(m, cluster)
	set := newSetVector(head...)
	return func(op ir.OpID) bool {
		anc := m.AncestorIn(op, body)
		return anc != ir.NoOpID && set.has(anc)
	}
}
