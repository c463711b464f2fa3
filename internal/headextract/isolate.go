package headextract

import (
	"slices"

	"offload/internal/ir"
)

// Isolate creates a device.launch right before cluster yielding outputs,
// rewires every use of an output outside head to the matching launch result
// and moves the head ops, in their original cluster order, into the launch
// body ahead of its terminator. It returns the launch, or ir.NoOpID when
// there is nothing to export.
//
// The launch gets an empty device attribute.
func Isolate(m *ir.Module, cluster ir.OpID, head []ir.OpID, outputs []ir.ValueID) ir.OpID {
	if len(head) == 0 || len(outputs) == 0 {
		return ir.NoOpID
	}
	inHead := headMembership(m, cluster, head)
	ordered := inClusterOrder(m, cluster, head)

	types := make([]ir.Type, len(outputs))
	for i, v := range outputs {
		types[i] = m.TypeOf(v)
	}
	launch := m.NewOp(ir.OpState{
		Name:       ir.OpLaunch,
		Results:    types,
		NumRegions: 1,
		Attrs:      []ir.Attr{{Name: ir.AttrDevice, Value: ""}},
	})
	m.InsertBefore(cluster, launch)

	for i, v := range outputs {
		m.ReplaceUsesWhere(v, m.Result(launch, i), func(u ir.Use) bool {
			return !inHead(u.Op)
		})
	}

	// The terminator is created after rewiring so that it keeps reading the
	// original values.
	ret := m.NewOp(ir.OpState{Name: ir.OpReturn, Operands: outputs})
	m.Append(m.Op(launch).Regions[0], ret)
	for _, op := range ordered {
		m.MoveBefore(op, ret)
	}
	return launch
}

// inClusterOrder sorts head by position in the cluster body.
func inClusterOrder(m *ir.Module, cluster ir.OpID, head []ir.OpID) []ir.OpID {
	pos := make(map[ir.OpID]int, len(head))
	for i, op := range m.Region(clusterBody(m, cluster)).Ops {
		pos[op] = i
	}
	ordered := slices.Clone(head)
	slices.SortFunc(ordered, func(a, b ir.OpID) int {
		return pos[a] - pos[b]
	})
	return ordered
}
