package headextract

import "offload/internal/ir"

// clusterBody returns the single region of a device cluster.
func clusterBody(m *ir.Module, cluster ir.OpID) ir.RegionID {
	return m.Op(cluster).Regions[0]
}

// BoundaryInputs returns the values defined outside the cluster body but read
// by some op inside it, nested regions included, in first-seen order.
func BoundaryInputs(m *ir.Module, cluster ir.OpID) []ir.ValueID {
	return m.UsedValuesDefinedAbove(clusterBody(m, cluster))
}
