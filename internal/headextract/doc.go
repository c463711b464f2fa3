// Package headextract hoists host-side work off the head of device clusters.
//
// For every device.cluster in a module the pass computes the cluster's
// boundary inputs, grows the closure of offload-tagged operations that only
// read boundary inputs (or results of ops already in the closure), and moves
// that head set into a new device.launch placed right before the cluster.
// Uses of hoisted values that stay behind are rewired to the launch results.
//
// Each cluster is handled in two phases: BoundaryInputs, BuildHeadSet and
// ClassifyOutputs only read the graph; Isolate only writes it.
//
// Tail extraction, zero-operand tagged ops and device assignment of the new
// launch are not implemented.
package headextract
