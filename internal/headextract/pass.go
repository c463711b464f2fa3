package headextract

import (
	"context"
	"fmt"
	"strconv"

	"offload/internal/devices"
	"offload/internal/ir"
	"offload/internal/trace"
)

const (
	// Name is the registered pass name.
	Name = "tpu-extract-head-tail-outside-compilation"
	// Description is the one-line pass description.
	Description = "Extracts TPU head or tail outside compilation to separate host launch op."
)

// ClusterResult records what happened to one device cluster.
type ClusterResult struct {
	Cluster ir.OpID
	// Launch is the created host launch, ir.NoOpID when the cluster was left alone.
	Launch  ir.OpID
	Inputs  []ir.ValueID
	Head    []ir.OpID
	Outputs []ir.ValueID
}

// Extracted reports whether a launch was created for the cluster.
func (r ClusterResult) Extracted() bool { return r.Launch != ir.NoOpID }

// outcome is "extracted" or the reason the cluster was left alone.
func (r ClusterResult) outcome() string {
	switch {
	case r.Extracted():
		return "extracted"
	case len(r.Inputs) == 0:
		return "no boundary inputs"
	case len(r.Head) == 0:
		return "no tagged ops at head"
	case len(r.Outputs) == 0:
		return "head set has no external uses"
	default:
		return "nothing extracted"
	}
}

// Report summarizes a whole-module run.
type Report struct {
	Devices  devices.RuntimeDevices
	Clusters []ClusterResult
}

// Extracted returns the number of clusters that got a host launch.
func (r Report) Extracted() int {
	n := 0
	for _, c := range r.Clusters {
		if c.Extracted() {
			n++
		}
	}
	return n
}

// Pass is the registrable form of Extract. It takes no options.
type Pass struct {
	// Devices resolves module device metadata; nil means devices.FromModule.
	Devices devices.Provider

	last Report
}

// New returns the pass with the default device provider.
func New() *Pass {
	return &Pass{Devices: devices.FromModule}
}

func (p *Pass) Name() string        { return Name }
func (p *Pass) Description() string { return Description }

// Run extracts head outside compilation from every cluster in m.
func (p *Pass) Run(ctx context.Context, m *ir.Module) error {
	rep, err := Extract(ctx, m, p.Devices)
	p.last = rep
	return err
}

// LastReport returns the report of the most recent Run.
func (p *Pass) LastReport() Report { return p.last }

// Summary describes the most recent Run in one line.
func (p *Pass) Summary() string {
	return fmt.Sprintf("%d of %d clusters extracted", p.last.Extracted(), len(p.last.Clusters))
}

// Extract resolves device metadata once and then transforms every device
// cluster of m independently, in walk order. A device metadata failure
// aborts the run before any cluster is touched.
func Extract(ctx context.Context, m *ir.Module, provider devices.Provider) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if provider == nil {
		provider = devices.FromModule
	}
	devs, err := provider.Devices(m)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get devices from module: %w", err)
	}

	t := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	// Collect first: the transformation inserts launches into the regions
	// being walked.
	clusters := m.Collect(ir.OpCluster)
	rep := Report{Devices: devs, Clusters: make([]ClusterResult, 0, len(clusters))}
	for i, cluster := range clusters {
		res := ExtractCluster(m, cluster)
		rep.Clusters = append(rep.Clusters, res)

		if t.Enabled() {
			extra := map[string]string{
				"func":    enclosingFunc(m, cluster),
				"inputs":  strconv.Itoa(len(res.Inputs)),
				"head":    strconv.Itoa(len(res.Head)),
				"outputs": strconv.Itoa(len(res.Outputs)),
			}
			trace.Point(t, trace.ScopeCluster, "cluster#"+strconv.Itoa(i), res.outcome(), parent, extra)
		}
	}
	return rep, nil
}

// ExtractCluster runs boundary analysis, head-set construction and output
// classification on cluster, then isolates the head set when it exports
// anything.
func ExtractCluster(m *ir.Module, cluster ir.OpID) ClusterResult {
	res := ClusterResult{Cluster: cluster, Launch: ir.NoOpID}
	res.Inputs = BoundaryInputs(m, cluster)
	if len(res.Inputs) == 0 {
		return res
	}
	res.Head = BuildHeadSet(m, cluster, res.Inputs)
	if len(res.Head) == 0 {
		return res
	}
	res.Outputs = ClassifyOutputs(m, cluster, res.Head)
	if len(res.Outputs) == 0 {
		return res
	}
	res.Launch = Isolate(m, cluster, res.Head, res.Outputs)
	return res
}

func enclosingFunc(m *ir.Module, op ir.OpID) string {
	top := m.AncestorIn(op, m.Body)
	if top == ir.NoOpID {
		return "?"
	}
	if name, ok := m.Op(top).Attr(ir.AttrSymName); ok {
		return name
	}
	return m.Op(top).Name
}
