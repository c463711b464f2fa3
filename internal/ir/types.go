package ir

type OpID int32
type ValueID int32
type RegionID int32

const (
	NoOpID     OpID     = -1
	NoValueID  ValueID  = -1
	NoRegionID RegionID = -1
)

// Type is an opaque type spelling such as "tensor<2xf32>".
type Type string

type ValueKind uint8

const (
	// ValueResult is produced by an operation.
	ValueResult ValueKind = iota
	// ValueParam is a region parameter.
	ValueParam
)

func (k ValueKind) String() string {
	switch k {
	case ValueResult:
		return "result"
	case ValueParam:
		return "param"
	default:
		return "unknown"
	}
}

// Use identifies one operand slot that reads a value.
type Use struct {
	Op      OpID
	Operand int
}

type Value struct {
	ID   ValueID
	Kind ValueKind
	Type Type
	Name string

	// Def is the defining op for results, Region the owning region for params.
	Def    OpID
	Region RegionID
	Index  int

	Uses []Use
}

type Attr struct {
	Name  string
	Value string
}

type Op struct {
	ID       OpID
	Name     string
	Operands []ValueID
	Results  []ValueID
	Regions  []RegionID
	Attrs    []Attr

	// Offload marks the op as a candidate for execution on the host,
	// outside of the enclosing device cluster.
	Offload bool

	Parent RegionID
}

// Attr returns the value of the named attribute.
func (o *Op) Attr(name string) (string, bool) {
	if o == nil {
		return "", false
	}
	for _, a := range o.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr replaces or appends the named attribute.
func (o *Op) SetAttr(name, value string) {
	for i := range o.Attrs {
		if o.Attrs[i].Name == name {
			o.Attrs[i].Value = value
			return
		}
	}
	o.Attrs = append(o.Attrs, Attr{Name: name, Value: value})
}

type Region struct {
	ID     RegionID
	Params []ValueID
	Ops    []OpID
	Parent OpID
}

// Terminator returns the last op of the region or NoOpID when it is empty.
func (r *Region) Terminator() OpID {
	if r == nil || len(r.Ops) == 0 {
		return NoOpID
	}
	return r.Ops[len(r.Ops)-1]
}

// Well-known operation names.
const (
	OpFunc       = "func.func"
	OpFuncReturn = "func.return"

	// OpCluster is a region executed on the device.
	OpCluster = "device.cluster"
	// OpLaunch is a region executed on the device named by its "device" attribute.
	OpLaunch = "device.launch"
	// OpReturn terminates cluster and launch bodies.
	OpReturn = "device.return"

	AttrSymName = "sym_name"
	AttrDevice  = "device"
)
