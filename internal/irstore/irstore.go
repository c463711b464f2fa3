// Package irstore saves modules as msgpack snapshots (.irpack) and loads
// them back. A snapshot keeps value names, attributes and offload tags, so a
// decoded module prints exactly like the one that was encoded.
package irstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/vmihailenco/msgpack/v5"

	"offload/internal/ir"
)

// Ext is the file extension of IR snapshots.
const Ext = ".irpack"

// Current schema version - increment when Payload format changes
const SchemaVersion uint16 = 1

var (
	// ErrSchema is returned for snapshots written with another schema version.
	ErrSchema = errors.New("irstore: unsupported snapshot schema")
	// ErrCorrupt is returned when a snapshot references values that do not exist.
	ErrCorrupt = errors.New("irstore: corrupt snapshot")
)

// Payload is the on-disk form of a module. Values are numbered densely in
// definition order: region parameters first, then for each op its nested
// regions, then its results.
type Payload struct {
	Schema     uint16
	Devices    []string
	HasDevices bool
	Body       RegionPayload
}

// RegionPayload is one region with its block parameters.
type RegionPayload struct {
	Params []ValuePayload
	Ops    []OpPayload
}

// ValuePayload carries what a value needs besides its identity.
type ValuePayload struct {
	Name string
	Type string
}

// OpPayload is one operation. Operands index the dense value numbering.
type OpPayload struct {
	Name     string
	Operands []int32
	Results  []ValuePayload
	Regions  []RegionPayload
	Attrs    []ir.Attr
	Offload  bool
}

// Snapshot converts m into its payload form.
func Snapshot(m *ir.Module) *Payload {
	e := encoder{m: m, index: make(map[ir.ValueID]int32)}
	return &Payload{
		Schema:     SchemaVersion,
		Devices:    slices.Clone(m.Devices),
		HasDevices: m.HasDevices,
		Body:       e.region(m.Body),
	}
}

type encoder struct {
	m     *ir.Module
	index map[ir.ValueID]int32
}

func (e *encoder) number(v ir.ValueID) ValuePayload {
	e.index[v] = int32(len(e.index))
	val := e.m.Value(v)
	return ValuePayload{Name: val.Name, Type: string(val.Type)}
}

func (e *encoder) region(r ir.RegionID) RegionPayload {
	reg := e.m.Region(r)
	out := RegionPayload{
		Params: make([]ValuePayload, len(reg.Params)),
		Ops:    make([]OpPayload, len(reg.Ops)),
	}
	for i, v := range reg.Params {
		out.Params[i] = e.number(v)
	}
	for i, op := range reg.Ops {
		out.Ops[i] = e.op(op)
	}
	return out
}

func (e *encoder) op(id ir.OpID) OpPayload {
	o := e.m.Op(id)
	out := OpPayload{
		Name:     o.Name,
		Operands: make([]int32, len(o.Operands)),
		Attrs:    slices.Clone(o.Attrs),
		Offload:  o.Offload,
	}
	for i, v := range o.Operands {
		idx, ok := e.index[v]
		if !ok {
			idx = -1
		}
		out.Operands[i] = idx
	}
	for _, r := range o.Regions {
		out.Regions = append(out.Regions, e.region(r))
	}
	for _, v := range o.Results {
		out.Results = append(out.Results, e.number(v))
	}
	return out
}

// Restore rebuilds a module from p.
func Restore(p *Payload) (*ir.Module, error) {
	if p.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, p.Schema, SchemaVersion)
	}
	d := decoder{m: ir.NewModule()}
	if p.HasDevices {
		d.m.SetDevices(p.Devices)
	}
	if err := d.region(d.m.Body, &p.Body); err != nil {
		return nil, err
	}
	return d.m, nil
}

type decoder struct {
	m      *ir.Module
	values []ir.ValueID
}

func (d *decoder) region(r ir.RegionID, rp *RegionPayload) error {
	for _, prm := range rp.Params {
		v := d.m.AddParam(r, ir.Type(prm.Type))
		d.m.SetName(v, prm.Name)
		d.values = append(d.values, v)
	}
	for i := range rp.Ops {
		if err := d.op(r, &rp.Ops[i]); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) op(r ir.RegionID, op *OpPayload) error {
	operands := make([]ir.ValueID, len(op.Operands))
	for i, idx := range op.Operands {
		if idx < 0 || int(idx) >= len(d.values) {
			return fmt.Errorf("%w: op %q operand %d refers to value #%d", ErrCorrupt, op.Name, i, idx)
		}
		operands[i] = d.values[idx]
	}
	types := make([]ir.Type, len(op.Results))
	for i, res := range op.Results {
		types[i] = ir.Type(res.Type)
	}
	id := d.m.NewOp(ir.OpState{
		Name:       op.Name,
		Operands:   operands,
		Results:    types,
		NumRegions: len(op.Regions),
		Offload:    op.Offload,
		Attrs:      op.Attrs,
	})
	d.m.Append(r, id)

	regions := slices.Clone(d.m.Op(id).Regions)
	for i := range op.Regions {
		if err := d.region(regions[i], &op.Regions[i]); err != nil {
			return err
		}
	}
	results := slices.Clone(d.m.Op(id).Results)
	for i, v := range results {
		d.m.SetName(v, op.Results[i].Name)
		d.values = append(d.values, v)
	}
	return nil
}

// Encode writes m to w as a msgpack snapshot.
func Encode(w io.Writer, m *ir.Module) error {
	return msgpack.NewEncoder(w).Encode(Snapshot(m))
}

// Decode reads a snapshot from r.
func Decode(r io.Reader) (*ir.Module, error) {
	var p Payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("irstore: decode: %w", err)
	}
	return Restore(&p)
}

// Marshal returns the snapshot bytes of m.
func Marshal(m *ir.Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a snapshot held in memory.
func Unmarshal(data []byte) (*ir.Module, error) {
	return Decode(bytes.NewReader(data))
}

// WriteFile stores m at path, replacing any existing file atomically.
func WriteFile(path string, m *ir.Module) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*"+Ext)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	if err = Encode(f, m); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// ReadFile loads a snapshot from path.
func ReadFile(path string) (*ir.Module, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
