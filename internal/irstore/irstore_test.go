package irstore_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"offload/internal/ir"
	"offload/internal/irstore"
	"offload/internal/irtext"
)

const sample = `module devices ["/job:worker/replica:0/task:0/device:TPU:0"] {
  "func.func"() ({
    ^(%arg0: tensor<i32>):
    %0 = "device.cluster"() ({
      %1 = "tf.A"(%arg0) [offload] : (tensor<i32>)
      "x.loop"() ({
        ^(%i: index):
        "x.body"(%1, %i) : ()
      }) : ()
      "device.return"(%1) : ()
    }) : (tensor<i32>)
    "func.return"(%0) : ()
  }) [sym_name = "main"] : ()
}
`

func TestRoundTripBytes(t *testing.T) {
	m := irtext.MustParse(sample)
	data, err := irstore.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := irstore.Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.String() != m.String() {
		t.Errorf("snapshot changed the module:\n--- got\n%s\n--- want\n%s", got, m)
	}
	if err := ir.Validate(got); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestWriteReadFile(t *testing.T) {
	m := irtext.MustParse(sample)
	path := filepath.Join(t.TempDir(), "nested", "main"+irstore.Ext)
	if err := irstore.WriteFile(path, m); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := irstore.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.String() != m.String() {
		t.Errorf("file round trip mismatch")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestRestoreRejectsSchema(t *testing.T) {
	p := irstore.Snapshot(irtext.MustParse("module {\n}\n"))
	p.Schema = irstore.SchemaVersion + 1
	if _, err := irstore.Restore(p); !errors.Is(err, irstore.ErrSchema) {
		t.Errorf("expected ErrSchema, got %v", err)
	}
}

func TestDecodeRejectsDanglingOperand(t *testing.T) {
	p := &irstore.Payload{
		Schema: irstore.SchemaVersion,
		Body: irstore.RegionPayload{Ops: []irstore.OpPayload{
			{Name: "x.use", Operands: []int32{3}},
		}},
	}
	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(p); err != nil {
		t.Fatal(err)
	}
	if _, err := irstore.Decode(&buf); !errors.Is(err, irstore.ErrCorrupt) {
		t.Errorf("expected ErrCorrupt, got %v", err)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := irstore.Unmarshal([]byte{0xc1}); err == nil {
		t.Error("expected decode error")
	}
}
