package pass_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"offload/internal/headextract"
	"offload/internal/ir"
	"offload/internal/irtext"
	"offload/internal/observ"
	"offload/internal/pass"
	"offload/internal/trace"
)

const src = `module devices ["/job:worker/replica:0/task:0/device:TPU:0"] {
  "func.func"() ({
    ^(%a: tensor<i32>):
    %r = "device.cluster"() ({
      %b = "tf.F"(%a) [offload] : (tensor<i32>)
      %c = "tf.G"(%b) : (tensor<i32>)
      "device.return"(%c) : ()
    }) : (tensor<i32>)
    "func.return"(%r) : ()
  }) [sym_name = "main"] : ()
}
`

type failing struct{ err error }

func (failing) Name() string                            { return "fail" }
func (failing) Description() string                     { return "always fails" }
func (f failing) Run(context.Context, *ir.Module) error { return f.err }

type breaking struct{}

func (breaking) Name() string        { return "break" }
func (breaking) Description() string { return "drops the module terminator" }
func (breaking) Run(_ context.Context, m *ir.Module) error {
	fn := m.Region(m.Body).Ops[0]
	body := m.Op(fn).Regions[0]
	m.Detach(m.Region(body).Terminator())
	return nil
}

func TestDefaultRegistry(t *testing.T) {
	r := pass.Default()
	list := r.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 passes, got %d", len(list))
	}
	if list[0].Name != headextract.Name || list[1].Name != pass.VerifyName {
		t.Errorf("passes not sorted by name: %s, %s", list[0].Name, list[1].Name)
	}
	info, ok := r.Lookup(headextract.Name)
	if !ok || info.Description != headextract.Description {
		t.Errorf("Lookup = %+v, %v", info, ok)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := pass.NewRegistry()
	if err := r.Register(func() pass.Pass { return pass.Verify{} }); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(func() pass.Pass { return pass.Verify{} }); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestPipelineUnknownPass(t *testing.T) {
	_, err := pass.Default().Pipeline([]string{"verify", "nope"})
	if !errors.Is(err, pass.ErrUnknownPass) || !strings.Contains(err.Error(), `"nope"`) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestManagerRunsPipeline(t *testing.T) {
	passes, err := pass.Default().Pipeline([]string{headextract.Name, pass.VerifyName})
	if err != nil {
		t.Fatal(err)
	}
	m := irtext.MustParse(src)
	timer := observ.NewTimer()
	pm := pass.NewManager(passes...)
	pm.VerifyEach = true
	pm.Timer = timer
	var ran []string
	pm.OnPass = func(p pass.Pass) { ran = append(ran, p.Name()) }

	ring := trace.NewRingTracer(64, trace.LevelPhase)
	ctx := trace.WithTracer(context.Background(), ring)
	if err := pm.Run(ctx, m); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(m.Collect(ir.OpLaunch)) != 1 {
		t.Error("head extraction did not run")
	}
	if len(ran) != 2 {
		t.Errorf("OnPass calls = %v", ran)
	}
	if got := len(timer.Report().Phases); got != 2 {
		t.Errorf("timer phases = %d", got)
	}

	var ends int
	for _, ev := range ring.Snapshot() {
		if ev.Kind == trace.KindSpanEnd && ev.Scope == trace.ScopePass {
			ends++
			if ev.Detail != "ok" {
				t.Errorf("span %s ended with %q", ev.Name, ev.Detail)
			}
		}
	}
	if ends != 2 {
		t.Errorf("expected 2 pass spans, got %d", ends)
	}
}

func TestManagerStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	pm := pass.NewManager(failing{err: boom}, pass.Verify{})
	pm.OnPass = func(p pass.Pass) { ran = append(ran, p.Name()) }

	err := pm.Run(context.Background(), irtext.MustParse(src))
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "pass fail: ") {
		t.Errorf("error does not name the pass: %v", err)
	}
	if len(ran) != 0 {
		t.Errorf("later passes ran: %v", ran)
	}
}

func TestVerifyEachCatchesBrokenModule(t *testing.T) {
	m := irtext.MustParse(src)

	pm := pass.NewManager(breaking{})
	if err := pm.Run(context.Background(), m); err != nil {
		t.Fatalf("without VerifyEach the broken module should pass: %v", err)
	}

	m = irtext.MustParse(src)
	pm.VerifyEach = true
	err := pm.Run(context.Background(), m)
	if err == nil || !strings.Contains(err.Error(), "module invalid after pass") {
		t.Errorf("expected verification failure, got %v", err)
	}
	if !errors.Is(err, pass.ErrInvalidModule) {
		t.Errorf("verification failure does not wrap ErrInvalidModule: %v", err)
	}
}

func TestManagerHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pass.NewManager(pass.Verify{}).Run(ctx, irtext.MustParse(src))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
