package trace_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"offload/internal/trace"
)

func TestRingKeepsNewestInOrder(t *testing.T) {
	ring := trace.NewRingTracer(3, trace.LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		ring.Emit(&trace.Event{Kind: trace.KindPoint, Scope: trace.ScopePass, Name: name})
	}
	var got []string
	for _, ev := range ring.Snapshot() {
		got = append(got, ev.Name)
	}
	if strings.Join(got, ",") != "c,d,e" {
		t.Errorf("snapshot = %v, want [c d e]", got)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, trace.FormatNDJSON); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 3 {
		t.Errorf("dump has %d lines, want 3:\n%s", lines, buf.String())
	}
}

func TestRingFiltersByLevel(t *testing.T) {
	ring := trace.NewRingTracer(8, trace.LevelPhase)
	ring.Emit(&trace.Event{Kind: trace.KindPoint, Scope: trace.ScopePass, Name: "kept"})
	ring.Emit(&trace.Event{Kind: trace.KindPoint, Scope: trace.ScopeOp, Name: "dropped"})
	ring.Emit(&trace.Event{Kind: trace.KindHeartbeat, Scope: trace.ScopeOp, Name: "beat"})
	if got := len(ring.Snapshot()); got != 2 {
		t.Errorf("stored %d events, want 2", got)
	}
}

func TestRingOf(t *testing.T) {
	ring := trace.NewRingTracer(4, trace.LevelPhase)
	stream := trace.NewStreamTracer(&bytes.Buffer{}, trace.LevelPhase, trace.FormatText)
	if trace.RingOf(ring) != ring {
		t.Error("RingOf(ring) did not return the ring")
	}
	if trace.RingOf(trace.NewMultiTracer(trace.LevelPhase, stream, ring)) != ring {
		t.Error("RingOf(multi) did not find the ring")
	}
	if trace.RingOf(stream) != nil || trace.RingOf(trace.Nop) != nil {
		t.Error("RingOf found a ring where there is none")
	}
}

func TestStartSpanNests(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelDetail)
	ctx := trace.WithTracer(context.Background(), ring)

	before := trace.OpenSpans()
	outer, ctx := trace.StartSpan(ctx, trace.ScopeDriver, "file a.ir")
	inner, _ := trace.StartSpan(ctx, trace.ScopePass, "verify")
	if got := trace.OpenSpans() - before; got != 2 {
		t.Errorf("open spans = %d, want 2", got)
	}
	inner.WithExtra("k", "v").End("ok")
	inner.End("again")
	outer.End("ok")
	if got := trace.OpenSpans() - before; got != 0 {
		t.Errorf("open spans after End = %d, want 0", got)
	}

	var begins, ends []trace.Event
	for _, ev := range ring.Snapshot() {
		switch ev.Kind {
		case trace.KindSpanBegin:
			begins = append(begins, ev)
		case trace.KindSpanEnd:
			ends = append(ends, ev)
		}
	}
	if len(begins) != 2 {
		t.Fatalf("got %d begins, want 2", len(begins))
	}
	if begins[1].ParentID != begins[0].SpanID {
		t.Errorf("inner parent = %d, want %d", begins[1].ParentID, begins[0].SpanID)
	}
	if ends[0].Extra["k"] != "v" {
		t.Errorf("inner end extra = %v", ends[0].Extra)
	}
}

func TestSpanOnNopTracer(t *testing.T) {
	sp, ctx := trace.StartSpan(context.Background(), trace.ScopePass, "x")
	if sp.ID() != 0 {
		t.Errorf("nop span has id %d", sp.ID())
	}
	if trace.CurrentSpan(ctx).SpanID != 0 {
		t.Error("nop span was attached to the context")
	}
	if d := sp.End("ok"); d != 0 {
		t.Errorf("nop span duration = %v", d)
	}
}

func TestStreamNDJSON(t *testing.T) {
	var buf bytes.Buffer
	st := trace.NewStreamTracer(&buf, trace.LevelDetail, trace.FormatNDJSON)
	trace.Point(st, trace.ScopeCluster, "cluster#0", "no boundary inputs", 7, map[string]string{"head": "0"})
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got struct {
		Kind     string            `json:"kind"`
		Scope    string            `json:"scope"`
		ParentID uint64            `json:"parent_id"`
		Name     string            `json:"name"`
		Detail   string            `json:"detail"`
		Extra    map[string]string `json:"extra"`
	}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("invalid NDJSON %q: %v", buf.String(), err)
	}
	if got.Kind != "point" || got.Scope != "cluster" || got.ParentID != 7 || got.Name != "cluster#0" || got.Extra["head"] != "0" {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestZapTracerLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	zt := trace.NewZapTracer(zap.New(core), trace.LevelDetail)

	sp := trace.Begin(zt, trace.ScopePass, "headextract", 0)
	trace.Point(zt, trace.ScopeCluster, "cluster#0", "", sp.ID(), map[string]string{"outputs": "2", "head": "3"})
	sp.End("ok")
	trace.Point(zt, trace.ScopeOp, "too detailed", "", 0, nil)
	if err := zt.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("got %d log entries, want 3", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel || entries[0].Message != "headextract" {
		t.Errorf("begin entry = %+v", entries[0])
	}
	point := entries[1].ContextMap()
	if point["outputs"] != "2" || point["head"] != "3" || point["scope"] != "cluster" {
		t.Errorf("point fields = %v", point)
	}
	if entries[2].Level != zapcore.InfoLevel || entries[2].ContextMap()["detail"] != "ok" {
		t.Errorf("end entry = %+v", entries[2])
	}
}

func TestHeartbeat(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	hb := trace.StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	hb.Stop()
	hb.Stop()

	events := ring.Snapshot()
	if len(events) == 0 {
		t.Fatal("no heartbeat within 2s")
	}
	if events[0].Kind != trace.KindHeartbeat || events[0].Extra["open_spans"] == "" {
		t.Errorf("unexpected heartbeat %+v", events[0])
	}
	if trace.StartHeartbeat(trace.Nop, time.Millisecond) != nil {
		t.Error("heartbeat started on a disabled tracer")
	}
}

func TestParseLevelAndMode(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug"} {
		if _, err := trace.ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := trace.ParseLevel("loud"); err == nil {
		t.Error("ParseLevel accepted an unknown level")
	}
	mode, err := trace.ParseMode("LOG")
	if err != nil || mode != trace.ModeLog {
		t.Errorf("ParseMode(LOG) = %v, %v", mode, err)
	}
}

func TestNewLogModeUsesLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tr, err := trace.New(trace.Config{Level: trace.LevelPhase, Mode: trace.ModeLog, Logger: zap.New(core)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	trace.Point(tr, trace.ScopePass, "p", "", 0, nil)
	if logs.Len() != 1 {
		t.Errorf("got %d entries, want 1", logs.Len())
	}
}

func TestStreamChromeDocument(t *testing.T) {
	var buf bytes.Buffer
	tr, err := trace.New(trace.Config{Level: trace.LevelPhase, Mode: trace.ModeStream, Format: trace.FormatChrome, Output: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sp := trace.Begin(tr, trace.ScopePass, "verify", 0)
	sp.End("ok")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var doc struct {
		TraceEvents []struct {
			Name  string `json:"name"`
			Phase string `json:"ph"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not a JSON document: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 2 || doc.TraceEvents[0].Phase != "B" || doc.TraceEvents[1].Phase != "E" {
		t.Errorf("unexpected events %+v", doc.TraceEvents)
	}
}

func TestNewLevelOffIsNop(t *testing.T) {
	tr, err := trace.New(trace.Config{Level: trace.LevelOff, Mode: trace.ModeStream})
	if err != nil || tr != trace.Nop {
		t.Errorf("New(off) = %v, %v; want Nop", tr, err)
	}
}
