package trace

import "time"

// Kind says what an Event marks.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event. Smaller values are coarser, so a
// Level admits every scope up to some bound.
type Scope uint8

const (
	// ScopeDriver covers whole commands and files.
	ScopeDriver Scope = iota + 1
	// ScopePass covers pipeline stages and pass runs.
	ScopePass
	// ScopeCluster covers the work on one device.cluster.
	ScopeCluster
	// ScopeOp covers decisions about single ops.
	ScopeOp
)

var scopeNames = [...]string{
	ScopeDriver:  "driver",
	ScopePass:    "pass",
	ScopeCluster: "cluster",
	ScopeOp:      "op",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Event is one trace record. Tracers must not keep the pointer passed to
// Emit; RingTracer copies the value.
type Event struct {
	Time     time.Time
	Seq      uint64 // process-wide emission order
	Kind     Kind
	Scope    Scope
	SpanID   uint64 // 0 for points and heartbeats
	ParentID uint64
	GID      uint64 // emitting goroutine
	Name     string // "pipeline", "headextract", "cluster#2"
	Detail   string
	Extra    map[string]string
}
