package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ExecutionTrace is the canonical record of what a run decided and did.
//
// It captures logical facts only (which rooms changed, which hooks ran and how
// they ended, which fingerprints were committed), never timings or captured
// output, so two runs that made the same decisions produce identical bytes
// regardless of how the parallel phases were interleaved.
type ExecutionTrace struct {
	Events []TraceEvent `json:"events"`
}

// TraceEventKind is the stable discriminator for TraceEvent.
// The string values are part of the trace's canonical bytes; do not rename.
type TraceEventKind string

const (
	EventRoomChanged          TraceEventKind = "RoomChanged"
	EventRoomUnchanged        TraceEventKind = "RoomUnchanged"
	EventHookCompleted        TraceEventKind = "HookCompleted"
	EventHookFailed           TraceEventKind = "HookFailed"
	EventHookSkipped          TraceEventKind = "HookSkipped"
	EventFingerprintCommitted TraceEventKind = "FingerprintCommitted"
	EventFingerprintWithheld  TraceEventKind = "FingerprintWithheld"
)

// Stage names used in TraceEvent.Phase besides the room hook phases.
const (
	StageDiff      = "diff"
	StageBeforeAll = "beforeAll"
	StageAfterAll  = "afterAll"
	StageCommit    = "commit"
)

// PhaseOrder is the pipeline order used to canonicalize events.
var PhaseOrder = []string{
	StageDiff,
	StageBeforeAll,
	"beforeSynchronous",
	"before",
	"runParallel",
	"runSynchronous",
	"after",
	StageAfterAll,
	StageCommit,
}

// TraceEvent is a single logical transition or decision.
//
// Room is empty for global hooks (beforeAll/afterAll).
type TraceEvent struct {
	Kind   TraceEventKind `json:"kind"`
	Room   string         `json:"room,omitempty"`
	Phase  string         `json:"phase,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

// Validate checks basic invariants and returns a descriptive error.
func (t *ExecutionTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	for i, e := range t.Events {
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.Phase == "" {
			return fmt.Errorf("events[%d].phase is required", i)
		}
		if phaseRank(e.Phase) < 0 {
			return fmt.Errorf("events[%d].phase %q is unknown", i, e.Phase)
		}
		if isRoomEvent(e.Kind) && e.Room == "" && e.Phase != StageBeforeAll && e.Phase != StageAfterAll {
			return fmt.Errorf("events[%d].room is required for kind %q", i, e.Kind)
		}
	}
	return nil
}

func isRoomEvent(kind TraceEventKind) bool {
	switch kind {
	case EventRoomChanged, EventRoomUnchanged, EventHookSkipped, EventFingerprintCommitted, EventFingerprintWithheld:
		return true
	default:
		return false
	}
}

// Canonicalize sorts events into their canonical order:
// (room, phase order, kind order, reason). Global events sort before room
// events because their Room is empty.
func (t *ExecutionTrace) Canonicalize() {
	if t == nil {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		a := t.Events[i]
		b := t.Events[j]
		if a.Room != b.Room {
			return a.Room < b.Room
		}
		if pa, pb := phaseRank(a.Phase), phaseRank(b.Phase); pa != pb {
			return pa < pb
		}
		if ka, kb := kindOrder(a.Kind), kindOrder(b.Kind); ka != kb {
			return ka < kb
		}
		return a.Reason < b.Reason
	})
}

// ForRoom returns the events recorded for room, in their current order.
func (t ExecutionTrace) ForRoom(room string) []TraceEvent {
	var out []TraceEvent
	for _, e := range t.Events {
		if e.Room == room {
			out = append(out, e)
		}
	}
	return out
}

func phaseRank(phase string) int {
	for i, p := range PhaseOrder {
		if p == phase {
			return i
		}
	}
	return -1
}

func kindOrder(k TraceEventKind) int {
	switch k {
	case EventRoomChanged:
		return 10
	case EventRoomUnchanged:
		return 20
	case EventHookCompleted:
		return 30
	case EventHookFailed:
		return 40
	case EventHookSkipped:
		return 50
	case EventFingerprintCommitted:
		return 60
	case EventFingerprintWithheld:
		return 70
	default:
		return 1000
	}
}

// CanonicalJSON returns the canonical JSON encoding of the trace.
// It canonicalizes a copy to avoid mutating the caller's slice.
func (t ExecutionTrace) CanonicalJSON() ([]byte, error) {
	cp := ExecutionTrace{Events: make([]TraceEvent, len(t.Events))}
	copy(cp.Events, t.Events)
	cp.Canonicalize()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&cp)
}

// Hash returns the sha256 hex digest of the canonical JSON bytes.
func (t ExecutionTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}
