package orchestrator

import "roomservice/internal/core"

// HookOutcome is the terminal state of one room hook in one run.
type HookOutcome string

const (
	HookCompleted HookOutcome = "COMPLETED"
	HookFailed    HookOutcome = "FAILED"
	// HookSkipped means the hook was configured but the room had already
	// errored in an earlier phase.
	HookSkipped HookOutcome = "SKIPPED"
)

// RoomResult summarizes one room after a run.
type RoomResult struct {
	Name     string
	Path     string
	Decision core.Decision

	// ShouldBuild is the diff verdict.
	ShouldBuild bool

	// Errored is true if any hook for the room failed.
	Errored bool

	// Committed is true if the fingerprint was written to the cache.
	Committed bool

	// Files is the number of files that contributed to the fingerprint.
	Files int

	// Hooks records the outcome of every hook that was considered. Phases
	// without a configured command, or not reached, are absent.
	Hooks map[core.Phase]HookOutcome
}

// Result is the summary of an Exec call.
type Result struct {
	// Rooms lists every registered room in registration order.
	Rooms []RoomResult

	// Changed lists the rooms selected for building, in registration order.
	Changed []string

	// UpToDate is set when the diff found nothing to build and the run
	// stopped at the gate.
	UpToDate bool

	// DryRun is set when the run stopped after reporting the diff.
	DryRun bool
}

// Errored returns the names of the rooms that ended the run errored.
func (r *Result) Errored() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, rr := range r.Rooms {
		if rr.Errored {
			out = append(out, rr.Name)
		}
	}
	return out
}

// OK reports whether no room errored.
func (r *Result) OK() bool {
	return len(r.Errored()) == 0
}

// Room returns the result for name.
func (r *Result) Room(name string) (RoomResult, bool) {
	if r == nil {
		return RoomResult{}, false
	}
	for _, rr := range r.Rooms {
		if rr.Name == name {
			return rr, true
		}
	}
	return RoomResult{}, false
}
