package orchestrator

import "roomservice/internal/core"

// phaseSpec describes one room hook phase of the pipeline.
type phaseSpec struct {
	phase    core.Phase
	title    string
	parallel bool
}

// pipeline is the fixed order of the room hook phases between beforeAll and
// afterAll. The finally hook is accepted in configuration but never scheduled.
var pipeline = []phaseSpec{
	{phase: core.PhaseBeforeSynchronous, title: "Executing Before Sync", parallel: false},
	{phase: core.PhaseBefore, title: "Executing Before", parallel: true},
	{phase: core.PhaseRunParallel, title: "Executing Run Parallel", parallel: true},
	{phase: core.PhaseRunSynchronous, title: "Executing Run Synchronously", parallel: false},
	{phase: core.PhaseAfter, title: "Executing After", parallel: true},
}

const (
	titleDiff      = "Diffing rooms"
	titleUpdate    = "Updating all rooms"
	titleBeforeAll = "Executing Before All"
	titleAfterAll  = "Executing After All"

	labelBeforeAll = "Before All"
	labelAfterAll  = "After All"

	warnErrored = "Errors occurred during roomservice"
)
