// Package orchestrator runs the room build pipeline.
//
// A run diffs every registered room, then drives the fixed hook phases for
// the rooms that changed:
//
//	diff (parallel) -> beforeAll -> beforeSynchronous -> before (parallel)
//	  -> runParallel (parallel) -> runSynchronous -> after (parallel)
//	  -> afterAll -> commit
//
// Every phase is a full barrier. Sequential phases visit rooms in
// registration order. A failing room hook marks only that room as errored;
// a failing global hook aborts the run with a *FatalError. Fingerprints are
// committed at the end for every room that did not error.
package orchestrator
