package orchestrator

import (
	"context"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"
	"golang.org/x/sync/errgroup"

	"roomservice/internal/core"
	"roomservice/internal/trace"
)

// ExecOptions selects the mode of a single Exec call.
type ExecOptions struct {
	// DryRun stops after the diff has been reported. Nothing runs and nothing
	// is committed.
	DryRun bool

	// DumpScope writes the fingerprint input of every room to ScopeDir.
	DumpScope bool

	// UpdateOnly fingerprints every room and commits the result without
	// running any hook.
	UpdateOnly bool
}

// roomRun is the per-run bookkeeping of one room. It is only touched by the
// worker currently handling the room.
type roomRun struct {
	room      *core.Room
	hooks     map[core.Phase]HookOutcome
	committed bool
}

// Exec runs the pipeline once over the registered rooms.
//
// Hook failures never abort the run: they mark the room errored, and the
// room's fingerprint is withheld at commit. The returned error is non-nil
// only for fatal conditions (*FatalError), in which case no fingerprint has
// been committed unless the failure happened during the commit itself.
func (o *Orchestrator) Exec(ctx context.Context, opts ExecOptions) (*Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := slogctx.FromCtx(ctx)

	runs := make([]*roomRun, len(o.rooms))
	for i, room := range o.rooms {
		room.Reset()
		runs[i] = &roomRun{room: room, hooks: map[core.Phase]HookOutcome{}}
	}

	if opts.UpdateOnly {
		o.reporter.Phase(titleUpdate)
		if err := o.diff(ctx, runs, true, opts.DumpScope); err != nil {
			return nil, err
		}
		if err := o.commit(ctx, runs); err != nil {
			return nil, err
		}
		return o.result(runs, false, false), nil
	}

	o.reporter.Phase(titleDiff)
	if err := o.diff(ctx, runs, o.force, opts.DumpScope); err != nil {
		return nil, err
	}

	changed := changedNames(runs)
	if len(changed) == 0 {
		logger.InfoContext(ctx, "nothing to build", slog.Int("rooms", len(runs)))
		o.reporter.UpToDate()
		return o.result(runs, true, opts.DryRun), nil
	}
	o.reporter.Changed(changed)
	logger.InfoContext(ctx, "rooms selected", slog.Any("rooms", changed))

	if opts.DryRun {
		return o.result(runs, false, true), nil
	}

	if err := o.global(ctx, trace.StageBeforeAll, titleBeforeAll, labelBeforeAll, o.beforeAll); err != nil {
		return nil, err
	}

	for _, ps := range pipeline {
		if err := ctx.Err(); err != nil {
			return nil, &FatalError{Kind: ErrCancelled, Msg: string(ps.phase), Err: err}
		}
		if !anyConfigured(runs, ps.phase) {
			continue
		}
		o.reporter.Phase(ps.title)
		logger.DebugContext(ctx, "phase started", slog.String("phase", string(ps.phase)))
		if ps.parallel {
			o.runParallel(ctx, runs, ps.phase)
		} else {
			for _, rr := range runs {
				o.runHook(ctx, rr, ps.phase)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, &FatalError{Kind: ErrCancelled, Msg: trace.StageAfterAll, Err: err}
	}

	if err := o.global(ctx, trace.StageAfterAll, titleAfterAll, labelAfterAll, o.afterAll); err != nil {
		return nil, err
	}

	if err := o.commit(ctx, runs); err != nil {
		return nil, err
	}

	res := o.result(runs, false, false)
	if errored := res.Errored(); len(errored) > 0 {
		logger.WarnContext(ctx, "rooms errored", slog.Any("rooms", errored))
		o.reporter.Warn(warnErrored)
	}
	return res, nil
}

// diff evaluates every room on a bounded worker pool. The first fingerprint
// failure cancels the remaining evaluations and is returned as fatal.
func (o *Orchestrator) diff(ctx context.Context, runs []*roomRun, force, dumpScope bool) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, rr := range runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &FatalError{Kind: ErrCancelled, Room: rr.room.Name, Err: err}
			}
			decision, err := rr.room.Evaluate(o.fingerprinter, o.cache, force, dumpScope)
			if err != nil {
				return &FatalError{Kind: ErrFingerprint, Room: rr.room.Name, Err: err}
			}
			slogctx.FromCtx(ctx).DebugContext(ctx, "room evaluated",
				slog.String("room", rr.room.Name),
				slog.String("decision", string(decision)),
				slog.Int("files", rr.room.LatestFingerprint().Files()))
			kind := trace.EventRoomChanged
			if !rr.room.ShouldBuild() {
				kind = trace.EventRoomUnchanged
			}
			trace.SafeRecord(o.sink, trace.TraceEvent{
				Kind:   kind,
				Room:   rr.room.Name,
				Phase:  trace.StageDiff,
				Reason: string(decision),
			})
			return nil
		})
	}
	return g.Wait()
}

// global runs a beforeAll or afterAll command. Failure is fatal.
func (o *Orchestrator) global(ctx context.Context, stage, title, label, cmd string) error {
	if cmd == "" {
		return nil
	}
	o.reporter.Phase(title)
	o.reporter.Started(label)
	cwd := o.projectDir
	if cwd == "" {
		cwd = "."
	}
	if !o.runner.Run(ctx, cwd, cmd, label) {
		trace.SafeRecord(o.sink, trace.TraceEvent{Kind: trace.EventHookFailed, Phase: stage})
		if err := ctx.Err(); err != nil {
			return &FatalError{Kind: ErrCancelled, Msg: stage, Err: err}
		}
		return fatalf(ErrGlobalHook, "", nil, "%s", stage)
	}
	trace.SafeRecord(o.sink, trace.TraceEvent{Kind: trace.EventHookCompleted, Phase: stage})
	return nil
}

// runParallel runs one phase across all rooms on a bounded worker pool and
// waits for every hook to finish. Hook failures are recorded on the room,
// so the group itself never fails.
func (o *Orchestrator) runParallel(ctx context.Context, runs []*roomRun, phase core.Phase) {
	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for _, rr := range runs {
		g.Go(func() error {
			o.runHook(ctx, rr, phase)
			return nil
		})
	}
	_ = g.Wait()
}

// runHook runs the room's hook for phase, if the room is still active and
// has one configured.
func (o *Orchestrator) runHook(ctx context.Context, rr *roomRun, phase core.Phase) {
	room := rr.room
	cmd, ok := room.Hooks.Get(phase)
	if !ok || !room.ShouldBuild() {
		return
	}
	if room.Errored() {
		rr.hooks[phase] = HookSkipped
		trace.SafeRecord(o.sink, trace.TraceEvent{
			Kind:   trace.EventHookSkipped,
			Room:   room.Name,
			Phase:  string(phase),
			Reason: "room errored",
		})
		return
	}

	o.reporter.Started(room.Name)
	if o.runner.Run(ctx, room.Path, cmd, room.Name) {
		rr.hooks[phase] = HookCompleted
		trace.SafeRecord(o.sink, trace.TraceEvent{Kind: trace.EventHookCompleted, Room: room.Name, Phase: string(phase)})
		return
	}
	room.MarkErrored()
	rr.hooks[phase] = HookFailed
	trace.SafeRecord(o.sink, trace.TraceEvent{Kind: trace.EventHookFailed, Room: room.Name, Phase: string(phase)})
	slogctx.FromCtx(ctx).DebugContext(ctx, "room errored",
		slog.String("room", room.Name),
		slog.String("phase", string(phase)))
}

// commit persists the fingerprint of every room that did not error.
// A write failure is fatal and stops at the first failing room.
func (o *Orchestrator) commit(ctx context.Context, runs []*roomRun) error {
	for _, rr := range runs {
		room := rr.room
		if room.Errored() {
			trace.SafeRecord(o.sink, trace.TraceEvent{
				Kind:   trace.EventFingerprintWithheld,
				Room:   room.Name,
				Phase:  trace.StageCommit,
				Reason: "room errored",
			})
			continue
		}
		if err := room.Commit(o.cache); err != nil {
			return &FatalError{Kind: ErrCommit, Room: room.Name, Err: err}
		}
		rr.committed = true
		trace.SafeRecord(o.sink, trace.TraceEvent{Kind: trace.EventFingerprintCommitted, Room: room.Name, Phase: trace.StageCommit})
	}
	slogctx.FromCtx(ctx).DebugContext(ctx, "fingerprints committed")
	return nil
}

func (o *Orchestrator) result(runs []*roomRun, upToDate, dryRun bool) *Result {
	res := &Result{UpToDate: upToDate, DryRun: dryRun}
	for _, rr := range runs {
		room := rr.room
		res.Rooms = append(res.Rooms, RoomResult{
			Name:        room.Name,
			Path:        room.Path,
			Decision:    room.Decision(),
			ShouldBuild: room.ShouldBuild(),
			Errored:     room.Errored(),
			Committed:   rr.committed,
			Files:       room.LatestFingerprint().Files(),
			Hooks:       rr.hooks,
		})
		if room.ShouldBuild() {
			res.Changed = append(res.Changed, room.Name)
		}
	}
	return res
}

func changedNames(runs []*roomRun) []string {
	var out []string
	for _, rr := range runs {
		if rr.room.ShouldBuild() {
			out = append(out, rr.room.Name)
		}
	}
	return out
}

// anyConfigured reports whether some selected room has a hook for phase.
// Phases nobody uses print no banner.
func anyConfigured(runs []*roomRun, phase core.Phase) bool {
	for _, rr := range runs {
		if _, ok := rr.room.Hooks.Get(phase); ok && rr.room.ShouldBuild() {
			return true
		}
	}
	return false
}
