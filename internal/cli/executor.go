package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	slogctx "github.com/veqryn/slog-context"

	"roomservice/internal/config"
	"roomservice/internal/core"
	"roomservice/internal/orchestrator"
	"roomservice/internal/report"
	"roomservice/internal/trace"
)

// CLIResult is the outcome of an invocation.
type CLIResult struct {
	ExitCode int
	Result   *orchestrator.Result
}

// project is a loaded config with its orchestrator, ready to run.
type project struct {
	cfg      *config.Config
	specs    []core.RoomSpec
	orch     *orchestrator.Orchestrator
	recorder *trace.Recorder
}

// load discovers and parses the config, then registers the selected rooms.
func load(ctx context.Context, inv Invocation, reporter core.Reporter) (*project, error) {
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	path, err := config.Find(inv.Project)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	specs, err := cfg.RoomSpecs(config.Filter{Only: inv.Only, Ignore: inv.Ignore})
	if err != nil {
		return nil, err
	}
	cacheDir, err := resolveCacheDir(cfg, inv.CacheDir)
	if err != nil {
		return nil, err
	}

	slogctx.FromCtx(ctx).DebugContext(ctx, "config loaded",
		slog.String("config", cfg.Path),
		slog.String("cache-dir", cacheDir),
		slog.Int("rooms", len(specs)))

	p := &project{cfg: cfg, specs: specs, recorder: trace.NewRecorder()}
	p.orch, err = orchestrator.New(orchestrator.Options{
		CacheDir:    cacheDir,
		ProjectDir:  cfg.Dir(),
		Force:       inv.Force,
		Concurrency: inv.Concurrency,
		Reporter:    reporter,
		Trace:       p.recorder,
	})
	if err != nil {
		return nil, err
	}
	p.orch.SetBeforeAll(cfg.BeforeAll)
	p.orch.SetAfterAll(cfg.AfterAll)
	for _, spec := range specs {
		if err := p.orch.AddRoom(spec); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Execute runs a resolved invocation, writing progress to out.
//
// Room hook failures yield ExitRoomFailure unless inv.WarnOnly is set.
// Fatal errors, including a panic anywhere in the run, are returned along
// with their exit code.
func Execute(ctx context.Context, inv Invocation, out io.Writer) (res CLIResult, execErr error) {
	res.ExitCode = ExitInternalError
	defer func() {
		if r := recover(); r != nil {
			res = CLIResult{ExitCode: ExitInternalError}
			execErr = fmt.Errorf("panic: %v", r)
		}
	}()

	p, err := load(ctx, inv, report.NewConsole(out))
	if err != nil {
		return CLIResult{ExitCode: ExitCode(err)}, err
	}

	result, runErr := p.orch.Exec(ctx, orchestrator.ExecOptions{
		DryRun:     inv.DryRun,
		DumpScope:  inv.DumpScope,
		UpdateOnly: inv.UpdateOnly,
	})
	res.Result = result

	if inv.TracePath != "" {
		if err := p.recorder.WriteFile(inv.TracePath); err != nil {
			runErr = errors.Join(runErr, err)
		}
	}
	if runErr != nil {
		res.ExitCode = ExitInternalError
		return res, runErr
	}

	res.ExitCode = ExitSuccess
	if !result.OK() && !inv.WarnOnly {
		res.ExitCode = ExitRoomFailure
	}
	return res, nil
}

// Status diffs every selected room without running anything and renders the
// result as a table on out.
func Status(ctx context.Context, inv Invocation, out io.Writer) (CLIResult, error) {
	inv.DryRun = true
	inv.UpdateOnly = false
	p, err := load(ctx, inv, core.NopReporter{})
	if err != nil {
		return CLIResult{ExitCode: ExitCode(err)}, err
	}
	result, err := p.orch.Exec(ctx, orchestrator.ExecOptions{DryRun: true})
	if err != nil {
		return CLIResult{ExitCode: ExitInternalError}, err
	}
	report.StatusTable(out, result, p.specs)
	return CLIResult{ExitCode: ExitSuccess, Result: result}, nil
}
