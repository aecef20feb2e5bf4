package core

import (
	"context"
	"log/slog"
	"time"

	slogctx "github.com/veqryn/slog-context"
)

// Runner runs labelled hook commands and reports their outcome.
//
// It is the success/failure boundary of the pipeline: every way a command can
// go wrong (non-zero exit, shell missing, directory gone) collapses into a
// false return plus an error report carrying whatever output was captured.
type Runner struct {
	// Executor runs the command.
	Executor *Executor

	// Reporter receives the completed/error lines.
	Reporter Reporter
}

// NewRunner creates a Runner with a default Executor.
func NewRunner(reporter Reporter) *Runner {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Runner{Executor: NewExecutor(), Reporter: reporter}
}

// Run executes command in cwd and reports it under label.
// It returns true iff the command exited with status 0.
func (r *Runner) Run(ctx context.Context, cwd, command, label string) bool {
	logger := slogctx.FromCtx(ctx).With(slog.String("label", label), slog.String("cwd", cwd))
	logger.DebugContext(ctx, "running command", slog.String("command", command))

	start := time.Now()
	res, err := r.Executor.Execute(ctx, cwd, command)
	elapsed := time.Since(start)

	if err != nil {
		logger.DebugContext(ctx, "command could not run", slog.String("error", err.Error()))
		r.Reporter.Failed(label, []byte(err.Error()))
		return false
	}
	if res.ExitCode != 0 {
		logger.DebugContext(ctx, "command failed",
			slog.Int("exit-code", res.ExitCode),
			slog.Duration("duration", elapsed))
		r.Reporter.Failed(label, res.Output())
		return false
	}

	logger.DebugContext(ctx, "command completed", slog.Duration("duration", elapsed))
	r.Reporter.Completed(label)
	return true
}
