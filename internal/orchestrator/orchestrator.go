package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"roomservice/internal/core"
	"roomservice/internal/trace"
)

// HookRunner runs one hook command and reports whether it succeeded.
//
// label identifies the hook in user-facing output. Implementations report
// their own completed/error lines; *core.Runner is the production one.
type HookRunner interface {
	Run(ctx context.Context, cwd, command, label string) bool
}

// Options configures an Orchestrator.
type Options struct {
	// CacheDir holds one fingerprint file per room. Created if absent.
	CacheDir string

	// ProjectDir anchors relative room paths and is the working directory of
	// the global hooks. Empty means the process working directory.
	ProjectDir string

	// Force selects every room regardless of its fingerprint.
	Force bool

	// Concurrency bounds the worker pool of the parallel phases.
	// Values <= 0 mean runtime.NumCPU().
	Concurrency int

	// ScopeDir receives dump-scope files. Empty means the process working
	// directory.
	ScopeDir string

	// Cache overrides the file cache at CacheDir (tests, embedding).
	Cache core.FingerprintCache

	// Runner overrides the shell runner.
	Runner HookRunner

	// Reporter receives user-facing progress lines. Nil discards them.
	Reporter core.Reporter

	// Trace receives logical events. Nil discards them.
	Trace trace.Sink
}

// Orchestrator owns the registered rooms and global hooks of a project and
// runs the build pipeline over them.
type Orchestrator struct {
	cache         core.FingerprintCache
	fingerprinter *core.Fingerprinter
	runner        HookRunner
	reporter      core.Reporter
	sink          trace.Sink

	projectDir  string
	force       bool
	concurrency int

	beforeAll string
	afterAll  string
	rooms     []*core.Room
}

// New creates an Orchestrator, creating the cache directory if needed.
// Failure to create the cache directory is fatal.
func New(opts Options) (*Orchestrator, error) {
	o := &Orchestrator{
		cache:         opts.Cache,
		fingerprinter: core.NewFingerprinter(opts.ScopeDir),
		runner:        opts.Runner,
		reporter:      opts.Reporter,
		sink:          opts.Trace,
		projectDir:    opts.ProjectDir,
		force:         opts.Force,
		concurrency:   opts.Concurrency,
	}
	if o.cache == nil {
		fc, err := core.NewFileCache(opts.CacheDir)
		if err != nil {
			return nil, &FatalError{Kind: ErrCacheDir, Msg: opts.CacheDir, Err: err}
		}
		o.cache = fc
	}
	if o.reporter == nil {
		o.reporter = core.NopReporter{}
	}
	if o.runner == nil {
		o.runner = core.NewRunner(o.reporter)
	}
	if o.sink == nil {
		o.sink = trace.NopSink{}
	}
	if o.concurrency <= 0 {
		o.concurrency = runtime.NumCPU()
	}
	return o, nil
}

// SetBeforeAll sets the global command run once before any room hook.
func (o *Orchestrator) SetBeforeAll(cmd string) { o.beforeAll = cmd }

// SetAfterAll sets the global command run once after every room hook.
func (o *Orchestrator) SetAfterAll(cmd string) { o.afterAll = cmd }

// AddRoom registers a room. Registration order is the order of every
// sequential phase. A room whose path does not exist is a fatal error.
func (o *Orchestrator) AddRoom(spec core.RoomSpec) error {
	room, err := core.NewRoom(spec, o.projectDir)
	if err != nil {
		if errors.Is(err, core.ErrPathNotFound) {
			return &FatalError{Kind: ErrRoomPath, Room: spec.Name, Msg: fmt.Sprintf("at %q", spec.Path)}
		}
		return &FatalError{Kind: ErrInvalidRoom, Room: spec.Name, Err: err}
	}
	o.rooms = append(o.rooms, room)
	return nil
}

// Rooms returns the registered rooms in registration order.
func (o *Orchestrator) Rooms() []*core.Room {
	out := make([]*core.Room, len(o.rooms))
	copy(out, o.rooms)
	return out
}
