package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrPathNotFound is returned when a room's path does not exist at registration.
	ErrPathNotFound = errors.New("room path does not exist")

	// ErrRoomErrored is returned when committing a room that failed a hook this run.
	ErrRoomErrored = errors.New("room is errored")

	// ErrNotEvaluated is returned when committing a room that was never fingerprinted.
	ErrNotEvaluated = errors.New("room has not been evaluated")
)

// RoomSpec is the immutable description of a room as supplied by configuration.
type RoomSpec struct {
	// Name is the room's key. It names the cache file and the dump-scope file.
	// Uniqueness is the caller's responsibility.
	Name string `yaml:"name" json:"name"`

	// Path is the room's source directory. Relative paths are resolved against
	// the project directory passed to NewRoom.
	Path string `yaml:"path" json:"path"`

	// Include is a glob matched against slash-separated paths relative to the
	// room root. Empty or "**" includes every file.
	Include string `yaml:"include,omitempty" json:"include,omitempty"`

	// IgnoreFile optionally points at a newline-delimited list of extra ignore
	// globs applied on top of the ignore files found in the tree.
	IgnoreFile string `yaml:"ignoreFile,omitempty" json:"ignoreFile,omitempty"`

	Hooks Hooks `yaml:",inline" json:"hooks"`
}

// Decision records why a room was or was not selected for building.
type Decision string

const (
	DecisionPending    Decision = "pending"
	DecisionForced     Decision = "forced"
	DecisionFirstBuild Decision = "first-build"
	DecisionChanged    Decision = "changed"
	DecisionUnchanged  Decision = "unchanged"
)

// Room is the runtime state of one registered room for a single invocation.
//
// The mutable fields are only touched by whichever worker is processing the
// room in the current phase; Room carries no lock of its own.
type Room struct {
	RoomSpec

	shouldBuild       bool
	latestFingerprint Fingerprint
	evaluated         bool
	decision          Decision
	errored           bool
}

// NewRoom validates spec and returns a Room with a canonical absolute path.
//
// projectDir anchors relative Path and IgnoreFile values; it may be empty, in
// which case the process working directory is used.
func NewRoom(spec RoomSpec, projectDir string) (*Room, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("room name is required")
	}

	p := spec.Path
	if !filepath.IsAbs(p) {
		p = filepath.Join(projectDir, p)
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: room %q at %q", ErrPathNotFound, spec.Name, spec.Path)
		}
		return nil, fmt.Errorf("stat room %q: %w", spec.Name, err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, fmt.Errorf("resolving room %q path: %w", spec.Name, err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving room %q path: %w", spec.Name, err)
	}
	spec.Path = canonical

	if spec.IgnoreFile != "" && !filepath.IsAbs(spec.IgnoreFile) {
		spec.IgnoreFile = filepath.Join(projectDir, spec.IgnoreFile)
	}

	return &Room{RoomSpec: spec, decision: DecisionPending}, nil
}

// Evaluate fingerprints the room and decides whether it should build.
//
// The fresh fingerprint is always stored on the room so that a later Commit
// persists what was actually built, even when force short-circuits the
// comparison.
func (r *Room) Evaluate(fp *Fingerprinter, cache FingerprintCache, force, dumpScope bool) (Decision, error) {
	current, err := fp.Compute(r, dumpScope)
	if err != nil {
		return DecisionPending, fmt.Errorf("fingerprinting room %q: %w", r.Name, err)
	}
	r.latestFingerprint = current
	r.evaluated = true

	switch prev, ok := cache.Previous(r.Name); {
	case force:
		r.decision = DecisionForced
	case !ok:
		r.decision = DecisionFirstBuild
	case prev == current:
		r.decision = DecisionUnchanged
	default:
		r.decision = DecisionChanged
	}
	r.shouldBuild = r.decision != DecisionUnchanged
	return r.decision, nil
}

// ShouldBuild reports the result of the last Evaluate.
func (r *Room) ShouldBuild() bool { return r.shouldBuild }

// Decision reports why the last Evaluate selected or skipped the room.
func (r *Room) Decision() Decision { return r.decision }

// LatestFingerprint returns the fingerprint computed by the last Evaluate.
func (r *Room) LatestFingerprint() Fingerprint { return r.latestFingerprint }

// Errored reports whether a hook failed for this room during the run.
func (r *Room) Errored() bool { return r.errored }

// MarkErrored flags the room as failed. It cannot be undone for the run.
func (r *Room) MarkErrored() { r.errored = true }

// Active reports whether the room still takes part in hook phases.
func (r *Room) Active() bool { return r.shouldBuild && !r.errored }

// Reset clears the per-run state so the room can take part in another run.
func (r *Room) Reset() {
	r.shouldBuild = false
	r.latestFingerprint = ""
	r.evaluated = false
	r.decision = DecisionPending
	r.errored = false
}

// Commit persists the latest fingerprint to cache.
func (r *Room) Commit(cache FingerprintCache) error {
	if r.errored {
		return fmt.Errorf("committing room %q: %w", r.Name, ErrRoomErrored)
	}
	if !r.evaluated {
		return fmt.Errorf("committing room %q: %w", r.Name, ErrNotEvaluated)
	}
	return cache.Commit(r.Name, r.latestFingerprint)
}
