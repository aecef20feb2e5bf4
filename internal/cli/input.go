package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"roomservice/internal/config"
	"roomservice/internal/orchestrator"
)

const (
	ExitSuccess           = 0
	ExitRoomFailure       = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// Invocation is the fully resolved description of a run, independent of how
// it was parsed.
type Invocation struct {
	// Project is a directory to start config discovery from, or a path to a
	// config file.
	Project string

	// CacheDir overrides <config dir>/.roomservice. Relative paths are
	// resolved against the process working directory.
	CacheDir string

	Force       bool
	DryRun      bool
	DumpScope   bool
	UpdateOnly  bool
	WarnOnly    bool
	Concurrency int

	Only   []string
	Ignore []string

	// TracePath, when set, receives the canonical JSON trace of the run.
	TracePath string
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// Validate rejects contradictory or malformed options.
func (inv Invocation) Validate() error {
	if inv.DryRun && inv.UpdateOnly {
		return invalidInvocationf("--dry and --update-hashes are mutually exclusive")
	}
	if inv.Concurrency < 0 {
		return invalidInvocationf("--concurrency must not be negative (got %d)", inv.Concurrency)
	}
	if len(inv.Only) > 0 && len(inv.Ignore) > 0 {
		for _, o := range inv.Only {
			for _, i := range inv.Ignore {
				if strings.TrimSpace(o) == strings.TrimSpace(i) {
					return invalidInvocationf("room %q is both in --only and --ignore", o)
				}
			}
		}
	}
	return nil
}

func resolveCacheDir(cfg *config.Config, flag string) (string, error) {
	if strings.TrimSpace(flag) == "" {
		return cfg.DefaultCacheDir(), nil
	}
	abs, err := filepath.Abs(flag)
	if err != nil {
		return "", invalidInvocationf("resolving --cache-dir %q: %v", flag, err)
	}
	return abs, nil
}

// ExitCode maps an error returned by Run or Execute to a semantic exit code.
//
// Config problems map to ExitConfigError, fatal run errors to
// ExitInternalError. Anything else is an unrecognised invocation.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInvalidInvocation
	}
	var cfgErr *config.ValidationError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	var fatal *orchestrator.FatalError
	if errors.As(err, &fatal) {
		return ExitInternalError
	}
	return ExitInvalidInvocation
}
