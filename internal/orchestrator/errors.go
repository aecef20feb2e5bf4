package orchestrator

import (
	"errors"
	"fmt"
)

var (
	ErrRoomPath    = errors.New("room path does not exist")
	ErrInvalidRoom = errors.New("invalid room")
	ErrCacheDir    = errors.New("unable to create cache directory")
	ErrFingerprint = errors.New("unable to fingerprint room")
	ErrGlobalHook  = errors.New("global hook failed")
	ErrCommit      = errors.New("unable to write fingerprint cache")
	ErrCancelled   = errors.New("run cancelled")
)

// FatalError aborts a whole invocation.
//
// Kind is one of the sentinel errors above; errors.Is matches both Kind and
// the wrapped cause.
type FatalError struct {
	Kind error
	Room string
	Msg  string
	Err  error
}

func (e *FatalError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Room != "" {
		msg = fmt.Sprintf("%s: room %q", msg, e.Room)
	}
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *FatalError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func fatalf(kind error, room string, cause error, format string, args ...any) error {
	return &FatalError{Kind: kind, Room: room, Msg: fmt.Sprintf(format, args...), Err: cause}
}
