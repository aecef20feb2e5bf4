package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// DefaultShell interprets hook command strings.
const DefaultShell = "sh"

// ExecutionResult contains the captured outcome of one command.
type ExecutionResult struct {
	// Stdout is the captured standard output.
	Stdout []byte

	// Stderr is the captured standard error.
	Stderr []byte

	// ExitCode is the process exit code.
	// 0 indicates success, non-zero indicates failure.
	ExitCode int
}

// Output returns stdout followed by stderr, separated by a newline.
func (r *ExecutionResult) Output() []byte {
	if r == nil {
		return nil
	}
	out := make([]byte, 0, len(r.Stdout)+len(r.Stderr)+1)
	out = append(out, r.Stdout...)
	if len(r.Stdout) > 0 && len(r.Stderr) > 0 && !bytes.HasSuffix(r.Stdout, []byte("\n")) {
		out = append(out, '\n')
	}
	out = append(out, r.Stderr...)
	return out
}

// Executor runs shell command strings with captured output.
//
// Output is buffered, not streamed: callers see it once the process exits.
// The child inherits the parent's environment.
type Executor struct {
	// Shell is the interpreter invoked as `Shell -c command`.
	Shell string
}

// NewExecutor creates an Executor using DefaultShell.
func NewExecutor() *Executor {
	return &Executor{Shell: DefaultShell}
}

// Execute runs command in dir and blocks until it exits.
//
// A non-zero exit is reported through ExecutionResult.ExitCode with a nil
// error. A non-nil error means the process could not be run at all.
// Cancelling ctx kills the whole process group.
func (e *Executor) Execute(ctx context.Context, dir, command string) (*ExecutionResult, error) {
	if command == "" {
		return nil, fmt.Errorf("command is empty")
	}
	shell := e.Shell
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.Command(shell, "-c", command)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	// Own process group so cancellation reaches grandchildren too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start command: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
	case err = <-done:
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("failed to execute command: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &ExecutionResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}
