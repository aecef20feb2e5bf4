package cli

import (
	"context"
	"fmt"
	"io"
)

// Run is a high-level CLI entrypoint suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the semantic
// exit code plus any error. Errors are also printed to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) (CLIResult, error) {
	var res CLIResult
	cmd := New(&res)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if res.ExitCode == ExitSuccess {
			res.ExitCode = ExitCode(err)
		}
	}
	return res, err
}
