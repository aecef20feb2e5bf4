package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	slogctx "github.com/veqryn/slog-context"

	"roomservice/internal/log"
)

// Version is set at link time.
var Version = ""

// New builds the roomservice command tree. The outcome of whichever command
// runs is stored in res.
func New(res *CLIResult) *cobra.Command {
	inv := &Invocation{}
	cmd := &cobra.Command{
		Use:   "roomservice",
		Short: "Incrementally build the rooms of a project",
		Long: `roomservice fingerprints every room declared in roomservice.config.yml
and runs the configured hooks only for rooms whose files changed since the
last successful build.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, *inv, res)
		},
		PersistentPreRunE: setupLogger,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	cmd.SetFlagErrorFunc(flagError)
	log.RegisterLoggingFlags(cmd)
	bindBuildFlags(cmd.Flags(), inv)

	cmd.AddCommand(newBuildCommand(res))
	cmd.AddCommand(newStatusCommand(res))
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func newBuildCommand(res *CLIResult) *cobra.Command {
	inv := &Invocation{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the hooks of every changed room (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd, *inv, res)
		},
	}
	cmd.SetFlagErrorFunc(flagError)
	bindBuildFlags(cmd.Flags(), inv)
	return cmd
}

func newStatusCommand(res *CLIResult) *cobra.Command {
	inv := &Invocation{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which rooms would build, without running anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := Status(cmd.Context(), *inv, cmd.OutOrStdout())
			*res = r
			return err
		},
	}
	cmd.SetFlagErrorFunc(flagError)
	bindSelectionFlags(cmd.Flags(), inv)
	cmd.Flags().BoolVar(&inv.Force, "force", false, "report every room as changed")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the roomservice version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version())
			return err
		},
	}
}

func bindSelectionFlags(fs *pflag.FlagSet, inv *Invocation) {
	fs.StringVarP(&inv.Project, "project", "p", ".", "project directory or path to roomservice.config.yml")
	fs.StringVar(&inv.CacheDir, "cache-dir", "", "fingerprint cache directory (default <config dir>/.roomservice)")
	fs.StringSliceVar(&inv.Only, "only", nil, "only consider the named rooms")
	fs.StringSliceVar(&inv.Ignore, "ignore", nil, "skip the named rooms")
	fs.IntVar(&inv.Concurrency, "concurrency", 0, "maximum parallel hooks (default number of CPUs)")
}

func bindBuildFlags(fs *pflag.FlagSet, inv *Invocation) {
	bindSelectionFlags(fs, inv)
	fs.BoolVar(&inv.Force, "force", false, "build every room regardless of changes")
	fs.BoolVar(&inv.DryRun, "dry", false, "report changed rooms and stop")
	fs.BoolVar(&inv.DumpScope, "dump-scope", false, "write the fingerprinted file list of each room to <name>")
	fs.BoolVar(&inv.UpdateOnly, "update-hashes", false, "record current fingerprints without running any hook")
	fs.BoolVar(&inv.WarnOnly, "warn-only", false, "exit 0 even if some rooms failed")
	fs.StringVar(&inv.TracePath, "trace", "", "write the canonical JSON trace of the run to this file")
}

func runBuild(cmd *cobra.Command, inv Invocation, res *CLIResult) error {
	r, err := Execute(cmd.Context(), inv, cmd.OutOrStdout())
	*res = r
	return err
}

func setupLogger(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return invalidInvocationf("%v", err)
	}
	cmd.SetContext(slogctx.NewCtx(cmd.Context(), logger))
	return nil
}

func flagError(_ *cobra.Command, err error) error {
	return invalidInvocationf("%v", err)
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
