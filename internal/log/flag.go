// Package log configures the diagnostic logger from command-line flags.
package log

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	slogctx "github.com/veqryn/slog-context"
)

const (
	FlagLevel  = "loglevel"
	FlagFormat = "logformat"
)

// RegisterLoggingFlags adds --loglevel and --logformat to cmd and all of its
// subcommands.
func RegisterLoggingFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(FlagLevel, "warn", "set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String(FlagFormat, "text", "set the log format (text, json)")
}

// GetBaseLogger builds the logger selected by the flags. It writes to the
// command's error stream so diagnostics never mix with progress output.
func GetBaseLogger(cmd *cobra.Command) (*slog.Logger, error) {
	level, err := GetLoggerLevel(cmd)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format := flagValue(cmd, FlagFormat, "text"); format {
	case "json":
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	case "text":
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), opts)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	return slog.New(slogctx.NewHandler(handler, nil)), nil
}

// GetLoggerLevel parses --loglevel.
func GetLoggerLevel(cmd *cobra.Command) (slog.Level, error) {
	switch lvl := strings.ToLower(flagValue(cmd, FlagLevel, "warn")); lvl {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelWarn, fmt.Errorf("invalid log level: %s", lvl)
	}
}

func flagValue(cmd *cobra.Command, name, def string) string {
	f := cmd.Flag(name)
	if f == nil {
		return def
	}
	return f.Value.String()
}
