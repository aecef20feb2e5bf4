package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(t *testing.T, args ...string) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	var stderr bytes.Buffer
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterLoggingFlags(cmd)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, &stderr
}

func TestGetLoggerLevel(t *testing.T) {
	tests := []struct {
		arg  string
		want slog.Level
		err  bool
	}{
		{"", slog.LevelWarn, false},
		{"--loglevel=debug", slog.LevelDebug, false},
		{"--loglevel=INFO", slog.LevelInfo, false},
		{"--loglevel=error", slog.LevelError, false},
		{"--loglevel=loud", slog.LevelWarn, true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			var args []string
			if tt.arg != "" {
				args = append(args, tt.arg)
			}
			cmd, _ := newCommand(t, args...)
			lvl, err := GetLoggerLevel(cmd)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, lvl)
		})
	}
}

func TestGetBaseLogger_JSONToStderr(t *testing.T) {
	cmd, stderr := newCommand(t, "--loglevel=info", "--logformat=json")
	logger, err := GetBaseLogger(cmd)
	require.NoError(t, err)

	logger.InfoContext(context.Background(), "hello", slog.String("room", "api"))
	assert.Contains(t, stderr.String(), `"msg":"hello"`)
	assert.Contains(t, stderr.String(), `"room":"api"`)

	logger.DebugContext(context.Background(), "hidden")
	assert.NotContains(t, stderr.String(), "hidden")
}

func TestGetBaseLogger_InvalidFormat(t *testing.T) {
	cmd, _ := newCommand(t, "--logformat=xml")
	_, err := GetBaseLogger(cmd)
	assert.Error(t, err)
}
