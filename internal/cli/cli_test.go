package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomservice/internal/trace"
)

// project lays out a config with two rooms whose hooks append to a log file
// in the project directory.
func newProject(t *testing.T, apiHook string) string {
	t.Helper()
	dir := t.TempDir()
	for _, room := range []string{"api", "web"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, room), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, room, "main.txt"), []byte(room), 0o644))
	}
	cfg := `beforeAll: echo beforeAll >> hooks.log
afterAll: echo afterAll >> hooks.log
rooms:
  api:
    path: ./api
    runParallel: ` + apiHook + `
  web:
    path: ./web
    before: echo web-before >> ../hooks.log
    runSynchronous: echo web-sync >> ../hooks.log
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roomservice.config.yml"), []byte(cfg), 0o644))
	return dir
}

func run(t *testing.T, args ...string) (CLIResult, string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	res, err := Run(context.Background(), args, &stdout, &stderr)
	return res, stdout.String(), stderr.String(), err
}

func readLog(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "hooks.log"))
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func TestRun_BuildThenUpToDate(t *testing.T) {
	dir := newProject(t, "echo api-run >> ../hooks.log")

	res, out, _, err := run(t, "build", "-p", dir)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
	assert.Contains(t, out, "The following rooms have changed:")
	assert.Contains(t, out, "[Completed] ==> api")
	assert.Equal(t, "beforeAll\nweb-before\napi-run\nweb-sync\nafterAll\n", readLog(t, dir))
	assert.FileExists(t, filepath.Join(dir, ".roomservice", "api"))
	assert.FileExists(t, filepath.Join(dir, ".roomservice", "web"))

	res, out, _, err = run(t, "-p", dir)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
	assert.Contains(t, out, "All rooms appear to be up to date!")
	assert.True(t, res.Result.UpToDate)
}

func TestRun_RoomFailure(t *testing.T) {
	dir := newProject(t, "echo compile error; exit 2")

	res, out, _, err := run(t, "build", "--project", dir)
	require.NoError(t, err)
	assert.Equal(t, ExitRoomFailure, res.ExitCode)
	assert.Contains(t, out, "[Error] ==> api")
	assert.Contains(t, out, "compile error")
	assert.Contains(t, out, "Errors occurred during roomservice")
	assert.NoFileExists(t, filepath.Join(dir, ".roomservice", "api"))
	assert.FileExists(t, filepath.Join(dir, ".roomservice", "web"))

	res, _, _, err = run(t, "build", "--project", dir, "--warn-only")
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
	assert.Equal(t, []string{"api"}, res.Result.Changed)
}

func TestRun_DryRunAndStatus(t *testing.T) {
	dir := newProject(t, "echo api-run >> ../hooks.log")

	res, out, _, err := run(t, "build", "-p", dir, "--dry")
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
	assert.Contains(t, out, "==> api")
	assert.Empty(t, readLog(t, dir))
	assert.NoFileExists(t, filepath.Join(dir, ".roomservice", "api"))

	res, out, _, err = run(t, "status", "-p", dir)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
	assert.Contains(t, out, "changed")
	assert.Contains(t, out, "runParallel")
	assert.Empty(t, readLog(t, dir))
}

func TestRun_UpdateHashesAndFilters(t *testing.T) {
	dir := newProject(t, "echo api-run >> ../hooks.log")

	res, _, _, err := run(t, "build", "-p", dir, "--update-hashes", "--only", "web")
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
	assert.Empty(t, readLog(t, dir))
	assert.FileExists(t, filepath.Join(dir, ".roomservice", "web"))
	assert.NoFileExists(t, filepath.Join(dir, ".roomservice", "api"))

	res, _, _, err = run(t, "build", "-p", dir, "--ignore", "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"api"}, res.Result.Changed)
	assert.Equal(t, "beforeAll\napi-run\nafterAll\n", readLog(t, dir))
}

func TestRun_TraceAndCacheDir(t *testing.T) {
	dir := newProject(t, "true")
	cacheDir := filepath.Join(t.TempDir(), "cache")
	tracePath := filepath.Join(t.TempDir(), "trace.json")

	res, _, _, err := run(t, "build", "-p", dir, "--cache-dir", cacheDir, "--trace", tracePath)
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
	assert.FileExists(t, filepath.Join(cacheDir, "api"))
	assert.NoDirExists(t, filepath.Join(dir, ".roomservice"))

	data, err := os.ReadFile(tracePath)
	require.NoError(t, err)
	var tr trace.ExecutionTrace
	require.NoError(t, json.Unmarshal(data, &tr))
	require.NoError(t, tr.Validate())
	assert.NotEmpty(t, tr.ForRoom("api"))
}

func TestRun_ExitCodes(t *testing.T) {
	dir := newProject(t, "true")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown flag", []string{"build", "--nope"}, ExitInvalidInvocation},
		{"unknown command", []string{"explode"}, ExitInvalidInvocation},
		{"conflicting modes", []string{"build", "-p", dir, "--dry", "--update-hashes"}, ExitInvalidInvocation},
		{"bad log level", []string{"build", "-p", dir, "--loglevel", "loud"}, ExitInvalidInvocation},
		{"missing config", []string{"build", "-p", filepath.Join(dir, "other.yml")}, ExitConfigError},
		{"unknown room", []string{"build", "-p", dir, "--only", "mobile"}, ExitConfigError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, _, stderr, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.want, res.ExitCode)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

func TestRun_FatalErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := "rooms:\n  ghost:\n    path: ./missing\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roomservice.config.yml"), []byte(cfg), 0o644))

	res, _, _, err := run(t, "build", "-p", dir)
	require.Error(t, err)
	assert.Equal(t, ExitInternalError, res.ExitCode)

	broken := newProject(t, "true")
	cfgPath := filepath.Join(broken, "roomservice.config.yml")
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	data = bytes.Replace(data, []byte("echo beforeAll >> hooks.log"), []byte("exit 1"), 1)
	require.NoError(t, os.WriteFile(cfgPath, data, 0o644))

	res, _, _, err = run(t, "build", "-p", broken)
	require.Error(t, err)
	assert.Equal(t, ExitInternalError, res.ExitCode)
	assert.NoFileExists(t, filepath.Join(broken, ".roomservice", "api"))
}

func TestRun_Version(t *testing.T) {
	Version = "v1.2.3"
	defer func() { Version = "" }()

	res, out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, ExitSuccess, res.ExitCode)
	assert.Equal(t, "v1.2.3\n", out)
}
