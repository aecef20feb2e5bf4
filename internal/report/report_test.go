package report

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"roomservice/internal/core"
	"roomservice/internal/orchestrator"
)

func TestConsole_Lines(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Phase("Executing Before")
	c.Started("api")
	c.Completed("api")
	c.Failed("web", []byte("boom"))
	c.Changed([]string{"api", "web"})
	c.UpToDate()
	c.Warn("Errors occurred during roomservice")

	assert.Equal(t, strings.Join([]string{
		"",
		"Executing Before",
		"[Starting] ==> api",
		"[Completed] ==> api",
		"[Error] ==> web",
		"boom",
		"The following rooms have changed:",
		"==> api",
		"==> web",
		"All rooms appear to be up to date!",
		"",
		"Errors occurred during roomservice",
		"",
	}, "\n"), buf.String())
}

func TestConsole_ConcurrentLinesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Failed("room", []byte("line one\nline two\n"))
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 150)
	for i := 0; i < len(lines); i += 3 {
		assert.Equal(t, []string{"[Error] ==> room", "line one", "line two"}, lines[i:i+3])
	}
}

func TestStatusTable(t *testing.T) {
	res := &orchestrator.Result{Rooms: []orchestrator.RoomResult{
		{Name: "api", Path: "/p/api", Decision: core.DecisionChanged, ShouldBuild: true, Files: 3},
		{Name: "web", Path: "/p/web", Decision: core.DecisionUnchanged, Files: 7},
	}}
	specs := []core.RoomSpec{
		{Name: "api", Hooks: core.Hooks{Before: "a", RunParallel: "b"}},
		{Name: "web"},
	}

	var buf bytes.Buffer
	StatusTable(&buf, res, specs)
	out := buf.String()

	assert.Contains(t, out, "ROOM")
	assert.Contains(t, out, "before, runParallel")
	assert.Contains(t, out, StateChanged)
	assert.Contains(t, out, StateUpToDate)
	assert.Contains(t, out, "/p/web")
}

func TestRoomState(t *testing.T) {
	assert.Equal(t, StateErrored, RoomState(orchestrator.RoomResult{ShouldBuild: true, Errored: true}))
	assert.Equal(t, StateChanged, RoomState(orchestrator.RoomResult{ShouldBuild: true}))
	assert.Equal(t, StateUpToDate, RoomState(orchestrator.RoomResult{}))
}
