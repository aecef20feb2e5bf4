package report

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"roomservice/internal/core"
	"roomservice/internal/orchestrator"
)

// Status labels shown in the state column.
const (
	StateChanged  = "changed"
	StateUpToDate = "up to date"
	StateErrored  = "errored"
)

// RoomState returns the human-readable state of a room after a run.
func RoomState(rr orchestrator.RoomResult) string {
	switch {
	case rr.Errored:
		return StateErrored
	case rr.ShouldBuild:
		return StateChanged
	default:
		return StateUpToDate
	}
}

// StatusTable renders one row per room: name, path, state, decision, file
// count and the configured hook phases.
func StatusTable(w io.Writer, res *orchestrator.Result, specs []core.RoomSpec) {
	hooks := make(map[string][]string, len(specs))
	for _, s := range specs {
		for _, p := range s.Hooks.Configured() {
			hooks[s.Name] = append(hooks[s.Name], string(p))
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Room", "Path", "State", "Reason", "Files", "Hooks"})
	for _, rr := range res.Rooms {
		t.AppendRow(table.Row{
			rr.Name,
			rr.Path,
			RoomState(rr),
			string(rr.Decision),
			rr.Files,
			strings.Join(hooks[rr.Name], ", "),
		})
	}

	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}
