// Package report renders run progress and room status for humans.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"roomservice/internal/core"
)

const (
	upToDateMsg = "All rooms appear to be up to date!"
	changedMsg  = "The following rooms have changed:"
)

// Console is a core.Reporter that writes progress lines to a terminal.
//
// Colour is only emitted when the writer is a terminal that supports it.
// Each call writes its lines under a single lock so output from parallel
// phases never interleaves mid-line.
type Console struct {
	mu sync.Mutex
	w  io.Writer

	title     lipgloss.Style
	started   lipgloss.Style
	completed lipgloss.Style
	failed    lipgloss.Style
	warn      lipgloss.Style
	name      lipgloss.Style
}

var _ core.Reporter = (*Console)(nil)

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:         w,
		title:     r.NewStyle().Bold(true).Underline(true),
		started:   r.NewStyle().Foreground(lipgloss.Color("12")),
		completed: r.NewStyle().Foreground(lipgloss.Color("10")),
		failed:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		warn:      r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		name:      r.NewStyle().Bold(true),
	}
}

func (c *Console) Phase(title string) {
	c.printf("\n%s\n", c.title.Render(title))
}

func (c *Console) Started(label string) {
	c.printf("%s ==> %s\n", c.started.Render("[Starting]"), c.name.Render(label))
}

func (c *Console) Completed(label string) {
	c.printf("%s ==> %s\n", c.completed.Render("[Completed]"), c.name.Render(label))
}

func (c *Console) Failed(label string, output []byte) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s ==> %s\n", c.failed.Render("[Error]"), c.name.Render(label))
	if len(output) > 0 {
		sb.Write(output)
		if output[len(output)-1] != '\n' {
			sb.WriteByte('\n')
		}
	}
	c.printf("%s", sb.String())
}

func (c *Console) Changed(names []string) {
	var sb strings.Builder
	sb.WriteString(changedMsg)
	sb.WriteByte('\n')
	for _, n := range names {
		fmt.Fprintf(&sb, "==> %s\n", c.name.Render(n))
	}
	c.printf("%s", sb.String())
}

func (c *Console) UpToDate() {
	c.printf("%s\n", c.completed.Render(upToDateMsg))
}

func (c *Console) Warn(msg string) {
	c.printf("\n%s\n", c.warn.Render(msg))
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, format, args...)
}
