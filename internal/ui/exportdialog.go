package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/iqview/internal/series"
	"github.com/olivier-w/iqview/internal/signal"
)

type exportRequestMsg struct{ path string }
type exportCancelMsg struct{}

// ExportDialog asks where to write the visible range.
type ExportDialog struct {
	input textinput.Model
	r     series.Range
	err   string
}

// defaultExportName derives "<base>_<start>-<end>.<ext>" from the source.
func defaultExportName(source string, kind signal.Kind, r series.Range) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "export"
	}
	ext := ".f32"
	if kind == signal.Complex {
		ext = ".cf32"
	}
	return fmt.Sprintf("%s_%d-%d%s", base, r.Start, r.End, ext)
}

func NewExportDialog(source string, kind signal.Kind, r series.Range) ExportDialog {
	ti := textinput.New()
	ti.Prompt = "export to: "
	ti.CharLimit = 1024
	ti.Width = 50
	ti.SetValue(defaultExportName(source, kind, r))
	ti.Focus()
	return ExportDialog{input: ti, r: r}
}

func (d *ExportDialog) Fail(err error) { d.err = err.Error() }

func (d ExportDialog) Update(msg tea.Msg) (ExportDialog, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc", "ctrl+c":
			return d, func() tea.Msg { return exportCancelMsg{} }
		case "enter":
			path := strings.TrimSpace(d.input.Value())
			if path == "" {
				d.err = "enter a file name"
				return d, nil
			}
			return d, func() tea.Msg { return exportRequestMsg{path: path} }
		}
	}
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return d, cmd
}

func (d ExportDialog) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Export visible range"))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("samples %d to %d (%d)", d.r.Start, d.r.End, d.r.Len())))
	b.WriteString("\n\n")
	b.WriteString(d.input.View())
	b.WriteString("\n")
	if d.err != "" {
		b.WriteString(errorStyle.Render(d.err))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter save  esc cancel  (metadata is written to <file>.yaml)"))
	return dialogStyle.Render(b.String())
}
