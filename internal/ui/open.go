package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/iqview/internal/media"
	"github.com/olivier-w/iqview/internal/util"
)

type fileItem struct {
	name   string
	format media.Format
	size   int64
}

func (i fileItem) Title() string { return i.name }
func (i fileItem) Description() string {
	return fmt.Sprintf("%s  %s", i.format, formatBytes(i.size))
}
func (i fileItem) FilterValue() string { return i.name }

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// signalTypes is the cycle order of the type selector.
var signalTypes = []media.Format{media.FormatUnknown, media.FormatFloat32, media.FormatComplex64}

func typeLabel(f media.Format) string {
	if f == media.FormatUnknown {
		return "auto"
	}
	return f.String()
}

// openRequestMsg asks the viewer to start loading a file.
type openRequestMsg struct {
	path       string
	sampleRate float64
	format     media.Format
}

// openCancelMsg closes the dialog and abandons any load in flight.
type openCancelMsg struct{}

type openFocus uint8

const (
	focusFiles openFocus = iota
	focusRate
)

// OpenDialog lists capture files in a directory and collects the sample
// rate and type to load them with.
type OpenDialog struct {
	dir     string
	list    list.Model
	rate    textinput.Model
	spinner spinner.Model
	typeIdx int
	focus   openFocus
	loading string // file being loaded, empty when idle
	err     string
}

// NewOpenDialog scans dir for candidate files.
func NewOpenDialog(dir string, sampleRate float64, format media.Format) OpenDialog {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#FFFFFF"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	l := list.New(nil, delegate, 60, 14)
	l.Title = "Open capture"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = headerStyle

	ti := textinput.New()
	ti.Prompt = "sample rate: "
	ti.Placeholder = "2M"
	ti.CharLimit = 32
	ti.Width = 20
	ti.SetValue(util.FormatHz(sampleRate))

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#555555", Dark: "#AAAAAA"})

	d := OpenDialog{dir: dir, list: l, rate: ti, spinner: s}
	for i, f := range signalTypes {
		if f == format {
			d.typeIdx = i
		}
	}
	d.Rescan()
	return d
}

// Rescan reloads the file list from disk.
func (d *OpenDialog) Rescan() {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		d.err = fmt.Sprintf("cannot read directory: %v", err)
		d.list.SetItems(nil)
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() || !media.IsCandidate(e.Name()) {
			continue
		}
		var size int64
		if info, err := e.Info(); err == nil {
			size = info.Size()
		}
		items = append(items, fileItem{name: e.Name(), format: media.DetectFormat(e.Name()), size: size})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].(fileItem).name < items[j].(fileItem).name
	})
	d.list.SetItems(items)
}

// Format is the selected signal type; FormatUnknown means by extension.
func (d OpenDialog) Format() media.Format { return signalTypes[d.typeIdx] }

// Loading reports whether a load started from the dialog is in flight.
func (d OpenDialog) Loading() bool { return d.loading != "" }

// StartLoading switches the dialog to its busy state.
func (d *OpenDialog) StartLoading(path string) tea.Cmd {
	d.loading = path
	d.err = ""
	return d.spinner.Tick
}

// Fail records a load error; the dialog stays open.
func (d *OpenDialog) Fail(err error) {
	d.loading = ""
	d.err = err.Error()
}

// Done clears the busy state.
func (d *OpenDialog) Done() {
	d.loading = ""
	d.err = ""
}

func (d OpenDialog) SetSize(width, height int) OpenDialog {
	d.list.SetWidth(max(width-4, 20))
	d.list.SetHeight(max(height-8, 4))
	return d
}

func (d OpenDialog) Update(msg tea.Msg) (OpenDialog, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !d.Loading() {
			return d, nil
		}
		var cmd tea.Cmd
		d.spinner, cmd = d.spinner.Update(msg)
		return d, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return d, func() tea.Msg { return openCancelMsg{} }
		case "tab", "shift+tab":
			if d.focus == focusFiles {
				d.focus = focusRate
				return d, d.rate.Focus()
			}
			d.focus = focusFiles
			d.rate.Blur()
			return d, nil
		case "ctrl+t":
			d.typeIdx = (d.typeIdx + 1) % len(signalTypes)
			return d, nil
		case "enter":
			return d.submit()
		}
		if d.Loading() {
			return d, nil
		}
		if d.focus == focusRate {
			var cmd tea.Cmd
			d.rate, cmd = d.rate.Update(msg)
			return d, cmd
		}
		if msg.String() == "t" {
			d.typeIdx = (d.typeIdx + 1) % len(signalTypes)
			return d, nil
		}
	}

	var cmd tea.Cmd
	d.list, cmd = d.list.Update(msg)
	return d, cmd
}

func (d OpenDialog) submit() (OpenDialog, tea.Cmd) {
	if d.Loading() {
		return d, nil
	}
	item, ok := d.list.SelectedItem().(fileItem)
	if !ok {
		d.err = "no file selected"
		return d, nil
	}
	rate, err := util.ParseHz(d.rate.Value())
	if err != nil {
		d.err = err.Error()
		return d, nil
	}
	req := openRequestMsg{
		path:       filepath.Join(d.dir, item.name),
		sampleRate: rate,
		format:     d.Format(),
	}
	return d, func() tea.Msg { return req }
}

func (d OpenDialog) View() string {
	var b strings.Builder
	b.WriteString(d.list.View())
	b.WriteString("\n\n")
	b.WriteString(d.rate.View())
	b.WriteString("   ")
	b.WriteString(statusStyle.Render("type: "))
	b.WriteString(valueStyle.Render(typeLabel(d.Format())))
	b.WriteString("\n")
	switch {
	case d.Loading():
		b.WriteString(d.spinner.View() + " " + statusStyle.Render("loading "+filepath.Base(d.loading)))
	case d.err != "":
		b.WriteString(errorStyle.Render(d.err))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ select  tab rate  t/ctrl+t type  enter open  esc close"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("formats: " + media.SupportedExtsList()))
	return dialogStyle.Render(b.String())
}
