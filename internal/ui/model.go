package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/iqview/internal/config"
	"github.com/olivier-w/iqview/internal/export"
	"github.com/olivier-w/iqview/internal/player"
	"github.com/olivier-w/iqview/internal/plot"
	"github.com/olivier-w/iqview/internal/signal"
	"github.com/olivier-w/iqview/internal/spectral"
	"github.com/olivier-w/iqview/internal/util"
	"github.com/olivier-w/iqview/internal/viewport"
	"go.uber.org/zap"
)

type dialogKind uint8

const (
	dialogNone dialogKind = iota
	dialogOpen
	dialogExport
)

const (
	headerRows = 1
	footerRows = 2

	// maxPSDSamples caps the window handed to the spectrum estimator.
	maxPSDSamples = 1 << 22
	// defaultStatusTTL applies when view.status_ttl is unset.
	defaultStatusTTL = 5 * time.Second
)

// Options configures the viewer.
type Options struct {
	Config config.Config
	Logger *zap.Logger
	// Path is loaded at startup when set.
	Path string
	// Dir is the directory the open dialog lists.
	Dir string
}

// Model is the Bubbletea model for the signal viewer.
type Model struct {
	cfg config.Config
	log *zap.Logger
	dir string

	view       *viewport.Controller
	sig        *signal.Signal
	path       string
	sampleRate float64
	dropped    int
	magnitude  bool
	timeAxis   bool
	traces     []plot.Series

	pending *signal.Pending
	ticking bool

	mouse     mouseTracker
	lastInput viewport.Input

	dialog dialogKind
	open   OpenDialog
	export ExportDialog

	psd     psdPanel
	psdBusy bool

	player        *player.Player
	auditionDone  <-chan struct{}
	auditionLen   time.Duration

	width, height int
	quitting      bool

	statusMsg  string
	statusErr  bool
	statusTime time.Time
}

// New creates the viewer. Nothing is loaded until Init.
func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	return Model{
		cfg:        opts.Config,
		log:        log,
		dir:        dir,
		path:       opts.Path,
		view:       viewport.New(opts.Config.SampleRate),
		sampleRate: opts.Config.SampleRate,
		timeAxis:   true,
		psd:        newPSDPanel(),
		player:     player.New(opts.Config.Audio.Rate, opts.Config.Audio.Volume),
		width:      80,
		height:     24,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle(windowTitle(""))}
	if m.path != "" {
		cmds = append(cmds, func() tea.Msg {
			return openRequestMsg{path: m.path, sampleRate: m.cfg.SampleRate, format: m.cfg.Format()}
		})
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m.handleMsg(msg)
}

func (m Model) handleMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.dialog == dialogOpen {
			m.open = m.open.SetSize(m.width, m.bodyHeight())
		}
		m.refresh()
		return m, nil

	case frameMsg:
		return m.handleFrame()

	case openRequestMsg:
		return m, m.startLoad(msg)

	case openCancelMsg:
		if m.pending != nil {
			m.pending.Cancel()
			m.pending = nil
		}
		m.open.Done()
		m.dialog = dialogNone
		return m, nil

	case exportRequestMsg:
		return m, m.exportCmd(msg.path)

	case exportCancelMsg:
		m.dialog = dialogNone
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.log.Warn("export failed", zap.String("path", msg.path), zap.Error(msg.err))
			if m.dialog == dialogExport {
				m.export.Fail(msg.err)
				return m, nil
			}
			m.setStatus(fmt.Sprintf("export failed: %v", msg.err), true)
			return m, nil
		}
		m.log.Info("exported window",
			zap.String("path", msg.path),
			zap.Int("start", msg.meta.Start),
			zap.Int("end", msg.meta.End))
		m.dialog = dialogNone
		m.setStatus(fmt.Sprintf("exported %d samples to %s", msg.meta.Samples, msg.path), false)
		return m, nil

	case psdDoneMsg:
		m.psdBusy = false
		m.psd.set(msg.result, msg.r, msg.limited)
		m.refresh()
		m.log.Info("psd computed",
			zap.Int("start", msg.r.Start),
			zap.Int("end", msg.r.End),
			zap.Int("segments", msg.result.Segments),
			zap.Bool("limited", msg.limited),
			zap.Duration("elapsed", msg.elapsed))
		return m, m.ensureTicking()

	case auditionMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("audition failed: %v", msg.err), true)
			return m, nil
		}
		m.auditionDone = msg.done
		m.auditionLen = msg.length
		return m, tea.Batch(waitAudition(msg.done), m.ensureTicking())

	case auditionEndedMsg:
		if msg.done == m.auditionDone {
			m.auditionDone = nil
		}
		return m, nil

	case spinner.TickMsg:
		if m.dialog == dialogOpen {
			var cmd tea.Cmd
			m.open, cmd = m.open.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.MouseMsg:
		if m.dialog != dialogNone {
			return m, nil
		}
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		switch m.dialog {
		case dialogOpen:
			var cmd tea.Cmd
			m.open, cmd = m.open.Update(msg)
			return m, cmd
		case dialogExport:
			var cmd tea.Cmd
			m.export, cmd = m.export.Update(msg)
			return m, cmd
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	if m.pending != nil {
		m.pending.Cancel()
	}
	m.player.Stop()
	return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if isQuit(msg) {
		return m.quit()
	}
	switch msg.String() {
	case "o":
		m.open = NewOpenDialog(m.dir, m.sampleRate, m.cfg.Format()).SetSize(m.width, m.bodyHeight())
		m.dialog = dialogOpen
		return m, nil
	case "t":
		m.timeAxis = !m.timeAxis
		return m, nil
	}

	if !m.view.HasSignal() {
		return m, nil
	}
	b := m.view.Bounds()
	switch msg.String() {
	case "e":
		r := m.view.VisibleRange()
		if r.Empty() {
			return m, nil
		}
		m.export = NewExportDialog(m.path, m.sig.Kind(), r)
		m.dialog = dialogExport
		return m, nil
	case "p":
		if m.psd.visible {
			m.psd.visible = false
			m.refresh()
			return m, nil
		}
		return m, m.psdCmd()
	case "m":
		if m.sig.Kind() == signal.Complex && m.sig.HasMagnitude() {
			m.magnitude = !m.magnitude
		}
	case "a":
		if m.auditionDone != nil {
			m.player.Stop()
			m.auditionDone = nil
			return m, nil
		}
		return m, m.auditionCmd()
	case "[":
		m.player.SetVolume(m.player.Volume() - 0.05)
		return m, nil
	case "]":
		m.player.SetVolume(m.player.Volume() + 0.05)
		return m, nil
	case "esc":
		m.view.ClearMeasurement()
	case "r", "home":
		m.view.ResetView()
	case "u", "backspace":
		m.view.ReturnView()
	case "left", "h":
		m.view.PushZoom(b)
		m.view.Pan(-keyPanStep)
	case "right", "l":
		m.view.PushZoom(b)
		m.view.Pan(keyPanStep)
	case "+", "=":
		m.view.PushZoom(b)
		m.view.ZoomX(keyZoomStep, 0.5)
	case "-", "_":
		m.view.PushZoom(b)
		m.view.ZoomX(1/keyZoomStep, 0.5)
	case "shift+up", "K":
		m.view.PushZoom(b)
		m.view.ZoomY(keyZoomStep, 0.5)
	case "shift+down", "J":
		m.view.PushZoom(b)
		m.view.ZoomY(1/keyZoomStep, 0.5)
	default:
		return m, nil
	}
	m.view.Frame(viewport.Input{})
	m.refresh()
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	area := plot.Layout(m.width, m.plotHeight())
	ins := m.mouse.snapshots(msg, area, msg.X, msg.Y-headerRows)
	if len(ins) == 0 {
		return
	}
	for _, in := range ins {
		m.view.Frame(in)
		m.lastInput = in
	}
	m.refresh()
}

// ensureTicking starts the frame loop unless it is already running.
func (m *Model) ensureTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return frameCmd()
}

func (m Model) handleFrame() (Model, tea.Cmd) {
	m.ticking = false
	var cmd tea.Cmd
	if m.pending != nil {
		if out, ok := m.pending.Poll(); ok {
			m.pending = nil
			cmd = m.finishLoad(out)
		}
	}
	animating := m.psd.step()
	if m.pending != nil || animating || m.auditionDone != nil {
		return m, tea.Batch(cmd, m.ensureTicking())
	}
	return m, cmd
}

func (m *Model) startLoad(req openRequestMsg) tea.Cmd {
	if m.pending != nil {
		m.pending.Cancel()
	}
	m.log.Info("opening capture",
		zap.String("path", req.path),
		zap.Float64("sample_rate", req.sampleRate),
		zap.Stringer("format", req.format))
	m.pending = signal.LoadAsync(context.Background(), req.path, signal.Options{
		Format:     req.format,
		SampleRate: req.sampleRate,
		MinPoints:  m.cfg.MinDisplayPoints,
		Logger:     m.log,
	})
	cmds := []tea.Cmd{m.ensureTicking()}
	if m.dialog != dialogOpen {
		m.open = NewOpenDialog(filepath.Dir(req.path), req.sampleRate, req.format).SetSize(m.width, m.bodyHeight())
		m.dialog = dialogOpen
	}
	cmds = append(cmds, m.open.StartLoading(req.path))
	return tea.Batch(cmds...)
}

func (m *Model) finishLoad(out signal.Outcome) tea.Cmd {
	if out.Err != nil {
		if errors.Is(out.Err, context.Canceled) {
			return nil
		}
		m.log.Error("load failed", zap.Error(out.Err))
		if m.dialog == dialogOpen {
			m.open.Fail(out.Err)
			return nil
		}
		m.setStatus(out.Err.Error(), true)
		return nil
	}

	res := out.Result
	m.sig = res.Signal
	m.path = res.Path
	m.sampleRate = res.SampleRate
	m.dropped = res.Dropped
	m.magnitude = false
	m.psd.visible = false
	m.view.SetSampleRate(res.SampleRate)
	m.view.SetSignal(res.Signal.Len(), res.Signal.MaxRatio())
	m.view.Frame(viewport.Input{})
	m.open.Done()
	m.dialog = dialogNone
	m.refresh()

	msg := fmt.Sprintf("loaded %d %s samples in %s", res.Signal.Len(), res.Signal.Kind(), res.Elapsed.Round(time.Millisecond))
	if res.Dropped > 0 {
		msg += fmt.Sprintf(" (%d trailing bytes ignored)", res.Dropped)
	}
	m.setStatus(msg, false)
	return tea.SetWindowTitle(windowTitle(res.Path))
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusTime = time.Now()
}

func (m Model) bodyHeight() int {
	return max(m.height-headerRows-footerRows, 4)
}

func (m Model) psdHeight() int {
	if !m.psd.visible {
		return 0
	}
	return max(m.bodyHeight()*2/5, 5)
}

func (m Model) plotHeight() int {
	return max(m.bodyHeight()-m.psdHeight(), 3)
}

// refresh recomputes the render query for the current plot size and caches
// the traces to draw.
func (m *Model) refresh() {
	m.traces = nil
	if m.sig == nil {
		return
	}
	area := plot.Layout(m.width, m.plotHeight())
	target := int(float64(area.DotCols()) * m.cfg.View.Oversample)
	q, ok := m.view.Query(target)
	if !ok {
		return
	}
	for _, tr := range m.sig.Traces(q.Range, q.Ratio, m.magnitude) {
		s := plot.Series{Name: tr.Name, X: make([]float64, len(tr.Points)), Y: make([]float64, len(tr.Points))}
		for i, p := range tr.Points {
			s.X[i], s.Y[i] = p.X, p.Y
		}
		m.traces = append(m.traces, s)
	}
}

func (m *Model) psdCmd() tea.Cmd {
	if m.psdBusy {
		return nil
	}
	r := m.view.VisibleRange()
	if r.Empty() {
		return nil
	}
	limited := false
	if r.Len() > maxPSDSamples {
		r.End = r.Start + maxPSDSamples
		limited = true
	}
	sig := m.sig
	params := spectral.Params{NFFT: m.cfg.PSD.NFFT, Overlap: m.cfg.PSD.Overlap, SampleRate: m.sampleRate}
	m.psdBusy = true
	return func() tea.Msg {
		start := time.Now()
		res := spectral.Compute(sig.Window(r), params)
		return psdDoneMsg{result: res, r: r, limited: limited, elapsed: time.Since(start)}
	}
}

func (m Model) exportCmd(path string) tea.Cmd {
	req := export.Request{
		Path:       path,
		Signal:     m.sig,
		Range:      m.export.r,
		SampleRate: m.sampleRate,
		Source:     m.path,
	}
	return func() tea.Msg {
		meta, err := export.Write(req)
		return exportDoneMsg{meta: meta, path: path, err: err}
	}
}

func (m Model) auditionCmd() tea.Cmd {
	r := m.view.VisibleRange()
	if r.Empty() || m.sampleRate <= 0 {
		return nil
	}
	if limit := int(player.MaxClip.Seconds() * m.sampleRate); r.Len() > limit {
		r.End = r.Start + limit
	}
	sig, mag, rate, p := m.sig, m.magnitude, m.sampleRate, m.player
	return func() tea.Msg {
		length, err := p.Play(sig.RealWindow(r, mag), rate)
		if err != nil {
			return auditionMsg{err: err}
		}
		return auditionMsg{length: length, done: p.Done()}
	}
}

func (m Model) xTick(v float64) string {
	if m.timeAxis && m.sampleRate > 0 {
		return signedSeconds(v / m.sampleRate)
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}

func yTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")

	body := m.bodyHeight()
	switch m.dialog {
	case dialogOpen:
		b.WriteString(lipgloss.Place(m.width, body, lipgloss.Center, lipgloss.Center, m.open.View()))
	case dialogExport:
		b.WriteString(lipgloss.Place(m.width, body, lipgloss.Center, lipgloss.Center, m.export.View()))
	default:
		b.WriteString(m.plotView())
		if m.psd.visible {
			b.WriteString("\n")
			b.WriteString(m.psd.view(m.width, m.psdHeight()))
		}
	}
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpText(m.sig != nil, m.sig != nil && m.sig.Kind() == signal.Complex)))
	return b.String()
}

func (m Model) headerView() string {
	left := titleStyle.Render("iqview")
	if m.sig != nil {
		left += "  " + statusStyle.Render(filepath.Base(m.path)) + "  " +
			valueStyle.Render(fmt.Sprintf("%s  %s  %d samples", m.sig.Kind(), util.FormatHz(m.sampleRate), m.sig.Len()))
	}
	var legend []string
	for i, s := range m.traces {
		legend = append(legend, plot.TraceStyle(i).Render("━ "+s.Name))
	}
	return joinStatus(left, strings.Join(legend, "  "), m.width)
}

func (m Model) plotView() string {
	bounds := m.view.Bounds()
	ch := plot.Chart{
		Width:  m.width,
		Height: m.plotHeight(),
		X1:     bounds.X1,
		X2:     bounds.X2,
		Y1:     bounds.Y1,
		Y2:     bounds.Y2,
		XTick:  m.xTick,
		YTick:  yTick,
	}
	if x1, x2, ok := m.view.Measurement(); ok {
		ch.Cursors = []float64{x1, x2}
	}
	if sel, ok := m.view.Selection(m.lastInput); ok {
		ch.Box = [4]float64{sel.X1, sel.X2, sel.Y1, sel.Y2}
		ch.HasBox = true
	}
	return ch.Render(m.traces)
}

func (m Model) statusView() string {
	var left string
	switch {
	case m.pending != nil:
		left = statusStyle.Render("loading " + filepath.Base(m.pending.Path()) + "...")
	case !m.view.HasSignal():
		left = statusStyle.Render("no signal loaded, press o to open a capture")
	default:
		parts := []string{
			"window " + util.FormatSeconds(m.view.WindowTime()),
			fmt.Sprintf("%d samples", m.view.WindowSamples()),
		}
		if f, ok := m.view.MeasuredFrequency(); ok {
			parts = append(parts, "freq "+util.FormatHz(f))
		}
		parts = append(parts, renderRatio(m.view.LastQuery().Ratio), m.view.Mode().String())
		if m.magnitude {
			parts = append(parts, "magnitude")
		}
		if m.psdBusy {
			parts = append(parts, "psd...")
		}
		left = valueStyle.Render(strings.Join(parts, "  "))
	}

	var right string
	switch {
	case m.statusMsg != "" && time.Since(m.statusTime) < m.statusTTL():
		if m.statusErr {
			right = errorStyle.Render(m.statusMsg)
		} else {
			right = statusStyle.Render(m.statusMsg)
		}
	case m.auditionDone != nil:
		bar := renderProgressBar(m.player.Position().Seconds(), m.auditionLen.Seconds(), 20)
		right = statusStyle.Render(bar + "  " + renderVolumePercent(m.player.Volume()))
	default:
		right = statusStyle.Render(renderVolumePercent(m.player.Volume()))
	}
	return joinStatus(left, right, m.width)
}

func windowTitle(path string) string {
	if path == "" {
		return "iqview"
	}
	return filepath.Base(path) + " - iqview"
}

func (m Model) statusTTL() time.Duration {
	if m.cfg.View.StatusTTL > 0 {
		return m.cfg.View.StatusTTL
	}
	return defaultStatusTTL
}
