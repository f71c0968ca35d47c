package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/iqview/internal/export"
	"github.com/olivier-w/iqview/internal/series"
	"github.com/olivier-w/iqview/internal/spectral"
)

// frameInterval paces polling and animation while something is in flight.
const frameInterval = time.Second / 30

type frameMsg time.Time

type psdDoneMsg struct {
	result  spectral.Result
	r       series.Range
	limited bool
	elapsed time.Duration
}

type exportDoneMsg struct {
	meta export.Metadata
	path string
	err  error
}

type auditionMsg struct {
	length time.Duration
	done   <-chan struct{}
	err    error
}

// auditionEndedMsg carries the done channel of the clip that finished so a
// stale clip cannot end a newer one.
type auditionEndedMsg struct{ done <-chan struct{} }

func waitAudition(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return auditionEndedMsg{done: done}
	}
}

func frameCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}
