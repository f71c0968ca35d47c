package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "ctrl+c":
		return true
	}
	return false
}

// Zoom steps for keyboard navigation.
const (
	keyPanStep  = 0.1
	keyZoomStep = 0.5
)

func helpText(hasSignal, complexSignal bool) string {
	s := "o open"
	if hasSignal {
		s += "  drag zoom  ctrl+drag pan  alt+drag measure  wheel zoom  shift+wheel y"
		s += "  ←/→ pan  +/- zoom  r reset  u back  esc clear  t axis  p psd  a listen  [/] vol  e export"
		if complexSignal {
			s += "  m magnitude"
		}
	}
	s += "  q quit"
	return s
}
