package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/iqview/internal/plot"
	"github.com/olivier-w/iqview/internal/viewport"
)

// mouseTracker turns terminal mouse events into viewport input snapshots.
// Terminals report modifiers with every event, so each event becomes one
// snapshot; the tracker only remembers the button state needed to tell
// clicks from drags.
type mouseTracker struct {
	down         bool
	moved        bool
	downX, downY int
}

// snapshots converts msg, with coordinates relative to the plot block, into
// the inputs to feed the controller in order. A drag start is reported at
// the press position, followed by the current position.
func (t *mouseTracker) snapshots(msg tea.MouseMsg, area plot.Area, x, y int) []viewport.Input {
	base := func(px, py int) viewport.Input {
		fx, fy, in := area.Fraction(px, py)
		return viewport.Input{
			X: fx, Y: fy, InPlot: in,
			Pressed:    t.down,
			PanKey:     msg.Ctrl,
			ZoomYKey:   msg.Shift,
			MeasureKey: msg.Alt,
		}
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown:
		in := base(x, y)
		in.Wheel = 1
		if msg.Button == tea.MouseButtonWheelDown {
			in.Wheel = -1
		}
		return []viewport.Input{in}

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		t.down, t.moved = true, false
		t.downX, t.downY = x, y
		return []viewport.Input{base(x, y)}

	case msg.Action == tea.MouseActionMotion && t.down:
		if t.moved {
			return []viewport.Input{base(x, y)}
		}
		if x == t.downX && y == t.downY {
			return nil
		}
		t.moved = true
		start := base(t.downX, t.downY)
		start.DragStarted = true
		return []viewport.Input{start, base(x, y)}

	case msg.Action == tea.MouseActionRelease && t.down:
		t.down = false
		in := base(x, y)
		if t.moved {
			in.DragStopped = true
		} else {
			in.Clicked = true
		}
		return []viewport.Input{in}
	}
	return nil
}
