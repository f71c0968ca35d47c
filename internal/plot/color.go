package plot

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// hsv converts a hue/saturation/value triple to a lipgloss hex color.
func hsv(h, s, v float64) lipgloss.Color {
	h = math.Mod(h, 1)
	if h < 0 {
		h += 1
	}
	s = clamp01(s)
	v = clamp01(v)

	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", uint8(r*255), uint8(g*255), uint8(b*255)))
}

// layer identifies what owns a braille cell; it picks the cell's color.
type layer uint8

const (
	layerEmpty layer = iota
	layerGrid
	layerBox
	layerCursor
	layerOverlap
	layerTrace // layerTrace+i is trace i
)

var traceHues = []float64{0.53, 0.88, 0.13, 0.35}

var layerStyles = map[layer]lipgloss.Style{
	layerGrid:    lipgloss.NewStyle().Foreground(hsv(0.6, 0.2, 0.3)),
	layerBox:     lipgloss.NewStyle().Foreground(lipgloss.Color("#9696aa")),
	layerCursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("#f0f0f0")),
	layerOverlap: lipgloss.NewStyle().Foreground(lipgloss.Color("#fff8be")),
}

func styleFor(l layer) lipgloss.Style {
	if st, ok := layerStyles[l]; ok {
		return st
	}
	return TraceStyle(int(l - layerTrace))
}

// TraceStyle is the style trace i is drawn with, for legends.
func TraceStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(hsv(traceHues[i%len(traceHues)], 0.7, 0.95))
}
