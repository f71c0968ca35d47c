package plot

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// YAxisWidth is the number of cells left of the plot area: labels plus the
// axis rule.
const YAxisWidth = 10

// Area is where the dots of a chart land inside its Width x Height block.
type Area struct {
	Left, Top  int
	Cols, Rows int
}

// Layout splits a width x height block into axis labels and plot area. The
// last row holds x labels.
func Layout(width, height int) Area {
	return Area{
		Left: YAxisWidth,
		Top:  0,
		Cols: max(width-YAxisWidth, 1),
		Rows: max(height-1, 1),
	}
}

// DotCols is the horizontal resolution of the area in braille dots.
func (a Area) DotCols() int { return a.Cols * 2 }

// Fraction maps a cell coordinate relative to the block to plot fractions:
// x left to right and y bottom to top. in reports whether the cell lies in
// the plot area; the fractions are clamped to [0, 1] either way.
func (a Area) Fraction(x, y int) (fx, fy float64, in bool) {
	in = x >= a.Left && x < a.Left+a.Cols && y >= a.Top && y < a.Top+a.Rows
	fx = clamp01((float64(x-a.Left) + 0.5) / float64(a.Cols))
	fy = clamp01(1 - (float64(y-a.Top)+0.5)/float64(a.Rows))
	return fx, fy, in
}

// Series is one named line of (x, y) points, in ascending x.
type Series struct {
	Name string
	X, Y []float64
}

// Chart describes a braille line chart with labelled axes.
type Chart struct {
	Width, Height  int
	X1, X2, Y1, Y2 float64

	XTick func(float64) string
	YTick func(float64) string

	// Cursors are x positions drawn as vertical rules.
	Cursors []float64
	// Box, when HasBox is set, is outlined: X1, X2, Y1, Y2.
	Box    [4]float64
	HasBox bool
}

var axisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6c6c80"))

func defaultTick(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}

type mapper struct {
	x1, xs, y2, ys float64
	dotCols        int
	dotRows        int
}

func newMapper(ch Chart, c *Canvas) mapper {
	m := mapper{x1: ch.X1, y2: ch.Y2, dotCols: c.DotCols(), dotRows: c.DotRows()}
	if w := ch.X2 - ch.X1; w > 0 {
		m.xs = float64(m.dotCols-1) / w
	}
	if h := ch.Y2 - ch.Y1; h > 0 {
		m.ys = float64(m.dotRows-1) / h
	}
	return m
}

// Off-canvas coordinates are clamped to a band around the canvas so line
// walks stay short.
func clampDot(v float64, n int) int {
	if math.IsNaN(v) {
		return -n
	}
	return int(math.Round(math.Max(-float64(n), math.Min(v, 2*float64(n)))))
}

func (m mapper) dx(x float64) int { return clampDot((x-m.x1)*m.xs, m.dotCols) }
func (m mapper) dy(y float64) int { return clampDot((m.y2-y)*m.ys, m.dotRows) }

// Render draws the zero line, the series, the box and the cursors, in that
// order. Cells where two series meet take the overlap color.
func (ch Chart) Render(series []Series) string {
	area := Layout(ch.Width, ch.Height)
	c := NewCanvas(area.Cols, area.Rows)
	m := newMapper(ch, c)

	if ch.Y1 < 0 && ch.Y2 > 0 {
		c.hline(m.dy(0), layerGrid, true)
	}
	for i, s := range series {
		l := layerTrace + layer(i)
		n := min(len(s.X), len(s.Y))
		if n == 1 {
			c.set(m.dx(s.X[0]), m.dy(s.Y[0]), l)
			continue
		}
		for j := 1; j < n; j++ {
			c.line(m.dx(s.X[j-1]), m.dy(s.Y[j-1]), m.dx(s.X[j]), m.dy(s.Y[j]), l)
		}
	}
	if ch.HasBox {
		x1, x2 := m.dx(ch.Box[0]), m.dx(ch.Box[1])
		y1, y2 := m.dy(ch.Box[2]), m.dy(ch.Box[3])
		c.line(x1, y1, x2, y1, layerBox)
		c.line(x2, y1, x2, y2, layerBox)
		c.line(x2, y2, x1, y2, layerBox)
		c.line(x1, y2, x1, y1, layerBox)
	}
	for _, x := range ch.Cursors {
		c.vline(m.dx(x), layerCursor)
	}

	yTick, xTick := ch.YTick, ch.XTick
	if yTick == nil {
		yTick = defaultTick
	}
	if xTick == nil {
		xTick = defaultTick
	}

	rows := c.Rows()
	labelW := YAxisWidth - 1
	var b strings.Builder
	for r, row := range rows {
		label := ""
		switch {
		case r == 0:
			label = yTick(ch.Y2)
		case r == len(rows)-1:
			label = yTick(ch.Y1)
		case r == len(rows)/2 && len(rows) > 4:
			label = yTick((ch.Y1 + ch.Y2) / 2)
		}
		b.WriteString(axisStyle.Render(padLeft(label, labelW) + "│"))
		b.WriteString(row)
		b.WriteByte('\n')
	}
	b.WriteString(strings.Repeat(" ", YAxisWidth))
	b.WriteString(axisStyle.Render(xLabels(area.Cols, xTick(ch.X1), xTick((ch.X1+ch.X2)/2), xTick(ch.X2))))
	return b.String()
}

func padLeft(s string, w int) string {
	n := lipgloss.Width(s)
	if n > w {
		return s[:w]
	}
	return strings.Repeat(" ", w-n) + s
}

// xLabels spreads three labels over width cells: left, centre and right
// aligned. Labels that would collide are dropped from the middle out.
func xLabels(width int, left, mid, right string) string {
	line := []rune(strings.Repeat(" ", width))
	put := func(at int, s string) bool {
		rs := []rune(s)
		if at < 0 || at+len(rs) > width {
			return false
		}
		for i := at; i < at+len(rs); i++ {
			if line[i] != ' ' {
				return false
			}
		}
		copy(line[at:], rs)
		return true
	}
	put(0, left)
	put(width-len([]rune(right)), right)
	midAt := (width - len([]rune(mid))) / 2
	if midAt > len([]rune(left))+1 && midAt+len([]rune(mid))+1 < width-len([]rune(right)) {
		put(midAt, mid)
	}
	return string(line)
}
