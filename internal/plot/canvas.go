package plot

import "strings"

// Braille dot positions (col, row) → bit offset:
//
//	(0,0)=0  (1,0)=3
//	(0,1)=1  (1,1)=4
//	(0,2)=2  (1,2)=5
//	(0,3)=6  (1,3)=7
var brailleBits = [2][4]uint{
	{0, 1, 2, 6},
	{3, 4, 5, 7},
}

// Canvas is a grid of braille cells addressed in dots: each cell is 2 dots
// wide and 4 dots tall.
type Canvas struct {
	cols, rows int
	dots       []uint8
	owner      []layer
}

func NewCanvas(cols, rows int) *Canvas {
	cols = max(cols, 1)
	rows = max(rows, 1)
	return &Canvas{
		cols:  cols,
		rows:  rows,
		dots:  make([]uint8, cols*rows),
		owner: make([]layer, cols*rows),
	}
}

// DotCols is the horizontal resolution in dots.
func (c *Canvas) DotCols() int { return c.cols * 2 }

// DotRows is the vertical resolution in dots.
func (c *Canvas) DotRows() int { return c.rows * 4 }

func (c *Canvas) set(x, y int, l layer) {
	if x < 0 || y < 0 || x >= c.DotCols() || y >= c.DotRows() {
		return
	}
	i := (y/4)*c.cols + x/2
	c.dots[i] |= 1 << brailleBits[x%2][y%4]
	cur := c.owner[i]
	switch {
	case cur == layerEmpty || cur == layerGrid || cur == l || l == layerCursor:
		c.owner[i] = l
	case cur >= layerTrace && l >= layerTrace:
		c.owner[i] = layerOverlap
	case l > cur:
		c.owner[i] = l
	}
}

// line draws a Bresenham line between two dots.
func (c *Canvas) line(x0, y0, x1, y1 int, l layer) {
	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy

	for {
		c.set(x0, y0, l)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) vline(x int, l layer) {
	for y := range c.DotRows() {
		c.set(x, y, l)
	}
}

func (c *Canvas) hline(y int, l layer, dashed bool) {
	for x := range c.DotCols() {
		if dashed && x%4 >= 2 {
			continue
		}
		c.set(x, y, l)
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Rows renders the canvas one string per cell row, coloring runs of
// cells that share an owner.
func (c *Canvas) Rows() []string {
	out := make([]string, c.rows)
	for r := range c.rows {
		var line strings.Builder
		var run strings.Builder
		runOwner := layerEmpty
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runOwner == layerEmpty {
				line.WriteString(run.String())
			} else {
				line.WriteString(styleFor(runOwner).Render(run.String()))
			}
			run.Reset()
		}
		for col := range c.cols {
			i := r*c.cols + col
			if c.owner[i] != runOwner {
				flush()
				runOwner = c.owner[i]
			}
			run.WriteRune(rune(0x2800 + int(c.dots[i])))
		}
		flush()
		out[r] = line.String()
	}
	return out
}

func (c *Canvas) String() string {
	return strings.Join(c.Rows(), "\n")
}
