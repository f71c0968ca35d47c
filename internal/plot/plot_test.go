package plot

import (
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvasSetsBrailleBits(t *testing.T) {
	c := NewCanvas(2, 1)
	c.set(0, 0, layerTrace)
	c.set(3, 3, layerTrace)
	rows := c.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	got := []rune(stripANSI(rows[0]))
	if len(got) != 2 {
		t.Fatalf("expected 2 cells, got %q", rows[0])
	}
	if got[0] != rune(0x2800+1) {
		t.Fatalf("expected top-left dot, got %U", got[0])
	}
	if got[1] != rune(0x2800+1<<7) {
		t.Fatalf("expected bottom-right dot, got %U", got[1])
	}
}

func TestCanvasIgnoresOutOfRange(t *testing.T) {
	c := NewCanvas(1, 1)
	c.set(-1, 0, layerTrace)
	c.set(0, 4, layerTrace)
	c.set(2, 0, layerTrace)
	if c.dots[0] != 0 {
		t.Fatalf("expected no dots, got %08b", c.dots[0])
	}
}

func TestCanvasLineCoversEndpoints(t *testing.T) {
	c := NewCanvas(4, 2)
	c.line(0, 7, 7, 0, layerTrace)
	if c.dots[1*4+0]&(1<<brailleBits[0][3]) == 0 {
		t.Fatal("expected start dot set")
	}
	if c.dots[0*4+3]&(1<<brailleBits[1][0]) == 0 {
		t.Fatal("expected end dot set")
	}
}

func TestCanvasOverlapOwner(t *testing.T) {
	c := NewCanvas(1, 1)
	c.set(0, 0, layerTrace)
	c.set(1, 0, layerTrace+1)
	if c.owner[0] != layerOverlap {
		t.Fatalf("expected overlap owner, got %d", c.owner[0])
	}
	c.set(0, 1, layerCursor)
	if c.owner[0] != layerCursor {
		t.Fatalf("expected cursor to win, got %d", c.owner[0])
	}
}

func TestLayoutFraction(t *testing.T) {
	a := Layout(110, 21)
	if a.Cols != 100 || a.Rows != 20 || a.DotCols() != 200 {
		t.Fatalf("unexpected area %+v", a)
	}
	fx, fy, in := a.Fraction(YAxisWidth, 0)
	if !in || math.Abs(fx-0.005) > 1e-12 || math.Abs(fy-0.975) > 1e-12 {
		t.Fatalf("unexpected fraction %v %v %v", fx, fy, in)
	}
	if _, _, in := a.Fraction(3, 5); in {
		t.Fatal("expected label column to be outside the plot")
	}
	if fx, _, in := a.Fraction(500, 5); in || fx != 1 {
		t.Fatalf("expected clamped fraction outside plot, got %v %v", fx, in)
	}
}

func TestChartRenderDimensions(t *testing.T) {
	ch := Chart{Width: 40, Height: 8, X1: 0, X2: 10, Y1: -1, Y2: 1, Cursors: []float64{5}}
	out := ch.Render([]Series{{Name: "a", X: []float64{0, 5, 10}, Y: []float64{-1, 1, -1}}})
	lines := strings.Split(stripANSI(out), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected 8 lines, got %d", len(lines))
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != 40 {
			t.Fatalf("line %d: width %d, want 40: %q", i, w, l)
		}
	}
	if !strings.Contains(lines[0], "1") || !strings.Contains(lines[6], "-1") {
		t.Fatalf("expected y labels, got %q / %q", lines[0], lines[6])
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[7]), "0") || !strings.HasSuffix(lines[7], "10") {
		t.Fatalf("expected x labels, got %q", lines[7])
	}
}

func TestXLabelsDropsCollidingMiddle(t *testing.T) {
	got := xLabels(10, "1234", "mid", "5678")
	if got != "1234  5678" {
		t.Fatalf("unexpected labels %q", got)
	}
}

func TestSpringRangeConverges(t *testing.T) {
	s := NewSpringRange(60, 6, 1)
	if lo, hi := s.Step(0, 1); lo != 0 || hi != 1 {
		t.Fatalf("expected first step to snap, got %v %v", lo, hi)
	}
	for range 600 {
		s.Step(-10, 10)
	}
	if !s.Settled(-10, 10, 1e-3) {
		lo, hi := s.Range()
		t.Fatalf("expected settled range, got %v %v", lo, hi)
	}
}

func stripANSI(s string) string {
	var b strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEsc = false
		case !inEsc:
			b.WriteRune(r)
		}
	}
	return b.String()
}
