package viewport

import (
	"math"
	"testing"
)

func TestRatioSmallestPowerOfTwo(t *testing.T) {
	for _, maxRatio := range []int{1, 2, 64, 1 << 20} {
		for _, n := range []int{0, 1, 7, 100, 1000, 4097, 1 << 20, 3_000_001} {
			for _, target := range []int{-3, 0, 1, 10, 640, 2500} {
				r := Ratio(n, target, maxRatio)
				if r < 1 || r&(r-1) != 0 {
					t.Fatalf("Ratio(%d,%d,%d) = %d, not a power of two", n, target, maxRatio, r)
				}
				if r > maxRatio {
					t.Fatalf("Ratio(%d,%d,%d) = %d exceeds max", n, target, maxRatio, r)
				}
				tgt := max(target, 1)
				fits := func(r int) bool { return (n+r-1)/r <= tgt }
				if fits(r) && r > 1 && fits(r/2) {
					t.Fatalf("Ratio(%d,%d,%d) = %d, but %d also fits", n, target, maxRatio, r, r/2)
				}
				if !fits(r) && r != maxRatio {
					t.Fatalf("Ratio(%d,%d,%d) = %d does not fit and is not max", n, target, maxRatio, r)
				}
			}
		}
	}
}

func TestRatioRoundsPointCountUp(t *testing.T) {
	if r := Ratio(5, 2, 8); r != 4 {
		t.Fatalf("Ratio(5,2,8) = %d, want 4", r)
	}
}

func TestComputeQueryRange(t *testing.T) {
	tests := []struct {
		name       string
		b          Bounds
		start, end int
		ok         bool
	}{
		{name: "full", b: FullBounds(1000), start: 0, end: 1000, ok: true},
		{name: "fractional", b: Bounds{X1: 10.4, X2: 20.2}, start: 10, end: 22, ok: true},
		{name: "negative start", b: Bounds{X1: -50, X2: 5}, start: 0, end: 6, ok: true},
		{name: "past end", b: Bounds{X1: 2000, X2: 3000}, ok: false},
		{name: "entirely before", b: Bounds{X1: -30, X2: -10}, ok: false},
		{name: "nan", b: Bounds{X1: math.NaN(), X2: math.NaN()}, ok: false},
		{name: "infinite", b: Bounds{X1: math.Inf(-1), X2: math.Inf(1)}, ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, ok := ComputeQuery(tt.b, 1000, 8, 100)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if q.Range.Start != tt.start || q.Range.End != tt.end {
				t.Fatalf("range = %+v, want [%d,%d)", q.Range, tt.start, tt.end)
			}
		})
	}
}

func TestComputeQueryCapsAtMaxRatio(t *testing.T) {
	q, ok := ComputeQuery(FullBounds(1<<20), 1<<20, 16, 100)
	if !ok || q.Ratio != 16 {
		t.Fatalf("expected ratio capped at 16, got %+v ok=%v", q, ok)
	}
}

func TestClampY(t *testing.T) {
	b := Bounds{Y1: -1e12, Y2: 1e12}.ClampY()
	if b.Y1 != -YLimit || b.Y2 != YLimit {
		t.Fatalf("unexpected clamp %+v", b)
	}
}

func TestClampX(t *testing.T) {
	tests := []struct {
		name   string
		in     Bounds
		x1, x2 float64
	}{
		{name: "inside", in: Bounds{X1: -10, X2: 500}, x1: -10, x2: 500},
		{name: "too wide", in: Bounds{X1: -1e9, X2: 1e9}, x1: -3200, x2: 3200},
		{name: "far right", in: Bounds{X1: 1e6, X2: 1e6 + 10}, x1: 6490, x2: 6500},
		{name: "far left", in: Bounds{X1: -1e6 - 10, X2: -1e6}, x1: -6400, x2: -6390},
		{name: "nan", in: Bounds{X1: math.NaN(), X2: 3}, x1: 0, x2: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.in.ClampX(100)
			if !approx(b.X1, tt.x1) || !approx(b.X2, tt.x2) {
				t.Fatalf("got [%v, %v], want [%v, %v]", b.X1, b.X2, tt.x1, tt.x2)
			}
		})
	}
}

func TestFullBoundsMargin(t *testing.T) {
	b := FullBounds(42)
	if b.X1 != 0 || b.X2 != 42 || b.Y2 <= 1 || b.Y1 >= -1 {
		t.Fatalf("unexpected reset bounds %+v", b)
	}
}

func TestInputModeIsLevelTriggered(t *testing.T) {
	tests := []struct {
		in        Input
		measuring bool
		want      Mode
	}{
		{Input{}, false, Normal},
		{Input{Pressed: true}, false, BoxZoom},
		{Input{Pressed: true, PanKey: true}, false, FreeDrag},
		{Input{ZoomYKey: true}, false, RawZoomOverride},
		{Input{MeasureKey: true, Pressed: true}, false, Normal},
		{Input{MeasureKey: true, Pressed: true}, true, Measuring},
	}
	for _, tt := range tests {
		if got := tt.in.Mode(tt.measuring); got != tt.want {
			t.Fatalf("%+v measuring=%v: got %v, want %v", tt.in, tt.measuring, got, tt.want)
		}
	}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
