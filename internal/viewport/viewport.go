package viewport

import (
	"math"

	"github.com/olivier-w/iqview/internal/series"
)

const (
	// YLimit bounds both ends of the vertical range.
	YLimit = 9999999.0
	// YMargin is the half-height of a reset view; slightly above full scale.
	YMargin = 1.01
	// EmptyLength is the x extent shown when no signal is loaded.
	EmptyLength = 1000
	// XSpanLimit bounds the x span, and how far past either end of the
	// signal it may reach, as a multiple of the signal length.
	XSpanLimit = 64.0

	minXSpan = 1.0
	minYSpan = 1e-9
)

// Bounds is a plot rectangle in sample-index (x) and value (y) units.
type Bounds struct {
	X1, X2 float64
	Y1, Y2 float64
}

func (b Bounds) Width() float64  { return b.X2 - b.X1 }
func (b Bounds) Height() float64 { return b.Y2 - b.Y1 }

// FullBounds is the reset view for a signal of total samples.
func FullBounds(total int) Bounds {
	return Bounds{X1: 0, X2: float64(total), Y1: -YMargin, Y2: YMargin}
}

// ClampY limits the vertical range to ±YLimit.
func (b Bounds) ClampY() Bounds {
	b.Y1 = math.Max(b.Y1, -YLimit)
	b.Y2 = math.Min(b.Y2, YLimit)
	return b
}

// ClampX keeps the x range finite for a signal of total samples. The span
// is at most XSpanLimit*total wide and stays within that distance of the
// signal. Non-finite bounds fall back to the full range.
func (b Bounds) ClampX(total int) Bounds {
	limit := spanLimit(total)
	if !finite(b.X1) || !finite(b.X2) {
		b.X1, b.X2 = 0, float64(total)
	}
	if b.X2-b.X1 > limit {
		mid := b.X1/2 + b.X2/2
		b.X1, b.X2 = mid-limit/2, mid+limit/2
	}
	if lo := -limit; b.X1 < lo {
		b.X2 += lo - b.X1
		b.X1 = lo
	}
	if hi := float64(total) + limit; b.X2 > hi {
		b.X1 -= b.X2 - hi
		b.X2 = hi
	}
	return b
}

func spanLimit(total int) float64 { return XSpanLimit * float64(max(total, 1)) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Query is what the renderer asks the pyramid for.
type Query struct {
	Range series.Range
	Ratio int
}

// Ratio picks the smallest power of two r with ceil(n/r) <= target, capped
// at maxRatio. A non-positive target is treated as one point.
//
// The count is rounded up, so n=5 with target 2 picks 4 rather than the 2
// a floor(n/r) rule would give; the rendered point count never exceeds
// target.
func Ratio(n, target, maxRatio int) int {
	target = max(target, 1)
	maxRatio = max(maxRatio, 1)
	r := 1
	for (n+r-1)/r > target && r<<1 <= maxRatio {
		r <<= 1
	}
	return r
}

// ComputeQuery turns the visible x bounds into a sample range and ratio for
// a signal of length samples. The range starts at floor(X1) and ends one
// past ceil(X2), clamped to the signal. ok is false when there is nothing
// to render, including for non-finite bounds.
func ComputeQuery(b Bounds, length, maxRatio, target int) (q Query, ok bool) {
	if !finite(b.X1) || !finite(b.X2) {
		return Query{}, false
	}
	start := math.Max(math.Floor(b.X1), 0)
	end := math.Min(math.Ceil(b.X2)+1, float64(length))
	if end <= start {
		return Query{}, false
	}
	r := series.Range{Start: int(start), End: int(end)}
	return Query{Range: r, Ratio: Ratio(r.Len(), target, maxRatio)}, true
}
