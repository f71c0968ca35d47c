package plot

import "github.com/charmbracelet/harmonica"

// SpringRange eases an axis range toward a moving target, one step per
// frame, so autoscaled panels do not jump.
type SpringRange struct {
	spring harmonica.Spring
	lo, hi float64
	vl, vh float64
	primed bool
}

func NewSpringRange(fps int, frequency, damping float64) *SpringRange {
	return &SpringRange{spring: harmonica.NewSpring(harmonica.FPS(fps), frequency, damping)}
}

// Step advances one frame toward [lo, hi]. The first call snaps.
func (s *SpringRange) Step(lo, hi float64) (float64, float64) {
	if !s.primed {
		s.Snap(lo, hi)
		return lo, hi
	}
	s.lo, s.vl = s.spring.Update(s.lo, s.vl, lo)
	s.hi, s.vh = s.spring.Update(s.hi, s.vh, hi)
	return s.lo, s.hi
}

// Snap jumps straight to [lo, hi].
func (s *SpringRange) Snap(lo, hi float64) {
	s.lo, s.hi = lo, hi
	s.vl, s.vh = 0, 0
	s.primed = true
}

// Range is the current eased range.
func (s *SpringRange) Range() (float64, float64) { return s.lo, s.hi }

// Settled reports whether the range is within eps of [lo, hi] and at rest.
func (s *SpringRange) Settled(lo, hi, eps float64) bool {
	near := func(a, b float64) bool { return a-b < eps && b-a < eps }
	return near(s.lo, lo) && near(s.hi, hi) && near(s.vl, 0) && near(s.vh, 0)
}
