package signal

import (
	"encoding/binary"
	"errors"
	"math"
	"math/cmplx"

	"github.com/olivier-w/iqview/internal/series"
)

// ErrUnknownKind is returned when a sample kind cannot be determined.
var ErrUnknownKind = errors.New("unknown sample kind")

// Kind is the sample variant shared by every sample of a signal.
type Kind uint8

const (
	Real Kind = iota
	Complex
)

func (k Kind) String() string {
	if k == Complex {
		return "complex64"
	}
	return "float32"
}

// ElemSize is the number of bytes one sample occupies on disk.
func (k Kind) ElemSize() int {
	if k == Complex {
		return 8
	}
	return 4
}

// Point is one rendered sample: original index and value.
type Point struct {
	X float64
	Y float64
}

// Trace is a named point series handed to the renderer.
type Trace struct {
	Name   string
	Points []Point
}

// Signal is either a real or a complex pyramid. A complex signal may carry
// a real magnitude pyramid for the magnitude display mode. A Signal is never
// mutated after construction.
type Signal struct {
	kind Kind
	re   *series.Pyramid[float32]
	iq   *series.Pyramid[complex64]
	mag  *series.Pyramid[float32]
}

// NewReal builds a real signal.
func NewReal(samples []float32, minPoints int) *Signal {
	return &Signal{kind: Real, re: series.Build(samples, minPoints)}
}

// NewComplex builds a complex signal, optionally with its magnitude pyramid.
func NewComplex(samples []complex64, minPoints int, withMagnitude bool) *Signal {
	s := &Signal{kind: Complex, iq: series.Build(samples, minPoints)}
	if withMagnitude {
		s.mag = series.Build(Magnitude(samples), minPoints)
	}
	return s
}

// Magnitude returns |z| for every sample.
func Magnitude(samples []complex64) []float32 {
	out := make([]float32, len(samples))
	for i, z := range samples {
		out[i] = float32(cmplx.Abs(complex128(z)))
	}
	return out
}

func (s *Signal) Kind() Kind { return s.kind }

// HasMagnitude reports whether a magnitude pyramid is available.
func (s *Signal) HasMagnitude() bool { return s.mag != nil }

// Len is the number of original samples.
func (s *Signal) Len() int {
	if s.kind == Complex {
		return s.iq.Len()
	}
	return s.re.Len()
}

// MaxRatio is the coarsest reduction factor available.
func (s *Signal) MaxRatio() int {
	if s.kind == Complex {
		return s.iq.MaxRatio()
	}
	return s.re.MaxRatio()
}

// Levels returns the length of every pyramid level.
func (s *Signal) Levels() []int {
	if s.kind == Complex {
		return levelLens(s.iq)
	}
	return levelLens(s.re)
}

func levelLens[T series.Sample](p *series.Pyramid[T]) []int {
	out := make([]int, p.Levels())
	for k := range out {
		out[k] = len(p.Level(k))
	}
	return out
}

// Traces returns the series to draw for r at ratio: "inphase" for real
// signals, "inphase" and "quadrature" for complex ones, or "magnitude" when
// magnitude is requested and available. Point i sits at r.Start rounded
// down to a multiple of ratio, plus i*ratio.
func (s *Signal) Traces(r series.Range, ratio int, magnitude bool) []Trace {
	switch {
	case s.kind == Real:
		return []Trace{realTrace("inphase", s.re.Get(r, ratio), r.Start, ratio)}
	case magnitude && s.mag != nil:
		return []Trace{realTrace("magnitude", s.mag.Get(r, ratio), r.Start, ratio)}
	}

	data := s.iq.Get(r, ratio)
	start := alignDown(r.Start, ratio)
	re := Trace{Name: "inphase", Points: make([]Point, len(data))}
	im := Trace{Name: "quadrature", Points: make([]Point, len(data))}
	for i, z := range data {
		x := float64(start + i*ratio)
		re.Points[i] = Point{X: x, Y: float64(real(z))}
		im.Points[i] = Point{X: x, Y: float64(imag(z))}
	}
	return []Trace{re, im}
}

// alignDown rounds start down to the first index of its level element.
func alignDown(start, ratio int) int { return start - start%ratio }

func realTrace(name string, data []float32, start, ratio int) Trace {
	start = alignDown(start, ratio)
	tr := Trace{Name: name, Points: make([]Point, len(data))}
	for i, v := range data {
		tr.Points[i] = Point{X: float64(start + i*ratio), Y: float64(v)}
	}
	return tr
}

// Window returns the full-resolution samples of r as complex128, with a
// zero imaginary part for real signals.
func (s *Signal) Window(r series.Range) []complex128 {
	if s.kind == Complex {
		data := s.iq.Get(r, 1)
		out := make([]complex128, len(data))
		for i, z := range data {
			out[i] = complex128(z)
		}
		return out
	}
	data := s.re.Get(r, 1)
	out := make([]complex128, len(data))
	for i, v := range data {
		out[i] = complex(float64(v), 0)
	}
	return out
}

// RealWindow returns the full-resolution real part (or magnitude) of r.
func (s *Signal) RealWindow(r series.Range, magnitude bool) []float32 {
	switch {
	case s.kind == Real:
		return s.re.Get(r, 1)
	case magnitude && s.mag != nil:
		return s.mag.Get(r, 1)
	}
	data := s.iq.Get(r, 1)
	out := make([]float32, len(data))
	for i, z := range data {
		out[i] = real(z)
	}
	return out
}

// AppendRaw appends the raw samples of r to dst as little-endian float32,
// interleaving real and imaginary parts for complex signals.
func (s *Signal) AppendRaw(dst []byte, r series.Range) []byte {
	if s.kind == Complex {
		for _, z := range s.iq.Get(r, 1) {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(real(z)))
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(imag(z)))
		}
		return dst
	}
	for _, v := range s.re.Get(r, 1) {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
