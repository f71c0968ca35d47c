package series

import (
	"fmt"
	"math/bits"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Sample is the element type a pyramid can hold.
type Sample interface {
	float32 | complex64
}

// Range is a half-open range of original sample indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range, or 0 if it is inverted.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range covers no samples.
func (r Range) Empty() bool { return r.Len() == 0 }

// Pyramid is an immutable power-of-two hierarchy of min/max-reduced views.
// Level 0 holds the original samples; level k is level k-1 reduced by two.
type Pyramid[T Sample] struct {
	levels [][]T
}

// parallelThreshold is the source length below which a level is reduced on
// the calling goroutine.
const parallelThreshold = 1 << 16

// Build copies samples into a new pyramid. Levels are added while
// len(samples)/ratio exceeds minPoints. An empty input yields a pyramid
// with a single empty level.
func Build[T Sample](samples []T, minPoints int) *Pyramid[T] {
	if minPoints < 1 {
		minPoints = 1
	}
	base := make([]T, len(samples))
	copy(base, samples)

	p := &Pyramid[T]{levels: [][]T{base}}
	reduce := reducerFor[T]()
	for ratio := 2; len(base)/ratio > minPoints; ratio <<= 1 {
		p.levels = append(p.levels, downconvert(p.levels[len(p.levels)-1], reduce))
	}
	return p
}

// ReducedLen is the length of the level built from a level of length n:
// ceil(n/2) rounded up to an even count.
func ReducedLen(n int) int {
	if n <= 0 {
		return 0
	}
	return 2 * ((n + 3) / 4)
}

// downconvert reduces src by two. Every chunk of four source elements
// (the trailing chunk may be shorter) becomes one max element and one min
// element. A one-element tail chunk therefore duplicates its sample.
func downconvert[T Sample](src []T, reduce func(dst, chunk []T)) []T {
	dst := make([]T, ReducedLen(len(src)))
	pairs := len(dst) / 2

	run := func(from, to int) {
		for i := from; i < to; i++ {
			lo := i * 4
			hi := min(lo+4, len(src))
			reduce(dst[2*i:2*i+2], src[lo:hi])
		}
	}

	if len(src) < parallelThreshold {
		run(0, pairs)
		return dst
	}

	workers := runtime.GOMAXPROCS(0)
	per := (pairs + workers - 1) / workers
	var g errgroup.Group
	for from := 0; from < pairs; from += per {
		to := min(from+per, pairs)
		g.Go(func() error {
			run(from, to)
			return nil
		})
	}
	_ = g.Wait()
	return dst
}

func reducerFor[T Sample]() func(dst, chunk []T) {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(reduceReal).(func(dst, chunk []T))
	default:
		return any(reduceComplex).(func(dst, chunk []T))
	}
}

func reduceReal(dst, chunk []float32) {
	hi, lo := chunk[0], chunk[0]
	for _, v := range chunk[1:] {
		hi = max(hi, v)
		lo = min(lo, v)
	}
	dst[0] = hi
	dst[1] = lo
}

// reduceComplex takes the extrema of the real and imaginary parts
// independently across the chunk.
func reduceComplex(dst, chunk []complex64) {
	reHi, reLo := real(chunk[0]), real(chunk[0])
	imHi, imLo := imag(chunk[0]), imag(chunk[0])
	for _, v := range chunk[1:] {
		re, im := real(v), imag(v)
		reHi = max(reHi, re)
		reLo = min(reLo, re)
		imHi = max(imHi, im)
		imLo = min(imLo, im)
	}
	dst[0] = complex(reHi, imHi)
	dst[1] = complex(reLo, imLo)
}

// Get returns the slice of the level whose reduction factor is ratio,
// covering r.Start/ratio up to min(r.End/ratio, len(level)). Element i of
// the result corresponds to original index r.Start + i*ratio.
//
// ratio must be a power of two no larger than MaxRatio; anything else is a
// caller bug and panics.
func (p *Pyramid[T]) Get(r Range, ratio int) []T {
	if ratio < 1 || ratio&(ratio-1) != 0 {
		panic(fmt.Sprintf("series: ratio %d is not a power of two", ratio))
	}
	if ratio > p.MaxRatio() {
		panic(fmt.Sprintf("series: ratio %d exceeds max ratio %d", ratio, p.MaxRatio()))
	}
	level := p.levels[bits.TrailingZeros(uint(ratio))]
	start := max(r.Start, 0) / ratio
	end := min(max(r.End, 0)/ratio, len(level))
	if start >= end {
		return level[:0]
	}
	return level[start:end]
}

// MaxRatio is the reduction factor of the coarsest level.
func (p *Pyramid[T]) MaxRatio() int {
	return 1 << (len(p.levels) - 1)
}

// Len is the number of original samples.
func (p *Pyramid[T]) Len() int { return len(p.levels[0]) }

// Levels is the number of levels, including the original samples.
func (p *Pyramid[T]) Levels() int { return len(p.levels) }

// Level returns level k. The returned slice must not be modified.
func (p *Pyramid[T]) Level(k int) []T { return p.levels[k] }
