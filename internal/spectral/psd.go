package spectral

import (
	"fmt"
	"math"
	"runtime"

	"github.com/mjibson/go-dsp/window"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// FloorDB is reported for bins whose average power is zero, so an all-zero
// input yields a finite, flat spectrum instead of -Inf.
const FloorDB = -300.0

// Params configures a PSD estimate.
type Params struct {
	NFFT       int     // segment length
	Overlap    int     // samples shared by consecutive segments
	SampleRate float64 // Hz
}

// Result is a centered (fftshifted) spectrum: Freqs ascends from the most
// negative frequency through DC.
type Result struct {
	Freqs    []float64
	PowerDB  []float64
	Segments int
}

// Peak returns the frequency and power of the strongest bin.
func (r Result) Peak() (freq, power float64) {
	if len(r.PowerDB) == 0 {
		return 0, math.Inf(-1)
	}
	i := floats.MaxIdx(r.PowerDB)
	return r.Freqs[i], r.PowerDB[i]
}

// Compute estimates the power spectral density of samples with Welch's
// method: Hann-windowed segments of NFFT samples with stride NFFT-Overlap,
// each normalized by (sum w)^2, averaged, converted to 10*log10 and shifted
// so DC sits in the middle. Inputs shorter than NFFT are zero-padded to a
// single segment.
//
// NFFT < 1, Overlap < 0 or Overlap >= NFFT panic.
func Compute(samples []complex128, p Params) Result {
	n := p.NFFT
	if n < 1 {
		panic(fmt.Sprintf("spectral: nfft %d must be positive", n))
	}
	if p.Overlap < 0 || p.Overlap >= n {
		panic(fmt.Sprintf("spectral: overlap %d must be in [0, %d)", p.Overlap, n))
	}
	if len(samples) < n {
		padded := make([]complex128, n)
		copy(padded, samples)
		samples = padded
	}

	win := window.Hann(n)
	wsum := floats.Sum(win)
	norm := wsum * wsum

	stride := n - p.Overlap
	segments := (len(samples)-n)/stride + 1

	sum := welchSum(samples, win, norm, stride, segments)
	floats.Scale(1/float64(segments), sum)

	power := make([]float64, n)
	for i, v := range sum {
		if v > 0 {
			power[i] = 10 * math.Log10(v)
		} else {
			power[i] = FloorDB
		}
	}

	return Result{
		Freqs:    shift(Frequencies(n, p.SampleRate)),
		PowerDB:  shift(power),
		Segments: segments,
	}
}

// welchSum splits the segments into contiguous batches, one per worker, and
// returns the elementwise sum of every segment's normalized power. Batches
// are summed in batch order so repeated calls are bit-identical.
func welchSum(samples []complex128, win []float64, norm float64, stride, segments int) []float64 {
	n := len(win)
	workers := min(runtime.GOMAXPROCS(0), segments)
	per := (segments + workers - 1) / workers
	partial := make([][]float64, (segments+per-1)/per)

	var g errgroup.Group
	for b := range partial {
		g.Go(func() error {
			fft := fourier.NewCmplxFFT(n)
			buf := make([]complex128, n)
			coeffs := make([]complex128, n)
			acc := make([]float64, n)
			last := min((b+1)*per, segments)
			for s := b * per; s < last; s++ {
				seg := samples[s*stride : s*stride+n]
				for i, v := range seg {
					buf[i] = v * complex(win[i], 0)
				}
				coeffs = fft.Coefficients(coeffs, buf)
				for i, c := range coeffs {
					acc[i] += sqAbs(c) / norm
				}
			}
			partial[b] = acc
			return nil
		})
	}
	_ = g.Wait()

	sum := partial[0]
	for _, acc := range partial[1:] {
		floats.Add(sum, acc)
	}
	return sum
}

func sqAbs(c complex128) float64 {
	re, im := real(c), imag(c)
	return re*re + im*im
}

// Frequencies returns the unshifted two-sided frequency axis: bin i maps to
// i*rate/n below n/2 and wraps to i*rate/n - rate above.
func Frequencies(n int, rate float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		f := float64(i) * rate / float64(n)
		if i >= n/2 {
			f -= rate
		}
		out[i] = f
	}
	return out
}

// shift moves the second half (negative frequencies) in front of the first.
func shift(v []float64) []float64 {
	half := len(v) / 2
	out := make([]float64, 0, len(v))
	out = append(out, v[half:]...)
	return append(out, v[:half]...)
}
