package spectral

import (
	"math"
	"math/rand"
	"runtime"
	"testing"
)

func TestComputeSinePeak(t *testing.T) {
	const (
		rate = 48000.0
		f0   = 3000.0
		n    = 1024
	)
	samples := make([]complex128, 2048)
	for i := range samples {
		samples[i] = complex(math.Sin(2*math.Pi*f0*float64(i)/rate), 0)
	}

	res := Compute(samples, Params{NFFT: n, Overlap: 0, SampleRate: rate})
	if res.Segments != 2 {
		t.Fatalf("expected 2 segments, got %d", res.Segments)
	}
	freq, _ := res.Peak()
	binWidth := rate / n
	if math.Abs(math.Abs(freq)-f0) > binWidth {
		t.Fatalf("expected peak within one bin of ±%v Hz, got %v", f0, freq)
	}
}

func TestComputeEmptyInput(t *testing.T) {
	res := Compute(nil, Params{NFFT: 1024, SampleRate: 1})
	if len(res.Freqs) != 1024 || len(res.PowerDB) != 1024 {
		t.Fatalf("expected 1024 bins, got %d freqs %d power", len(res.Freqs), len(res.PowerDB))
	}
	for i, v := range res.PowerDB {
		if v != FloorDB {
			t.Fatalf("bin %d: expected floor %v for zero input, got %v", i, FloorDB, v)
		}
	}
}

func TestComputeShortInputIsZeroPadded(t *testing.T) {
	samples := []complex128{1, 1, 1}
	res := Compute(samples, Params{NFFT: 64, SampleRate: 64})
	if res.Segments != 1 {
		t.Fatalf("expected a single padded segment, got %d", res.Segments)
	}
	for i, v := range res.PowerDB {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("bin %d is not finite: %v", i, v)
		}
	}
}

func TestComputeSegmentCount(t *testing.T) {
	cases := []struct {
		length, nfft, overlap, want int
	}{
		{1024, 1024, 0, 1},
		{2047, 1024, 0, 1},
		{2048, 1024, 0, 2},
		{2048, 1024, 512, 3},
		{4096, 256, 128, 31},
	}
	for _, c := range cases {
		res := Compute(make([]complex128, c.length), Params{NFFT: c.nfft, Overlap: c.overlap, SampleRate: 1})
		if res.Segments != c.want {
			t.Fatalf("len=%d nfft=%d overlap=%d: expected %d segments, got %d",
				c.length, c.nfft, c.overlap, c.want, res.Segments)
		}
	}
}

func TestComputeRealInputIsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	samples := make([]complex128, 5000)
	for i := range samples {
		samples[i] = complex(rng.NormFloat64(), 0)
	}
	const n = 256
	res := Compute(samples, Params{NFFT: n, Overlap: 128, SampleRate: 1e6})
	dc := n / 2
	if res.Freqs[dc] != 0 {
		t.Fatalf("expected DC at bin %d, got %v", dc, res.Freqs[dc])
	}
	for k := 1; k < n/2; k++ {
		a, b := res.PowerDB[dc+k], res.PowerDB[dc-k]
		if math.Abs(a-b) > 1e-6 {
			t.Fatalf("bin ±%d not symmetric: %v vs %v", k, a, b)
		}
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	samples := make([]complex128, 100000)
	for i := range samples {
		samples[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	p := Params{NFFT: 512, Overlap: 256, SampleRate: 2e6}
	a := Compute(samples, p)
	b := Compute(samples, p)
	for i := range a.PowerDB {
		if a.PowerDB[i] != b.PowerDB[i] {
			t.Fatalf("bin %d differs between runs: %v vs %v", i, a.PowerDB[i], b.PowerDB[i])
		}
	}
}

func TestComputeIndependentOfWorkerSplit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	samples := make([]complex128, 100000)
	for i := range samples {
		samples[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	p := Params{NFFT: 512, Overlap: 256, SampleRate: 2e6}

	prev := runtime.GOMAXPROCS(1)
	defer runtime.GOMAXPROCS(prev)
	serial := Compute(samples, p)
	runtime.GOMAXPROCS(7)
	split := Compute(samples, p)

	if serial.Segments != split.Segments {
		t.Fatalf("segment count differs: %d vs %d", serial.Segments, split.Segments)
	}
	for i := range serial.PowerDB {
		if math.Abs(serial.PowerDB[i]-split.PowerDB[i]) > 1e-9 {
			t.Fatalf("bin %d depends on the worker split: %v vs %v", i, serial.PowerDB[i], split.PowerDB[i])
		}
	}
}

func TestComputeMatchesSerialReference(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	samples := make([]complex128, 3000)
	for i := range samples {
		samples[i] = complex(rng.NormFloat64(), rng.NormFloat64())
	}
	const n = 64
	res := Compute(samples, Params{NFFT: n, Overlap: 16, SampleRate: 64})

	// Naive DFT reference of bin 0 (DC) and bin 5 in unshifted order.
	win := make([]float64, n)
	wsum := 0.0
	for i := range win {
		win[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		wsum += win[i]
	}
	for _, bin := range []int{0, 5} {
		total := 0.0
		count := 0
		for start := 0; start+n <= len(samples); start += n - 16 {
			var acc complex128
			for i := 0; i < n; i++ {
				angle := -2 * math.Pi * float64(bin*i) / n
				acc += samples[start+i] * complex(win[i], 0) * complex(math.Cos(angle), math.Sin(angle))
			}
			total += (real(acc)*real(acc) + imag(acc)*imag(acc)) / (wsum * wsum)
			count++
		}
		want := 10 * math.Log10(total/float64(count))
		got := res.PowerDB[(bin+n/2)%n]
		if math.Abs(got-want) > 1e-6 {
			t.Fatalf("bin %d: expected %v dB, got %v dB", bin, want, got)
		}
	}
}

func TestFrequenciesAxis(t *testing.T) {
	got := Frequencies(4, 8)
	want := []float64{0, 2, -4, -2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	shifted := shift(got)
	for i := 1; i < len(shifted); i++ {
		if shifted[i] <= shifted[i-1] {
			t.Fatalf("expected ascending shifted axis, got %v", shifted)
		}
	}
}

func TestComputePanicsOnBadOverlap(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for overlap >= nfft")
		}
	}()
	Compute(nil, Params{NFFT: 16, Overlap: 16, SampleRate: 1})
}
