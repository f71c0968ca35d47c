package player

import (
	"encoding/binary"
	"math"
)

const (
	channelCount = 2
	bitDepth     = 2 // 16-bit = 2 bytes
	frameSize    = channelCount * bitDepth
)

// resample converts samples from srcRate to outRate by linear interpolation.
func resample(samples []float32, srcRate, outRate float64) []float32 {
	if len(samples) == 0 || srcRate <= 0 || outRate <= 0 {
		return nil
	}
	if srcRate == outRate {
		return append([]float32(nil), samples...)
	}
	n := int(math.Ceil(float64(len(samples)) * outRate / srcRate))
	out := make([]float32, max(n, 1))
	step := srcRate / outRate
	last := len(samples) - 1
	for i := range out {
		pos := float64(i) * step
		lo := int(pos)
		if lo >= last {
			out[i] = samples[last]
			continue
		}
		t := float32(pos - float64(lo))
		out[i] = samples[lo]*(1-t) + samples[lo+1]*t
	}
	return out
}

// normalize scales samples in place so the largest magnitude is 1. Silent
// input is left alone.
func normalize(samples []float32) {
	var peak float64
	for _, v := range samples {
		peak = max(peak, math.Abs(float64(v)))
	}
	if peak == 0 || math.IsInf(peak, 0) || math.IsNaN(peak) {
		return
	}
	g := float32(1 / peak)
	for i := range samples {
		samples[i] *= g
	}
}

// encode writes mono samples as interleaved stereo s16le.
func encode(samples []float32) []byte {
	out := make([]byte, len(samples)*frameSize)
	for i, v := range samples {
		if v != v {
			v = 0
		}
		s := int16(math.Round(float64(max(-1, min(1, v))) * math.MaxInt16))
		binary.LittleEndian.PutUint16(out[i*frameSize:], uint16(s))
		binary.LittleEndian.PutUint16(out[i*frameSize+bitDepth:], uint16(s))
	}
	return out
}

// Render turns a window of real samples at srcRate into device PCM at
// outRate: resampled, peak-normalized, 16-bit stereo.
func Render(samples []float32, srcRate float64, outRate int) []byte {
	out := resample(samples, srcRate, float64(outRate))
	normalize(out)
	return encode(out)
}
