package signal

import (
	"context"
	"encoding/binary"
	"math"
)

// DecodeReal interprets buf as little-endian float32 samples. A trailing
// partial sample is not decoded; its size in bytes is returned as dropped.
func DecodeReal(buf []byte) (samples []float32, dropped int) {
	n := len(buf) / 4
	samples = make([]float32, n)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return samples, len(buf) - 4*n
}

// DecodeComplex interprets buf as interleaved little-endian float32 I/Q
// pairs. A trailing partial pair is not decoded; its size in bytes is
// returned as dropped.
func DecodeComplex(buf []byte) (samples []complex64, dropped int) {
	n := len(buf) / 8
	samples = make([]complex64, n)
	for i := range samples {
		re := math.Float32frombits(binary.LittleEndian.Uint32(buf[8*i:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(buf[8*i+4:]))
		samples[i] = complex(re, im)
	}
	return samples, len(buf) - 8*n
}

// FromBuffer decodes buf as kind and builds the signal. Complex signals get
// a magnitude pyramid. ctx is checked before every pyramid build.
func FromBuffer(ctx context.Context, buf []byte, kind Kind, minPoints int) (*Signal, int, error) {
	if kind == Complex {
		samples, dropped := DecodeComplex(buf)
		sig, err := buildComplex(ctx, samples, minPoints)
		return sig, dropped, err
	}
	samples, dropped := DecodeReal(buf)
	sig, err := buildReal(ctx, samples, minPoints)
	return sig, dropped, err
}
