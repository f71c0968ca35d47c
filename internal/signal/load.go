package signal

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olivier-w/iqview/internal/media"
	"github.com/olivier-w/iqview/internal/series"
	"go.uber.org/zap"
)

// Options controls how a capture file becomes a Signal.
type Options struct {
	// Format overrides extension detection when not FormatUnknown.
	Format media.Format
	// SampleRate is used for raw captures; audio containers carry their own.
	SampleRate float64
	// MinPoints is the pyramid floor (min_display_points).
	MinPoints int
	Logger    *zap.Logger
}

// Result is a successfully loaded capture.
type Result struct {
	Signal     *Signal
	Path       string
	Format     media.Format
	SampleRate float64
	Dropped    int // trailing bytes that did not form a whole sample
	Elapsed    time.Duration
}

// Load reads path, decodes it and builds the signal's pyramids. ctx is
// checked between decode and every pyramid build; a cancelled load returns
// ctx.Err() and nothing else.
func Load(ctx context.Context, path string, opts Options) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	format := opts.Format
	if format == media.FormatUnknown {
		format = media.DetectFormat(path)
	}
	if format == media.FormatUnknown {
		format = media.FormatFloat32
	}
	log.Debug("loading capture", zap.String("path", path), zap.Stringer("format", format))

	res := Result{Path: path, Format: format, SampleRate: opts.SampleRate}
	var err error
	switch format {
	case media.FormatAudio:
		err = loadAudio(ctx, path, opts.MinPoints, &res)
	case media.FormatFloat32, media.FormatComplex64:
		err = loadRaw(ctx, path, format, opts.MinPoints, &res)
	default:
		err = fmt.Errorf("%w: %v", ErrUnknownKind, format)
	}
	if err != nil {
		log.Warn("load failed", zap.String("path", path), zap.Error(err))
		return Result{}, err
	}

	if res.Dropped > 0 {
		log.Warn("dropped trailing partial sample",
			zap.String("path", path),
			zap.Int("bytes", res.Dropped),
			zap.Stringer("kind", res.Signal.Kind()))
	}
	res.Elapsed = time.Since(start)
	log.Info("capture loaded",
		zap.String("path", path),
		zap.Stringer("kind", res.Signal.Kind()),
		zap.Int("samples", res.Signal.Len()),
		zap.Ints("levels", res.Signal.Levels()),
		zap.Float64("sample_rate", res.SampleRate),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

func loadRaw(ctx context.Context, path string, format media.Format, minPoints int, res *Result) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	kind := Real
	if format == media.FormatComplex64 {
		kind = Complex
	}
	res.Signal, res.Dropped, err = FromBuffer(ctx, buf, kind, minPoints)
	return err
}

func loadAudio(ctx context.Context, path string, minPoints int, res *Result) error {
	pcm, err := media.DecodeAudio(path)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	res.SampleRate = float64(pcm.SampleRate)

	frames := pcm.Frames()
	if pcm.Channels == 2 {
		// Two-channel recordings are treated as I/Q.
		samples := make([]complex64, frames)
		for i := range samples {
			samples[i] = complex(pcm.Samples[2*i], pcm.Samples[2*i+1])
		}
		res.Signal, err = buildComplex(ctx, samples, minPoints)
		return err
	}

	samples := make([]float32, frames)
	for i := range samples {
		var sum float32
		for ch := 0; ch < pcm.Channels; ch++ {
			sum += pcm.Samples[i*pcm.Channels+ch]
		}
		samples[i] = sum / float32(pcm.Channels)
	}
	res.Signal, err = buildReal(ctx, samples, minPoints)
	return err
}

func buildReal(ctx context.Context, samples []float32, minPoints int) (*Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewReal(samples, minPoints), nil
}

func buildComplex(ctx context.Context, samples []complex64, minPoints int) (*Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig := &Signal{kind: Complex, iq: series.Build(samples, minPoints)}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig.mag = series.Build(Magnitude(samples), minPoints)
	return sig, nil
}
