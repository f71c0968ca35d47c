// Package player auditions signal windows through the audio device.
package player

import (
	"bytes"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// MaxClip bounds how much of a window is auditioned.
const MaxClip = 30 * time.Second

// ErrEmpty is returned when there is nothing to play.
var ErrEmpty = errors.New("nothing to play")

// countingReader wraps the clip and tracks bytes handed to the device.
type countingReader struct {
	reader *bytes.Reader
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

var (
	globalOtoCtx  *oto.Context
	globalOtoRate int
	otoOnce       sync.Once
	otoInitErr    error
)

// initOto creates the process-wide device context. The first caller's rate
// wins; oto allows one context per process.
func initOto(rate int) (*oto.Context, int, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   rate,
			ChannelCount: channelCount,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			globalOtoRate = rate
		}
	})
	return globalOtoCtx, globalOtoRate, otoInitErr
}

// Player plays one clip at a time. Starting a clip stops the previous one.
type Player struct {
	rate   int
	volume float64

	mu        sync.Mutex
	otoPlayer *oto.Player
	counter   *countingReader
	outRate   int
	done      chan struct{}
}

// New returns a player for the given device rate and volume. The device is
// opened on first Play.
func New(rate int, volume float64) *Player {
	return &Player{rate: rate, volume: clampVolume(volume)}
}

func clampVolume(v float64) float64 {
	return max(0, min(1, v))
}

// Play starts auditioning samples recorded at srcRate and returns the clip
// length. Windows longer than MaxClip are cut.
func (p *Player) Play(samples []float32, srcRate float64) (time.Duration, error) {
	if len(samples) == 0 || srcRate <= 0 {
		return 0, ErrEmpty
	}
	if limit := int(MaxClip.Seconds() * srcRate); len(samples) > limit {
		samples = samples[:limit]
	}

	ctx, rate, err := initOto(p.rate)
	if err != nil {
		return 0, err
	}
	pcm := Render(samples, srcRate, rate)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	p.counter = &countingReader{reader: bytes.NewReader(pcm)}
	p.outRate = rate
	p.done = make(chan struct{})
	p.otoPlayer = ctx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor(p.counter, p.done)
	return bytesToDuration(int64(len(pcm)), rate), nil
}

func bytesToDuration(n int64, rate int) time.Duration {
	if rate <= 0 {
		return 0
	}
	secs := float64(n) / float64(rate*frameSize)
	return time.Duration(secs * float64(time.Second))
}

// monitor closes done once the device has consumed the clip or a newer
// clip replaced it.
func (p *Player) monitor(cr *countingReader, done chan struct{}) {
	for {
		p.mu.Lock()
		current := p.counter == cr
		p.mu.Unlock()

		if !current || cr.Pos() >= cr.reader.Size() {
			close(done)
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// Done is closed when the current clip finishes or is stopped. It is nil
// before the first Play.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Playing reports whether a clip is in progress.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.otoPlayer != nil && p.otoPlayer.IsPlaying()
}

// Position is how far into the current clip the device has read.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	cr, rate := p.counter, p.outRate
	p.mu.Unlock()
	if cr == nil {
		return 0
	}
	return bytesToDuration(cr.Pos(), rate)
}

// Volume returns the current volume (0.0 - 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clampVolume(v)
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(p.volume)
	}
}

// Stop halts the current clip, if any.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.otoPlayer == nil {
		return
	}
	p.otoPlayer.Pause()
	_ = p.otoPlayer.Close()
	p.otoPlayer = nil
	p.counter = nil
}
