package media

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrUnsupported is returned for audio containers that cannot be decoded.
var ErrUnsupported = errors.New("unsupported audio format")

// PCM is a fully decoded audio container with samples scaled to [-1, 1].
type PCM struct {
	SampleRate int
	Channels   int
	Samples    []float32 // interleaved by channel
}

// Frames is the number of samples per channel.
func (p PCM) Frames() int {
	if p.Channels == 0 {
		return 0
	}
	return len(p.Samples) / p.Channels
}

// DecodeAudio decodes the whole container at path, picking the decoder
// from the file extension.
func DecodeAudio(path string) (PCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return PCM{}, err
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		return decodeWAV(f)
	case ".flac":
		return decodeFLAC(f)
	case ".ogg":
		return decodeOGG(f)
	case ".mp3":
		return decodeMP3(f)
	default:
		return PCM{}, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// --- WAV ---

const wavFormatFloat = 3

func decodeWAV(f io.ReadSeeker) (PCM, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return PCM{}, fmt.Errorf("%w: invalid WAV file", ErrUnsupported)
	}
	if err := dec.FwdToPCM(); err != nil {
		return PCM{}, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	width := bitDepth / 8
	if width < 1 || width > 4 {
		return PCM{}, fmt.Errorf("%w: %d-bit WAV", ErrUnsupported, bitDepth)
	}
	raw := make([]byte, dec.PCMLen())
	n, err := io.ReadFull(f, raw)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return PCM{}, fmt.Errorf("reading WAV PCM data: %w", err)
	}
	raw = raw[:n-n%width]

	isFloat := dec.WavAudioFormat == wavFormatFloat && width == 4
	samples := make([]float32, len(raw)/width)
	for i := range samples {
		off := i * width
		switch {
		case isFloat:
			samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[off:]))
		case width == 1:
			// 8-bit WAV is unsigned
			samples[i] = float32(int(raw[off])-128) / 128
		case width == 2:
			samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[off:]))) / 32768
		case width == 3:
			s := int32(raw[off]) | int32(raw[off+1])<<8 | int32(raw[off+2])<<16
			if s&0x800000 != 0 {
				s |= ^0xFFFFFF // sign extend
			}
			samples[i] = float32(s) / (1 << 23)
		default:
			samples[i] = float32(float64(int32(binary.LittleEndian.Uint32(raw[off:]))) / (1 << 31))
		}
	}

	return PCM{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		Samples:    samples,
	}, nil
}

// --- FLAC ---

func decodeFLAC(r io.Reader) (PCM, error) {
	stream, err := flac.New(r)
	if err != nil {
		return PCM{}, fmt.Errorf("decoding FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	channels := int(info.NChannels)
	scale := float32(math.Ldexp(1, int(info.BitsPerSample)-1))
	samples := make([]float32, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return PCM{}, fmt.Errorf("decoding FLAC frame: %w", err)
		}
		nSamples := int(frame.Subframes[0].NSamples)
		for i := 0; i < nSamples; i++ {
			for ch := 0; ch < channels; ch++ {
				samples = append(samples, float32(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}

	return PCM{SampleRate: int(info.SampleRate), Channels: channels, Samples: samples}, nil
}

// --- OGG Vorbis ---

func decodeOGG(r io.Reader) (PCM, error) {
	reader, err := oggvorbis.NewReader(r)
	if err != nil {
		return PCM{}, fmt.Errorf("decoding OGG: %w", err)
	}

	channels := reader.Channels()
	samples := make([]float32, 0, reader.Length()*int64(channels))
	buf := make([]float32, 8192*channels)
	for {
		n, err := reader.Read(buf)
		samples = append(samples, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return PCM{}, fmt.Errorf("decoding OGG: %w", err)
		}
	}

	return PCM{SampleRate: reader.SampleRate(), Channels: channels, Samples: samples}, nil
}

// --- MP3 ---

func decodeMP3(r io.Reader) (PCM, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return PCM{}, fmt.Errorf("decoding MP3: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return PCM{}, fmt.Errorf("decoding MP3: %w", err)
	}

	// go-mp3 always produces 16-bit little-endian stereo.
	samples := make([]float32, len(raw)/2)
	for i := range samples {
		samples[i] = float32(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768
	}
	return PCM{SampleRate: dec.SampleRate(), Channels: 2, Samples: samples}, nil
}
