package media

import (
	"path/filepath"
	"strings"
)

// Format is the on-disk layout of a capture file.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatFloat32        // raw little-endian float32 samples
	FormatComplex64      // raw interleaved little-endian float32 I/Q pairs
	FormatAudio          // audio container decoded to PCM
)

func (f Format) String() string {
	switch f {
	case FormatFloat32:
		return "float32"
	case FormatComplex64:
		return "complex64"
	case FormatAudio:
		return "audio"
	default:
		return "unknown"
	}
}

var rawExts = map[string]Format{
	".f32":       FormatFloat32,
	".float32":   FormatFloat32,
	".real":      FormatFloat32,
	".cf32":      FormatComplex64,
	".fc32":      FormatComplex64,
	".cfile":     FormatComplex64,
	".complex64": FormatComplex64,
	".iq":        FormatComplex64,
}

var audioExts = map[string]bool{
	".wav":  true,
	".flac": true,
	".ogg":  true,
	".mp3":  true,
}

// DetectFormat guesses the capture format from the file extension.
func DetectFormat(path string) Format {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := rawExts[ext]; ok {
		return f
	}
	if audioExts[ext] {
		return FormatAudio
	}
	return FormatUnknown
}

// ParseFormat maps a config value (auto, float32, complex64) to a Format.
// "auto" and "" map to FormatUnknown so DetectFormat decides.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatUnknown, true
	case "float32", "f32", "real":
		return FormatFloat32, true
	case "complex64", "cf32", "complex", "iq":
		return FormatComplex64, true
	}
	return FormatUnknown, false
}

// IsCandidate reports whether the file browser should list path.
func IsCandidate(path string) bool {
	return DetectFormat(path) != FormatUnknown || strings.EqualFold(filepath.Ext(path), ".bin")
}

// SupportedExtsList returns a human-readable list of recognized extensions.
func SupportedExtsList() string {
	return ".f32, .cf32, .cfile, .iq, .bin, .wav, .flac, .ogg, .mp3"
}
