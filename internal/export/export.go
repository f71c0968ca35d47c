// Package export writes a raw sample range to disk with a YAML sidecar
// describing it.
package export

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/olivier-w/iqview/internal/series"
	"github.com/olivier-w/iqview/internal/signal"
	"gopkg.in/yaml.v3"
)

// ErrNoSignal is returned when there is nothing loaded to export.
var ErrNoSignal = errors.New("no signal loaded")

// Metadata is the sidecar written next to an export.
type Metadata struct {
	Format     string    `yaml:"format"`
	SampleRate float64   `yaml:"sample_rate"`
	Start      int       `yaml:"start"`
	End        int       `yaml:"end"`
	Samples    int       `yaml:"samples"`
	Source     string    `yaml:"source,omitempty"`
	Exported   time.Time `yaml:"exported"`
}

// SidecarPath is where the metadata for path is written.
func SidecarPath(path string) string { return path + ".yaml" }

// Request describes one export.
type Request struct {
	Path       string
	Signal     *signal.Signal
	Range      series.Range
	SampleRate float64
	Source     string
}

// Write stores the raw samples of req.Range at req.Path as little-endian
// float32 (interleaved I/Q for complex signals) and the sidecar next to it.
// The range is clamped to the signal.
func Write(req Request) (Metadata, error) {
	if req.Signal == nil {
		return Metadata{}, ErrNoSignal
	}
	if req.Path == "" {
		return Metadata{}, errors.New("export path is empty")
	}
	r := series.Range{
		Start: max(req.Range.Start, 0),
		End:   min(req.Range.End, req.Signal.Len()),
	}
	if r.Empty() {
		return Metadata{}, fmt.Errorf("export range [%d, %d) is empty", req.Range.Start, req.Range.End)
	}

	buf := req.Signal.AppendRaw(make([]byte, 0, r.Len()*req.Signal.Kind().ElemSize()), r)
	if err := os.WriteFile(req.Path, buf, 0o644); err != nil {
		return Metadata{}, fmt.Errorf("writing %s: %w", req.Path, err)
	}

	meta := Metadata{
		Format:     req.Signal.Kind().String(),
		SampleRate: req.SampleRate,
		Start:      r.Start,
		End:        r.End,
		Samples:    r.Len(),
		Source:     req.Source,
		Exported:   time.Now().UTC().Truncate(time.Second),
	}
	side, err := yaml.Marshal(meta)
	if err != nil {
		return Metadata{}, fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(SidecarPath(req.Path), side, 0o644); err != nil {
		return Metadata{}, fmt.Errorf("writing %s: %w", SidecarPath(req.Path), err)
	}
	return meta, nil
}

// ReadMetadata loads the sidecar written for path.
func ReadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(SidecarPath(path))
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("decoding %s: %w", SidecarPath(path), err)
	}
	return meta, nil
}
