package main

import (
	"time"

	"github.com/olivier-w/iqview/internal/signal"
	"github.com/olivier-w/iqview/internal/util"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// captureInfo is what the info command prints.
type captureInfo struct {
	Path       string  `yaml:"path"`
	Format     string  `yaml:"format"`
	Kind       string  `yaml:"kind"`
	Samples    int     `yaml:"samples"`
	SampleRate float64 `yaml:"sample_rate"`
	Duration   string  `yaml:"duration"`
	Dropped    int     `yaml:"dropped_bytes,omitempty"`
	Magnitude  bool    `yaml:"magnitude"`
	Levels     []int   `yaml:"levels"`
	MaxRatio   int     `yaml:"max_ratio"`
	LoadTime   string  `yaml:"load_time"`
}

func newCaptureInfo(res signal.Result) captureInfo {
	sig := res.Signal
	info := captureInfo{
		Path:       res.Path,
		Format:     res.Format.String(),
		Kind:       sig.Kind().String(),
		Samples:    sig.Len(),
		SampleRate: res.SampleRate,
		Dropped:    res.Dropped,
		Magnitude:  sig.HasMagnitude(),
		Levels:     sig.Levels(),
		MaxRatio:   sig.MaxRatio(),
		LoadTime:   res.Elapsed.Round(time.Millisecond).String(),
	}
	if res.SampleRate > 0 {
		info.Duration = util.FormatSeconds(float64(sig.Len()) / res.SampleRate)
	}
	return info
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Load a capture and describe it and its decimation pyramid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(newCaptureInfo(res)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
