package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/olivier-w/iqview/internal/series"
	"github.com/olivier-w/iqview/internal/spectral"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sampleRange resolves --start/--end against a signal of n samples. A
// non-positive end means the end of the signal.
func sampleRange(start, end, n int) (series.Range, error) {
	if end <= 0 || end > n {
		end = n
	}
	start = max(start, 0)
	if start >= end {
		return series.Range{}, fmt.Errorf("empty sample range [%d, %d) for %d samples", start, end, n)
	}
	return series.Range{Start: start, End: end}, nil
}

func writePSD(w io.Writer, res spectral.Result) error {
	bw := bufio.NewWriter(w)
	freq, power := res.Peak()
	fmt.Fprintf(bw, "# segments %d, peak %.6f Hz at %.3f dB\n", res.Segments, freq, power)
	fmt.Fprintln(bw, "# freq_hz\tpower_db")
	for i, f := range res.Freqs {
		fmt.Fprintf(bw, "%.6f\t%.3f\n", f, res.PowerDB[i])
	}
	return bw.Flush()
}

func newPSDCmd(a *app) *cobra.Command {
	var start, end int
	cmd := &cobra.Command{
		Use:   "psd <file>",
		Short: "Print the Welch power spectral density of a sample range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			r, err := sampleRange(start, end, res.Signal.Len())
			if err != nil {
				return err
			}
			params := spectral.Params{
				NFFT:       a.cfg.PSD.NFFT,
				Overlap:    a.cfg.PSD.Overlap,
				SampleRate: res.SampleRate,
			}
			out := spectral.Compute(res.Signal.Window(r), params)
			a.log.Info("psd computed",
				zap.String("path", res.Path),
				zap.Int("start", r.Start),
				zap.Int("end", r.End),
				zap.Int("segments", out.Segments))
			return writePSD(cmd.OutOrStdout(), out)
		},
	}
	f := cmd.Flags()
	f.IntVar(&start, "start", 0, "first sample")
	f.IntVar(&end, "end", 0, "one past the last sample (default end of capture)")
	f.Int("nfft", 0, "segment length")
	f.Int("overlap", 0, "samples shared by consecutive segments")
	return cmd
}
