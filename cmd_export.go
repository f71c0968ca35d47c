package main

import (
	"fmt"

	"github.com/olivier-w/iqview/internal/export"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newExportCmd(a *app) *cobra.Command {
	var start, end int
	var out string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write a sample range as raw float32 with a YAML sidecar",
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
			meta, err := export.Write(export.Request{
				Path:       out,
				Signal:     res.Signal,
				Range:      r,
				SampleRate: res.SampleRate,
				Source:     res.Path,
			})
			if err != nil {
				return err
			}
			a.log.Info("exported range", zap.String("path", out), zap.Int("samples", meta.Samples))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d %s samples to %s (%s)\n",
				meta.Samples, meta.Format, out, export.SidecarPath(out))
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&start, "start", 0, "first sample")
	f.IntVar(&end, "end", 0, "one past the last sample (default end of capture)")
	f.StringVarP(&out, "output", "o", "", "output file")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}
