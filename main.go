package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olivier-w/iqview/internal/config"
	"github.com/olivier-w/iqview/internal/logging"
	"github.com/olivier-w/iqview/internal/signal"
	"github.com/olivier-w/iqview/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"sample-rate": "sample_rate",
	"type":        "signal_type",
	"min-points":  "min_display_points",
	"oversample":  "view.oversample",
	"nfft":        "psd.nfft",
	"overlap":     "psd.overlap",
	"volume":      "audio.volume",
	"log-level":   "log.level",
	"log-file":    "log.file",
}

// app carries what every command needs once flags are parsed.
type app struct {
	configFile string
	v          *viper.Viper
	cfg        config.Config
	log        *zap.Logger
	closeLog   func()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "iqview [file|dir]",
		Short: "Terminal viewer for raw I/Q and audio captures",
		Long: `iqview plots raw float32 and complex64 captures (and wav, flac, ogg and
mp3 audio) in the terminal. Zooming and panning stay responsive on
captures of hundreds of millions of samples by drawing from a min/max
decimation pyramid built at load time.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) { a.close() },
		RunE:              a.runViewer,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default is $HOME/.config/iqview/iqview.yaml)")
	pf.String("sample-rate", "", "sample rate of raw captures, e.g. 2.4M")
	pf.String("type", "", "signal type: auto, float32 or complex64")
	pf.Int("min-points", 0, "smallest pyramid level kept, in points")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "log file (default is $XDG_STATE_HOME/iqview/iqview.log)")

	f := root.Flags()
	f.Float64("oversample", 0, "points requested per plot dot column")
	f.Float64("volume", 0, "audition volume, 0 to 1")

	root.AddCommand(newInfoCmd(a), newPSDCmd(a), newExportCmd(a))
	return root
}

// setup loads the configuration with flag overrides and opens the log.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	v, err := config.New(a.configFile)
	if err != nil {
		return err
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && f.Changed {
			_ = v.BindPFlag(key, f)
		}
	})
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	a.v, a.cfg = v, cfg
	a.log, a.closeLog = logging.NewOrNop(cfg.Log.File, cfg.Log.Level)
	a.log.Debug("configuration loaded",
		zap.String("file", v.ConfigFileUsed()),
		zap.Float64("sample_rate", cfg.SampleRate),
		zap.String("signal_type", cfg.SignalType))
	return nil
}

func (a *app) close() {
	if a.closeLog != nil {
		a.closeLog()
	}
}

// load reads a capture for the batch commands. An interrupt returns at
// once instead of waiting for the worker's next checkpoint.
func (a *app) load(ctx context.Context, path string) (signal.Result, error) {
	return signal.LoadAsync(ctx, path, signal.Options{
		Format:     a.cfg.Format(),
		SampleRate: a.cfg.SampleRate,
		MinPoints:  a.cfg.MinDisplayPoints,
		Logger:     a.log,
	}).Wait(ctx)
}

func (a *app) runViewer(cmd *cobra.Command, args []string) error {
	opts := ui.Options{Config: a.cfg, Logger: a.log, Dir: "."}
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if info.IsDir() {
			opts.Dir = args[0]
		} else {
			opts.Path = args[0]
			opts.Dir = filepath.Dir(args[0])
		}
	}

	a.log.Info("starting viewer", zap.String("path", opts.Path), zap.String("dir", opts.Dir))
	program := tea.NewProgram(ui.New(opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)
	if _, err := program.Run(); err != nil {
		return err
	}
	return nil
}
