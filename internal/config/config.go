// Package config loads iqview settings from flags, IQVIEW_* environment
// variables, an optional iqview.yaml and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/olivier-w/iqview/internal/media"
	"github.com/olivier-w/iqview/internal/util"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "IQVIEW"
	FileName  = "iqview"
)

// Config is the resolved application configuration.
type Config struct {
	SampleRate       float64 `mapstructure:"sample_rate"`
	SignalType       string  `mapstructure:"signal_type"`
	MinDisplayPoints int     `mapstructure:"min_display_points"`

	View  ViewConfig  `mapstructure:"view"`
	PSD   PSDConfig   `mapstructure:"psd"`
	Audio AudioConfig `mapstructure:"audio"`
	Log   LogConfig   `mapstructure:"log"`
}

// ViewConfig controls the signal plot.
type ViewConfig struct {
	// Oversample is how many points are requested per plot dot column.
	Oversample float64 `mapstructure:"oversample"`
	// StatusTTL is how long a transient status message stays up.
	StatusTTL time.Duration `mapstructure:"status_ttl"`
}

// PSDConfig holds the Welch estimator parameters.
type PSDConfig struct {
	NFFT    int `mapstructure:"nfft"`
	Overlap int `mapstructure:"overlap"`
}

// AudioConfig controls audition playback.
type AudioConfig struct {
	Rate   int     `mapstructure:"rate"`
	Volume float64 `mapstructure:"volume"`
}

// LogConfig selects the log level and file.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("sample_rate", 2_000_000.0)
	v.SetDefault("signal_type", "auto")
	v.SetDefault("min_display_points", 2048)
	v.SetDefault("view.oversample", 2.5)
	v.SetDefault("view.status_ttl", "5s")
	v.SetDefault("psd.nfft", 1024)
	v.SetDefault("psd.overlap", 0)
	v.SetDefault("audio.rate", 48000)
	v.SetDefault("audio.volume", 0.8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}

// New returns a viper instance with defaults, environment binding and the
// config file search path set up. file overrides the search when non-empty.
// A missing config file is not an error.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		rateHook,
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// rateHook lets float settings be written with a unit suffix, e.g.
// sample_rate: 2.4M.
func rateHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Float64 {
		return data, nil
	}
	s := strings.TrimSpace(data.(string))
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return util.ParseHz(s)
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("sample_rate must be positive, got %v", c.SampleRate)
	case c.MinDisplayPoints < 1:
		return fmt.Errorf("min_display_points must be at least 1, got %d", c.MinDisplayPoints)
	case c.View.Oversample <= 0:
		return fmt.Errorf("view.oversample must be positive, got %v", c.View.Oversample)
	case c.View.StatusTTL < 0:
		return fmt.Errorf("view.status_ttl must not be negative, got %v", c.View.StatusTTL)
	case c.PSD.NFFT < 2:
		return fmt.Errorf("psd.nfft must be at least 2, got %d", c.PSD.NFFT)
	case c.PSD.Overlap < 0 || c.PSD.Overlap >= c.PSD.NFFT:
		return fmt.Errorf("psd.overlap must be in [0, %d), got %d", c.PSD.NFFT, c.PSD.Overlap)
	case c.Audio.Rate <= 0:
		return fmt.Errorf("audio.rate must be positive, got %d", c.Audio.Rate)
	case c.Audio.Volume < 0 || c.Audio.Volume > 1:
		return fmt.Errorf("audio.volume must be in [0, 1], got %v", c.Audio.Volume)
	}
	if _, ok := media.ParseFormat(c.SignalType); !ok {
		return fmt.Errorf("signal_type must be auto, float32 or complex64, got %q", c.SignalType)
	}
	return nil
}

// Format is the configured signal type; FormatUnknown means detect by extension.
func (c Config) Format() media.Format {
	f, _ := media.ParseFormat(c.SignalType)
	return f
}
