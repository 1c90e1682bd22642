// Package config resolves freqtrack run settings from flags, environment,
// a YAML file and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/cwbudde/algo-freqtrack/internal/logging"
	"github.com/cwbudde/algo-freqtrack/measure/freqtrack"
)

// EnvPrefix prefixes every environment variable, e.g. FREQTRACK_POLE_RADIUS.
const EnvPrefix = "FREQTRACK"

// Store backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Settings is the resolved configuration of one freqtrack invocation.
type Settings struct {
	Estimation freqtrack.Config `mapstructure:",squash" yaml:",inline"`

	OutputDir   string `mapstructure:"output_dir" yaml:"output_dir"`
	Save        bool   `mapstructure:"save" yaml:"save"`
	Store       string `mapstructure:"store" yaml:"store"`
	SQLitePath  string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	Workers     int    `mapstructure:"workers" yaml:"workers"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		Estimation: freqtrack.DefaultConfig(),
		OutputDir:  "results",
		Save:       true,
		Store:      StoreSQLite,
		SQLitePath: "freqtrack.db",
		LogLevel:   "info",
	}
}

// Validate checks the settings, including the estimation parameters.
func (s Settings) Validate() error {
	if err := s.Estimation.Validate(); err != nil {
		return err
	}
	switch s.Store {
	case StoreMemory:
	case StoreSQLite:
		if s.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite store")
		}
	default:
		return fmt.Errorf("unsupported store backend: %q", s.Store)
	}
	if s.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", s.Workers)
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

// flagBindings maps viper keys (= env var suffixes = YAML keys) to pflag names.
var flagBindings = map[string]string{
	"fundamental_hz":   "freq",
	"sample_rate":      "sample-rate",
	"num_samples":      "samples",
	"num_subfilters":   "subfilters",
	"pole_radius":      "pole-radius",
	"step_size":        "step-size",
	"num_theta_points": "theta-points",
	"add_noise":        "noise",
	"snr_db":           "snr",
	"seed":             "seed",
	"output_dir":       "output-dir",
	"store":            "store",
	"sqlite_path":      "sqlite-path",
	"metrics_file":     "metrics-file",
	"log_level":        "log-level",
	"workers":          "workers",
}

// BindFlags declares the run flags on fs. Flag defaults mirror Defaults; a
// flag only takes effect when it is set explicitly.
func BindFlags(fs *flag.FlagSet) {
	d := Defaults()
	e := d.Estimation

	fs.String("config", "", "YAML configuration file")
	fs.Float64("freq", e.FundamentalHz, "fundamental frequency in Hz")
	fs.Float64("sample-rate", e.SampleRate, "sampling frequency in Hz")
	fs.Int("samples", e.NumSamples, "number of adaptive iterations N")
	fs.Int("subfilters", e.NumStages, "number of notch stages M")
	fs.Float64("pole-radius", e.PoleRadius, "pole radius r, 0 < r < 1")
	fs.Float64("step-size", e.StepSize, "LMS step size")
	fs.Int("theta-points", e.ThetaPoints, "initial search grid size")
	fs.Bool("noise", e.Noise, "add white Gaussian noise to the test signal")
	fs.Float64("snr", e.SNRdB, "signal-to-noise ratio in dB")
	fs.Int64("seed", e.Seed, "noise seed")
	fs.Bool("no-save", false, "do not write report files or store the run")
	fs.String("output-dir", d.OutputDir, "directory for report files")
	fs.String("store", d.Store, "run store backend (memory|sqlite)")
	fs.String("sqlite-path", d.SQLitePath, "sqlite database path")
	fs.String("metrics-file", d.MetricsFile, "write Prometheus metrics to this textfile")
	fs.String("log-level", d.LogLevel, "log level (trace|debug|info|warn|error)")
	fs.Int("workers", d.Workers, "grid search goroutines, 0 uses GOMAXPROCS")
}

// Load resolves settings with precedence flags > env > file > defaults and
// validates them. flagSet may be nil. When path is empty the --config flag
// is consulted.
func Load(flagSet *flag.FlagSet, path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	if path == "" && flagSet != nil {
		if f := flagSet.Lookup("config"); f != nil {
			path = f.Value.String()
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flagSet != nil {
		for key, name := range flagBindings {
			if f := flagSet.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if flagSet != nil && flagSet.Changed("no-save") {
		if noSave, err := flagSet.GetBool("no-save"); err == nil && noSave {
			s.Save = false
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return s, nil
}

func setDefaults(v *viper.Viper, d Settings) {
	e := d.Estimation
	v.SetDefault("fundamental_hz", e.FundamentalHz)
	v.SetDefault("sample_rate", e.SampleRate)
	v.SetDefault("num_samples", e.NumSamples)
	v.SetDefault("num_subfilters", e.NumStages)
	v.SetDefault("pole_radius", e.PoleRadius)
	v.SetDefault("step_size", e.StepSize)
	v.SetDefault("num_theta_points", e.ThetaPoints)
	v.SetDefault("add_noise", e.Noise)
	v.SetDefault("snr_db", e.SNRdB)
	v.SetDefault("seed", e.Seed)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("save", d.Save)
	v.SetDefault("store", d.Store)
	v.SetDefault("sqlite_path", d.SQLitePath)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("workers", d.Workers)
}
