// Package config loads the YAML configuration of the softmax-tuner command.
//
// A file only needs the keys it changes; everything else keeps the value from
// Default:
//
//	data:
//	  path: iris.csv
//	  target: Species
//	train:
//	  learning_rate: 0.5
//	grid:
//	  learning_rates: [0.01, 0.1, 0.5]
//	  epochs: [1000, 5000]
//	  n_jobs: 4
package config

import (
	"math"
	"os"

	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/pkg/log"
	"github.com/goccy/go-yaml"
)

// Config is the full configuration.
type Config struct {
	Data   DataConfig   `yaml:"data"`
	Train  TrainConfig  `yaml:"train"`
	Grid   GridConfig   `yaml:"grid"`
	Report ReportConfig `yaml:"report"`
	Log    LogConfig    `yaml:"log"`
}

// DataConfig describes the input table and how it is split.
type DataConfig struct {
	Path           string  `yaml:"path"`
	Target         string  `yaml:"target"`
	FeatureToken   string  `yaml:"feature_token"`
	ScaleLow       float64 `yaml:"scale_low"`
	ScaleHigh      float64 `yaml:"scale_high"`
	ConstantPolicy string  `yaml:"constant_policy"` // "reject" or "low"
	TestFraction   float64 `yaml:"test_fraction"`
	Seed           int64   `yaml:"seed"`
}

// TrainConfig holds the hyperparameters of the single training run.
type TrainConfig struct {
	LearningRate float64 `yaml:"learning_rate"`
	Epochs       int     `yaml:"epochs"`
	LossEvery    int     `yaml:"loss_every"`
}

// GridConfig is the hyperparameter grid.
type GridConfig struct {
	LearningRates []float64 `yaml:"learning_rates"`
	Epochs        []int     `yaml:"epochs"`
	NJobs         int       `yaml:"n_jobs"`
}

// ReportConfig names optional chart outputs. Empty paths disable them.
type ReportConfig struct {
	HistogramPNG string `yaml:"histogram_png"`
	GridPNG      string `yaml:"grid_png"`
}

// LogConfig sets the log level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration: learning rate 0.1, 50000
// epochs, features scaled to [1, 10].
func Default() *Config {
	return &Config{
		Data: DataConfig{
			FeatureToken:   "Feature",
			ScaleLow:       1,
			ScaleHigh:      10,
			ConstantPolicy: "reject",
			TestFraction:   0.3,
			Seed:           42,
		},
		Train: TrainConfig{
			LearningRate: 0.1,
			Epochs:       50000,
		},
		Grid: GridConfig{
			LearningRates: []float64{0.01, 0.1, 0.5},
			Epochs:        []int{1000, 5000},
			NJobs:         1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "config: read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over Default. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.NewValueError("config.Parse", yaml.FormatError(err, false, true))
	}
	return cfg, nil
}

// Marshal encodes cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	d := c.Data
	if d.Target == "" {
		return errors.NewValidationError("data.target", "a target column is required", d.Target)
	}
	if math.IsNaN(d.ScaleLow) || math.IsNaN(d.ScaleHigh) || !(d.ScaleLow < d.ScaleHigh) {
		return errors.NewValidationError("data.scale_low", "must be below data.scale_high", [2]float64{d.ScaleLow, d.ScaleHigh})
	}
	if d.ConstantPolicy != "reject" && d.ConstantPolicy != "low" {
		return errors.NewValidationError("data.constant_policy", "must be 'reject' or 'low'", d.ConstantPolicy)
	}
	if !(d.TestFraction > 0 && d.TestFraction < 1) {
		return errors.NewValidationError("data.test_fraction", "must be in (0, 1)", d.TestFraction)
	}

	t := c.Train
	if !(t.LearningRate > 0) || math.IsInf(t.LearningRate, 0) {
		return errors.NewValidationError("train.learning_rate", "must be positive and finite", t.LearningRate)
	}
	if t.Epochs <= 0 {
		return errors.NewValidationError("train.epochs", "must be positive", t.Epochs)
	}
	if t.LossEvery < 0 {
		return errors.NewValidationError("train.loss_every", "must not be negative", t.LossEvery)
	}

	g := c.Grid
	if len(g.LearningRates) == 0 {
		return errors.NewValidationError("grid.learning_rates", "needs at least one value", g.LearningRates)
	}
	for _, lr := range g.LearningRates {
		if !(lr > 0) || math.IsInf(lr, 0) {
			return errors.NewValidationError("grid.learning_rates", "every value must be positive and finite", lr)
		}
	}
	if len(g.Epochs) == 0 {
		return errors.NewValidationError("grid.epochs", "needs at least one value", g.Epochs)
	}
	for _, e := range g.Epochs {
		if e <= 0 {
			return errors.NewValidationError("grid.epochs", "every value must be positive", e)
		}
	}
	if g.NJobs < 1 {
		return errors.NewValidationError("grid.n_jobs", "must be at least 1", g.NJobs)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.NewValidationError("log.level", "must be debug, info, warn or error", c.Log.Level)
	}
	return nil
}
