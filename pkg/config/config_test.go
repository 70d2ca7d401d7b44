package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Train.LearningRate != 0.1 || cfg.Train.Epochs != 50000 {
		t.Errorf("default train = %+v, want learning rate 0.1 and 50000 epochs", cfg.Train)
	}
	if cfg.Data.ScaleLow != 1 || cfg.Data.ScaleHigh != 10 {
		t.Errorf("default scale range = [%g, %g], want [1, 10]", cfg.Data.ScaleLow, cfg.Data.ScaleHigh)
	}

	// only the target is missing from the defaults
	var vErr *errors.ValidationError
	if err := cfg.Validate(); !errors.As(err, &vErr) || vErr.ParamName != "data.target" {
		t.Errorf("Validate() = %v, want a data.target error", err)
	}
	cfg.Data.Target = "Species"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
data:
  path: iris.csv
  target: Species
train:
  learning_rate: 0.5
grid:
  learning_rates: [0.05, 0.2]
  n_jobs: 3
log:
  level: debug
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Data.Path != "iris.csv" || cfg.Data.Target != "Species" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Train.LearningRate != 0.5 || cfg.Train.Epochs != 50000 {
		t.Errorf("train = %+v, want learning rate 0.5 with the default epochs", cfg.Train)
	}
	if !reflect.DeepEqual(cfg.Grid.LearningRates, []float64{0.05, 0.2}) {
		t.Errorf("grid.learning_rates = %v", cfg.Grid.LearningRates)
	}
	if !reflect.DeepEqual(cfg.Grid.Epochs, []int{1000, 5000}) || cfg.Grid.NJobs != 3 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	if cfg.Data.FeatureToken != "Feature" || cfg.Log.Level != "debug" {
		t.Errorf("unexpected data/log config: %+v %+v", cfg.Data, cfg.Log)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "train:\n  momentum: 0.9\n"},
		{"wrong type", "train:\n  epochs: many\n"},
		{"malformed", "data: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"inverted scale", func(c *Config) { c.Data.ScaleLow, c.Data.ScaleHigh = 10, 1 }, "data.scale_low"},
		{"unknown policy", func(c *Config) { c.Data.ConstantPolicy = "drop" }, "data.constant_policy"},
		{"test fraction", func(c *Config) { c.Data.TestFraction = 1 }, "data.test_fraction"},
		{"learning rate", func(c *Config) { c.Train.LearningRate = 0 }, "train.learning_rate"},
		{"epochs", func(c *Config) { c.Train.Epochs = -1 }, "train.epochs"},
		{"loss every", func(c *Config) { c.Train.LossEvery = -1 }, "train.loss_every"},
		{"empty grid", func(c *Config) { c.Grid.LearningRates = nil }, "grid.learning_rates"},
		{"bad grid epochs", func(c *Config) { c.Grid.Epochs = []int{10, 0} }, "grid.epochs"},
		{"n jobs", func(c *Config) { c.Grid.NJobs = 0 }, "grid.n_jobs"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Data.Target = "y"
			tt.mutate(cfg)
			err := cfg.Validate()
			var vErr *errors.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.ParamName != tt.param {
				t.Errorf("error names %q, want %q", vErr.ParamName, tt.param)
			}
		})
	}
}

func TestLoadRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Data.Target = "label"
	cfg.Grid.NJobs = 2
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "softmax.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
