// Command softmax-tuner trains a softmax regression classifier on a CSV
// table, compares it with a one-vs-rest logistic regression and searches a
// grid of learning rates and epoch counts.
//
//	softmax-tuner -data iris.csv -target Species -lr 0.1 -epochs 5000 -njobs 4
//
// Settings come from the YAML file given with -config (see pkg/config);
// flags override the file.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/YuminosukeSato/scigo-softmax/dataset"
	"github.com/YuminosukeSato/scigo-softmax/metrics"
	"github.com/YuminosukeSato/scigo-softmax/pkg/config"
	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/pkg/log"
	"github.com/YuminosukeSato/scigo-softmax/preprocessing"
	"github.com/YuminosukeSato/scigo-softmax/report"
	"github.com/YuminosukeSato/scigo-softmax/sklearn/linear_model"
	"github.com/YuminosukeSato/scigo-softmax/sklearn/model_selection"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		slog.Error("softmax-tuner failed", log.ErrAttr(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional config file and applies the flags that were
// set explicitly on the command line.
func loadConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("softmax-tuner", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML configuration file")
	dataPath := fs.String("data", "", "CSV file with a header row")
	target := fs.String("target", "", "target column name")
	lr := fs.Float64("lr", linear_model.DefaultLearningRate, "learning rate of the main training run")
	epochs := fs.Int("epochs", linear_model.DefaultEpochs, "epochs of the main training run")
	logLevel := fs.String("log-level", "info", "debug, info, warn or error")
	nJobs := fs.Int("njobs", 1, "grid cells trained in parallel")
	histogram := fs.String("histogram", "", "write the predicted-class histogram to this PNG")
	gridPNG := fs.String("grid-png", "", "write the grid-search chart to this PNG")
	if err := fs.Parse(args); err != nil {
		return nil, errors.NewValueError("flags", err.Error())
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data.Path = *dataPath
		case "target":
			cfg.Data.Target = *target
		case "lr":
			cfg.Train.LearningRate = *lr
		case "epochs":
			cfg.Train.Epochs = *epochs
		case "log-level":
			cfg.Log.Level = *logLevel
		case "njobs":
			cfg.Grid.NJobs = *nJobs
		case "histogram":
			cfg.Report.HistogramPNG = *histogram
		case "grid-png":
			cfg.Report.GridPNG = *gridPNG
		}
	})

	if cfg.Data.Path == "" {
		return nil, errors.NewValidationError("data.path", "a CSV file is required (-data or data.path)", cfg.Data.Path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(args []string, stdout io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if err := log.SetupLogger(cfg.Log.Level); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("softmax-tuner")
	start := time.Now()

	policy, err := preprocessing.ParseConstantPolicy(cfg.Data.ConstantPolicy)
	if err != nil {
		return err
	}
	loader := dataset.NewLoader(
		dataset.WithTarget(cfg.Data.Target),
		dataset.WithFeatureSelector(dataset.ContainsToken(cfg.Data.FeatureToken)),
		dataset.WithScaleRange(cfg.Data.ScaleLow, cfg.Data.ScaleHigh),
		dataset.WithConstantPolicy(policy),
	)
	ds, err := loader.LoadFile(cfg.Data.Path)
	if err != nil {
		return err
	}
	train, test, err := ds.Split(cfg.Data.TestFraction, cfg.Data.Seed)
	if err != nil {
		return err
	}

	params := linear_model.Params{LearningRate: cfg.Train.LearningRate, Epochs: cfg.Train.Epochs}
	softmax, err := linear_model.TrainSoftmax(train.X, train.Y, params,
		linear_model.WithLossEvery(cfg.Train.LossEvery))
	if err != nil {
		return err
	}
	softmaxAcc, err := softmax.Score(test.X, test.Y)
	if err != nil {
		return err
	}
	pred, err := softmax.Predict(test.X)
	if err != nil {
		return err
	}

	reference := linear_model.NewLogisticRegression[string](linear_model.WithLRRandomState(cfg.Data.Seed))
	if err := reference.Fit(train.X, train.Y); err != nil {
		return err
	}
	referenceAcc, err := reference.Score(test.X, test.Y)
	if err != nil {
		return err
	}

	grid := model_selection.ParamGrid{LearningRates: cfg.Grid.LearningRates, Epochs: cfg.Grid.Epochs}
	search := model_selection.NewGridSearch(grid, model_selection.SoftmaxFactory[string](),
		model_selection.WithNJobs(cfg.Grid.NJobs))
	res, err := search.Search(train.X, train.Y, test.X, test.Y)
	if err != nil {
		return err
	}

	summary := &report.Summary{
		Source:   cfg.Data.Path,
		Train:    train.Len(),
		Test:     test.Len(),
		Features: len(ds.FeatureNames),
		Classes:  len(softmax.Classes()),
		Models: []report.ModelScore{
			{Name: fmt.Sprintf("Softmax regression (%s)", params), Accuracy: softmaxAcc},
			{Name: "Logistic regression (one-vs-rest)", Accuracy: referenceAcc},
		},
		Search: res,
	}
	if err := summary.Write(stdout); err != nil {
		return err
	}

	counts := metrics.ClassCounts(pred)
	fmt.Fprintln(stdout)
	if err := report.WriteHistogram(stdout, "Predicted classes (softmax, test split):", counts, report.DefaultBarWidth); err != nil {
		return err
	}
	cm, classes, err := metrics.ConfusionMatrix(test.Y, pred, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "\nConfusion matrix (softmax, test split):")
	if err := report.WriteConfusionMatrix(stdout, cm, classes); err != nil {
		return err
	}

	if path := cfg.Report.HistogramPNG; path != "" {
		if err := report.SaveHistogramPNG(path, "Predicted classes", counts); err != nil {
			return err
		}
	}
	if path := cfg.Report.GridPNG; path != "" {
		if err := report.SaveGridPNG(path, res); err != nil {
			return err
		}
	}

	logger.Info("Run completed",
		log.AccuracyKey, softmaxAcc,
		log.GridCellKey, res.BestIndex,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}
