// Package model_selection searches hyperparameter grids for the softmax
// classifier.
package model_selection

import (
	"cmp"
	"context"
	"math"
	"slices"
	"time"

	"github.com/YuminosukeSato/scigo-softmax/metrics"
	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/pkg/log"
	"github.com/YuminosukeSato/scigo-softmax/sklearn/linear_model"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// ParamGrid lists the candidate values of each hyperparameter.
type ParamGrid struct {
	LearningRates []float64
	Epochs        []int
}

// Size returns the number of combinations.
func (g ParamGrid) Size() int {
	return len(g.LearningRates) * len(g.Epochs)
}

// Combinations returns the Cartesian product of the grid, learning rate in
// the outer loop and epochs in the inner loop.
func (g ParamGrid) Combinations() []linear_model.Params {
	out := make([]linear_model.Params, 0, g.Size())
	for _, lr := range g.LearningRates {
		for _, epochs := range g.Epochs {
			out = append(out, linear_model.Params{LearningRate: lr, Epochs: epochs})
		}
	}
	return out
}

// Validate rejects empty lists and non-positive values.
func (g ParamGrid) Validate() error {
	if len(g.LearningRates) == 0 {
		return errors.NewValidationError("learning_rates", "grid needs at least one value", g.LearningRates)
	}
	if len(g.Epochs) == 0 {
		return errors.NewValidationError("epochs", "grid needs at least one value", g.Epochs)
	}
	for _, lr := range g.LearningRates {
		if !(lr > 0) || math.IsInf(lr, 0) {
			return errors.NewValidationError("learning_rates", "every value must be positive and finite", lr)
		}
	}
	for _, e := range g.Epochs {
		if e <= 0 {
			return errors.NewValidationError("epochs", "every value must be positive", e)
		}
	}
	return nil
}

// Estimator is the part of a classifier the search needs.
type Estimator[L cmp.Ordered] interface {
	Fit(X mat.Matrix, y []L) error
	Predict(X mat.Matrix) ([]L, error)
}

// Factory builds a fresh, unfitted estimator for one grid cell.
type Factory[L cmp.Ordered] func(p linear_model.Params) Estimator[L]

// SoftmaxFactory returns a Factory of SoftmaxRegression models sharing opts.
// The cell's learning rate and epochs override any given in opts.
func SoftmaxFactory[L cmp.Ordered](opts ...linear_model.SoftmaxOption) Factory[L] {
	return func(p linear_model.Params) Estimator[L] {
		cellOpts := append(slices.Clip(opts),
			linear_model.WithLearningRate(p.LearningRate),
			linear_model.WithEpochs(p.Epochs))
		return linear_model.NewSoftmaxRegression[L](cellOpts...)
	}
}

// CellResult is the evaluation of one grid cell.
type CellResult struct {
	Params   linear_model.Params
	Score    float64
	Duration time.Duration
}

// SearchResult holds every cell in grid order and the winner.
type SearchResult struct {
	BestParams linear_model.Params
	BestScore  float64
	BestIndex  int
	Results    []CellResult
}

type gridConfig struct {
	nJobs  int
	logger log.Logger
}

// GridSearchOption configures a GridSearch.
type GridSearchOption func(*gridConfig)

// WithNJobs sets how many cells are trained at once. Values below 2 run the
// grid sequentially.
func WithNJobs(n int) GridSearchOption {
	return func(c *gridConfig) {
		c.nJobs = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) GridSearchOption {
	return func(c *gridConfig) {
		c.logger = logger
	}
}

// GridSearch trains a fresh estimator for every combination of a ParamGrid,
// scores it by accuracy on an evaluation set and keeps the best.
//
// The best cell is the first one, in grid order, whose score is strictly
// greater than every earlier score. Training cells in parallel does not
// change the outcome.
type GridSearch[L cmp.Ordered] struct {
	grid    ParamGrid
	factory Factory[L]
	config  gridConfig
}

// NewGridSearch creates a search over grid using factory.
//
// Example:
//
//	gs := model_selection.NewGridSearch(grid, model_selection.SoftmaxFactory[string](),
//	    model_selection.WithNJobs(4))
//	res, err := gs.Search(Xtrain, ytrain, Xtest, ytest)
func NewGridSearch[L cmp.Ordered](grid ParamGrid, factory Factory[L], opts ...GridSearchOption) *GridSearch[L] {
	cfg := gridConfig{nJobs: 1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLoggerWithName("model_selection")
	}
	cfg.logger = cfg.logger.With(log.ComponentKey, "GridSearch")

	return &GridSearch[L]{grid: grid, factory: factory, config: cfg}
}

// Search evaluates every grid cell. It stops at the first cell that fails
// and returns that error with the cell's parameters attached; with several
// jobs no new cell starts after a failure, the running cells finish and the
// earliest failure in grid order is returned.
func (gs *GridSearch[L]) Search(Xtrain mat.Matrix, ytrain []L, Xeval mat.Matrix, yeval []L) (res *SearchResult, err error) {
	defer errors.Recover(&err, "GridSearch.Search")

	if err := gs.grid.Validate(); err != nil {
		return nil, err
	}
	if gs.factory == nil {
		return nil, errors.NewValidationError("factory", "must not be nil", nil)
	}
	if r, _ := Xeval.Dims(); r != len(yeval) {
		return nil, errors.NewDimensionError("GridSearch.Search", r, len(yeval), 0)
	}

	combos := gs.grid.Combinations()
	start := time.Now()
	gs.config.logger.Info("Grid search started",
		log.OperationKey, log.OperationSearch,
		log.GridSizeKey, len(combos),
		log.NJobsKey, gs.config.nJobs,
	)

	results := make([]CellResult, len(combos))
	if gs.config.nJobs < 2 {
		for i, p := range combos {
			cell, err := gs.evaluate(i, p, Xtrain, ytrain, Xeval, yeval)
			if err != nil {
				return nil, err
			}
			results[i] = cell
		}
	} else {
		errs := make([]error, len(combos))
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(gs.config.nJobs)
		for i, p := range combos {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				// cells queued behind a failure are skipped
				if ctx.Err() != nil {
					return nil
				}
				results[i], errs[i] = gs.evaluate(i, p, Xtrain, ytrain, Xeval, yeval)
				return errs[i]
			})
		}
		if err := g.Wait(); err != nil {
			for _, cellErr := range errs {
				if cellErr != nil {
					return nil, cellErr
				}
			}
		}
	}

	best := 0
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[best].Score {
			best = i
		}
	}

	res = &SearchResult{
		BestParams: results[best].Params,
		BestScore:  results[best].Score,
		BestIndex:  best,
		Results:    results,
	}

	gs.config.logger.Info("Grid search completed",
		log.OperationKey, log.OperationSearch,
		log.GridCellKey, best,
		log.LearningRateKey, res.BestParams.LearningRate,
		log.EpochsKey, res.BestParams.Epochs,
		log.AccuracyKey, res.BestScore,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// evaluate trains a fresh estimator for cell i and scores it.
func (gs *GridSearch[L]) evaluate(i int, p linear_model.Params, Xtrain mat.Matrix, ytrain []L, Xeval mat.Matrix, yeval []L) (CellResult, error) {
	cell := CellResult{Params: p}
	start := time.Now()

	err := errors.SafeExecute("GridSearch.evaluate", func() error {
		est := gs.factory(p)
		if est == nil {
			return errors.New("factory returned a nil estimator")
		}
		if err := est.Fit(Xtrain, ytrain); err != nil {
			return err
		}
		pred, err := est.Predict(Xeval)
		if err != nil {
			return err
		}
		cell.Score, err = metrics.Accuracy(yeval, pred)
		return err
	})
	cell.Duration = time.Since(start)

	if err != nil {
		gs.config.logger.Error("Grid cell failed",
			log.GridCellKey, i,
			log.LearningRateKey, p.LearningRate,
			log.EpochsKey, p.Epochs,
			log.ErrAttrKey, err,
		)
		return cell, errors.Wrapf(err, "grid cell %d (%s)", i, p)
	}

	gs.config.logger.Info("Grid cell evaluated",
		log.GridCellKey, i,
		log.LearningRateKey, p.LearningRate,
		log.EpochsKey, p.Epochs,
		log.AccuracyKey, cell.Score,
		log.DurationMsKey, cell.Duration.Milliseconds(),
	)
	return cell, nil
}
