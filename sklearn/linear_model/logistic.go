package linear_model

import (
	"cmp"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/YuminosukeSato/scigo-softmax/core/model"
	"github.com/YuminosukeSato/scigo-softmax/metrics"
	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is a one-vs-rest logistic regression classifier trained
// by gradient descent with an L2 penalty, a decaying step size and a gradient
// tolerance stop. It serves as the reference model SoftmaxRegression is
// compared against.
type LogisticRegression[L cmp.Ordered] struct {
	state  *model.StateManager
	logger log.Logger

	// Hyperparameters
	penalty      string  // "l2" or "none"
	C            float64 // Inverse regularization strength
	fitIntercept bool
	learningRate float64 // Initial step size
	maxIter      int
	tol          float64 // Stop when the largest gradient entry falls below tol
	randomState  int64   // Seed for weight initialization, -1 for random

	// Model parameters
	coef_      [][]float64 // One row per class, or a single row for two classes
	intercept_ []float64
	classes_   []L
	nIter_     []int

	rand *rand.Rand
}

// LogisticRegressionOption is a functional option for LogisticRegression.
type LogisticRegressionOption func(*logisticConfig)

type logisticConfig struct {
	penalty      string
	C            float64
	fitIntercept bool
	learningRate float64
	maxIter      int
	tol          float64
	randomState  int64
	logger       log.Logger
}

// NewLogisticRegression creates a new LogisticRegression classifier.
func NewLogisticRegression[L cmp.Ordered](opts ...LogisticRegressionOption) *LogisticRegression[L] {
	cfg := logisticConfig{
		penalty:      "l2",
		C:            1.0,
		fitIntercept: true,
		learningRate: 1.0,
		maxIter:      1000,
		tol:          1e-4,
		randomState:  -1,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLoggerWithName("linear_model")
	}

	lr := &LogisticRegression[L]{
		state:        model.NewStateManager(),
		logger:       cfg.logger.With(log.ModelNameKey, "LogisticRegression"),
		penalty:      cfg.penalty,
		C:            cfg.C,
		fitIntercept: cfg.fitIntercept,
		learningRate: cfg.learningRate,
		maxIter:      cfg.maxIter,
		tol:          cfg.tol,
		randomState:  cfg.randomState,
	}
	lr.seed()
	return lr
}

func (lr *LogisticRegression[L]) seed() {
	if lr.randomState >= 0 {
		lr.rand = rand.New(rand.NewSource(lr.randomState))
	} else {
		lr.rand = rand.New(rand.NewSource(rand.Int63()))
	}
}

// WithLRPenalty sets the regularization type, "l2" or "none".
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(c *logisticConfig) {
		c.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength.
func WithLRC(C float64) LogisticRegressionOption {
	return func(c *logisticConfig) {
		c.C = C
	}
}

// WithLogisticFitIntercept sets whether to fit an intercept.
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(c *logisticConfig) {
		c.fitIntercept = fit
	}
}

// WithLRLearningRate sets the initial step size. The step at iteration t is
// learningRate / (1 + 0.1 t).
func WithLRLearningRate(rate float64) LogisticRegressionOption {
	return func(c *logisticConfig) {
		c.learningRate = rate
	}
}

// WithLRMaxIter sets the maximum number of iterations per class.
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(c *logisticConfig) {
		c.maxIter = maxIter
	}
}

// WithLRTol sets the gradient tolerance for stopping.
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(c *logisticConfig) {
		c.tol = tol
	}
}

// WithLRRandomState sets the seed used to initialize the weights.
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(c *logisticConfig) {
		c.randomState = seed
	}
}

// WithLRLogger sets the logger.
func WithLRLogger(logger log.Logger) LogisticRegressionOption {
	return func(c *logisticConfig) {
		c.logger = logger
	}
}

// Fit trains one binary classifier per class, or a single one for two
// classes.
func (lr *LogisticRegression[L]) Fit(X mat.Matrix, y []L) (err error) {
	defer errors.Recover(&err, "LogisticRegression.Fit")

	lr.state.Reset()

	if lr.penalty != "l2" && lr.penalty != "none" {
		return errors.NewValidationError("penalty", "must be 'l2' or 'none'", lr.penalty)
	}
	if lr.penalty == "l2" && !(lr.C > 0) {
		return errors.NewValidationError("C", "must be positive", lr.C)
	}
	if !(lr.learningRate > 0) || lr.maxIter <= 0 {
		return errors.NewValidationError("max_iter", "learning rate and iteration count must be positive", lr.maxIter)
	}

	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("LogisticRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != nSamples {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, len(y), 0)
	}

	start := time.Now()
	lr.seed()
	lr.classes_ = UniqueClasses(y)
	lr.initializeWeights(nFeatures)

	lr.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.ClassesKey, len(lr.classes_),
	)

	if len(lr.classes_) == 2 {
		// the single row scores classes_[1] against classes_[0]
		lr.fitBinary(X, indicator(y, lr.classes_[1]), 0)
	} else {
		for k, class := range lr.classes_ {
			lr.fitBinary(X, indicator(y, class), k)
		}
	}

	for k := range lr.coef_ {
		if err := errors.CheckScalar("LogisticRegression.Fit", lr.intercept_[k], lr.nIter_[k]); err != nil {
			return err
		}
	}

	lr.state.SetFitted(nFeatures, nSamples)
	lr.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		"n_iter", lr.nIter_,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// indicator returns 1 where y equals class and 0 elsewhere.
func indicator[L cmp.Ordered](y []L, class L) []float64 {
	out := make([]float64, len(y))
	for i, label := range y {
		if label == class {
			out[i] = 1
		}
	}
	return out
}

// initializeWeights draws small random starting weights.
func (lr *LogisticRegression[L]) initializeWeights(nFeatures int) {
	nRows := len(lr.classes_)
	if nRows == 2 {
		nRows = 1
	}

	lr.coef_ = make([][]float64, nRows)
	for i := range lr.coef_ {
		lr.coef_[i] = make([]float64, nFeatures)
		for j := range lr.coef_[i] {
			lr.coef_[i][j] = lr.rand.NormFloat64() * 0.01
		}
	}
	lr.intercept_ = make([]float64, nRows)
	lr.nIter_ = make([]int, nRows)
}

// fitBinary runs gradient descent on coefficient row k against 0/1 targets.
func (lr *LogisticRegression[L]) fitBinary(X mat.Matrix, target []float64, k int) {
	nSamples, nFeatures := X.Dims()
	weights := lr.coef_[k]
	intercept := &lr.intercept_[k]
	gradWeights := make([]float64, nFeatures)

	for iter := 0; iter < lr.maxIter; iter++ {
		for j := range gradWeights {
			gradWeights[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := *intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := sigmoid(z) - target[i]
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				gradWeights[j] += residual * X.At(i, j)
			}
		}

		for j := range gradWeights {
			gradWeights[j] /= float64(nSamples)
		}
		gradIntercept /= float64(nSamples)

		if lr.penalty == "l2" {
			lambda := 1.0 / (lr.C * float64(nSamples))
			for j := range weights {
				gradWeights[j] += lambda * weights[j]
			}
		}

		step := lr.learningRate / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= step * gradWeights[j]
		}
		if lr.fitIntercept {
			*intercept -= step * gradIntercept
		}

		lr.nIter_[k] = iter + 1

		maxGrad := math.Abs(gradIntercept)
		for _, g := range gradWeights {
			maxGrad = math.Max(maxGrad, math.Abs(g))
		}
		if maxGrad < lr.tol {
			return
		}
	}
}

// decision returns the raw score of row k of the coefficients for sample i.
func (lr *LogisticRegression[L]) decision(X mat.Matrix, i, k int) float64 {
	z := lr.intercept_[k]
	for j, w := range lr.coef_[k] {
		z += X.At(i, j) * w
	}
	return z
}

// PredictProba returns the (n_samples, n_classes) class probabilities. With
// more than two classes the one-vs-rest scores are normalized by softmax.
func (lr *LogisticRegression[L]) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	if err := lr.state.RequireFitted("LogisticRegression", "PredictProba"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if err := lr.state.RequireFeatures("LogisticRegression.PredictProba", nFeatures); err != nil {
		return nil, err
	}
	if nSamples == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "LogisticRegression.PredictProba")
	}

	nClasses := len(lr.classes_)
	probas := mat.NewDense(nSamples, nClasses, nil)

	switch nClasses {
	case 1:
		for i := 0; i < nSamples; i++ {
			probas.Set(i, 0, 1)
		}
	case 2:
		for i := 0; i < nSamples; i++ {
			p1 := sigmoid(lr.decision(X, i, 0))
			probas.Set(i, 0, 1-p1)
			probas.Set(i, 1, p1)
		}
	default:
		scores := mat.NewDense(nSamples, nClasses, nil)
		for i := 0; i < nSamples; i++ {
			for k := 0; k < nClasses; k++ {
				scores.Set(i, k, lr.decision(X, i, k))
			}
		}
		softmaxInto(probas, scores)
	}

	return probas, nil
}

// Predict returns the most probable class for each row of X.
func (lr *LogisticRegression[L]) Predict(X mat.Matrix) ([]L, error) {
	probas, err := lr.PredictProba(X)
	if err != nil {
		return nil, err
	}
	idx := ArgMaxRows(probas)
	labels := make([]L, len(idx))
	for i, k := range idx {
		labels[i] = lr.classes_[k]
	}
	return labels, nil
}

// Score returns the mean accuracy on the given data and labels.
func (lr *LogisticRegression[L]) Score(X mat.Matrix, y []L) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(y, pred)
}

// Classes returns the class order learned by Fit.
func (lr *LogisticRegression[L]) Classes() []L {
	return slices.Clone(lr.classes_)
}

// NIter returns the iterations run for each coefficient row.
func (lr *LogisticRegression[L]) NIter() []int {
	return slices.Clone(lr.nIter_)
}

// Name identifies the model in reports.
func (lr *LogisticRegression[L]) Name() string {
	return "LogisticRegression"
}

// GetParams returns the model hyperparameters.
func (lr *LogisticRegression[L]) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"learning_rate": lr.learningRate,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"random_state":  lr.randomState,
	}
}

// SetParams sets the model hyperparameters.
func (lr *LogisticRegression[L]) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		var ok bool
		switch key {
		case "penalty":
			lr.penalty, ok = value.(string)
		case "C":
			lr.C, ok = value.(float64)
		case "fit_intercept":
			lr.fitIntercept, ok = value.(bool)
		case "learning_rate":
			lr.learningRate, ok = value.(float64)
		case "max_iter":
			lr.maxIter, ok = value.(int)
		case "tol":
			lr.tol, ok = value.(float64)
		case "random_state":
			lr.randomState, ok = value.(int64)
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
		if !ok {
			return errors.NewValidationError(key, fmt.Sprintf("unexpected type %T", value), value)
		}
	}
	return nil
}

// sigmoid computes the logistic function.
func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

var (
	_ model.Oracle[string]               = (*LogisticRegression[string])(nil)
	_ model.ProbabilisticClassifier[int] = (*LogisticRegression[int])(nil)
	_ model.ParameterGetter              = (*LogisticRegression[int])(nil)
)
