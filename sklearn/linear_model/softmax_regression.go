package linear_model

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/YuminosukeSato/scigo-softmax/core/model"
	"github.com/YuminosukeSato/scigo-softmax/metrics"
	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/pkg/log"
	"gonum.org/v1/gonum/mat"
)

// Default hyperparameters.
const (
	DefaultLearningRate = 0.1
	DefaultEpochs       = 50000
)

// Params are the hyperparameters of SoftmaxRegression.
type Params struct {
	LearningRate float64
	Epochs       int
}

// DefaultParams returns learning rate 0.1 and 50000 epochs.
func DefaultParams() Params {
	return Params{LearningRate: DefaultLearningRate, Epochs: DefaultEpochs}
}

// Validate checks that the learning rate is a positive finite number and that
// there is at least one epoch.
func (p Params) Validate() error {
	if !(p.LearningRate > 0) || math.IsInf(p.LearningRate, 0) {
		return errors.NewValidationError("learning_rate", "must be positive and finite", p.LearningRate)
	}
	if p.Epochs <= 0 {
		return errors.NewValidationError("epochs", "must be positive", p.Epochs)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("learning_rate=%g epochs=%d", p.LearningRate, p.Epochs)
}

type softmaxConfig struct {
	learningRate float64
	epochs       int
	lossEvery    int
	logger       log.Logger
}

// SoftmaxOption configures a SoftmaxRegression.
type SoftmaxOption func(*softmaxConfig)

// WithLearningRate sets the gradient step size.
func WithLearningRate(lr float64) SoftmaxOption {
	return func(c *softmaxConfig) {
		c.learningRate = lr
	}
}

// WithEpochs sets the number of full-batch gradient steps.
func WithEpochs(epochs int) SoftmaxOption {
	return func(c *softmaxConfig) {
		c.epochs = epochs
	}
}

// WithLossEvery records the cross-entropy loss of the weights entering every
// k-th epoch. Zero disables it.
func WithLossEvery(k int) SoftmaxOption {
	return func(c *softmaxConfig) {
		c.lossEvery = k
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) SoftmaxOption {
	return func(c *softmaxConfig) {
		c.logger = logger
	}
}

// SoftmaxRegression is multinomial logistic regression trained by full-batch
// gradient descent.
//
// The weight matrix has shape (n_features+1, n_classes); row 0 holds the bias.
// Classes are the distinct training labels in ascending order and column k of
// the weights belongs to Classes()[k]. Every Fit starts from zero weights and
// runs exactly the configured number of epochs.
type SoftmaxRegression[L cmp.Ordered] struct {
	state  *model.StateManager
	config softmaxConfig

	weights     *mat.Dense
	classes     []L
	lossHistory []float64
}

// NewSoftmaxRegression creates an unfitted model.
//
// Example:
//
//	clf := linear_model.NewSoftmaxRegression[string](
//	    linear_model.WithLearningRate(0.5),
//	    linear_model.WithEpochs(2000),
//	)
//	if err := clf.Fit(X, y); err != nil {
//	    return err
//	}
//	labels, err := clf.Predict(Xtest)
func NewSoftmaxRegression[L cmp.Ordered](opts ...SoftmaxOption) *SoftmaxRegression[L] {
	cfg := softmaxConfig{
		learningRate: DefaultLearningRate,
		epochs:       DefaultEpochs,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLoggerWithName("linear_model")
	}
	cfg.logger = cfg.logger.With(log.ModelNameKey, "SoftmaxRegression")

	return &SoftmaxRegression[L]{
		state:  model.NewStateManager(),
		config: cfg,
	}
}

// TrainSoftmax constructs a model with params and fits it.
func TrainSoftmax[L cmp.Ordered](X mat.Matrix, y []L, params Params, opts ...SoftmaxOption) (*SoftmaxRegression[L], error) {
	opts = append(slices.Clip(opts), WithLearningRate(params.LearningRate), WithEpochs(params.Epochs))
	m := NewSoftmaxRegression[L](opts...)
	if err := m.Fit(X, y); err != nil {
		return nil, err
	}
	return m, nil
}

// Fit trains the model on X and y from zero weights.
func (m *SoftmaxRegression[L]) Fit(X mat.Matrix, y []L) (err error) {
	defer errors.Recover(&err, "SoftmaxRegression.Fit")

	m.state.Reset()
	m.weights, m.classes, m.lossHistory = nil, nil, nil

	if err := m.Params().Validate(); err != nil {
		return err
	}
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return errors.NewModelError("SoftmaxRegression.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != n {
		return errors.NewDimensionError("SoftmaxRegression.Fit", n, len(y), 0)
	}
	if err := checkFinite("SoftmaxRegression.Fit", X); err != nil {
		return err
	}

	start := time.Now()
	classes := UniqueClasses(y)
	nClasses := len(classes)

	m.config.logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, d,
		log.ClassesKey, nClasses,
		log.LearningRateKey, m.config.learningRate,
		log.EpochsKey, m.config.epochs,
	)

	Yoh, err := OneHotEncode(y, classes)
	if err != nil {
		return err
	}
	Xaug := AddBiasColumn(X)
	W := mat.NewDense(d+1, nClasses, nil)

	var history []float64
	Z := mat.NewDense(n, nClasses, nil)
	P := mat.NewDense(n, nClasses, nil)
	E := mat.NewDense(n, nClasses, nil)
	G := mat.NewDense(d+1, nClasses, nil)
	step := m.config.learningRate / float64(n)

	for epoch := 1; epoch <= m.config.epochs; epoch++ {
		Z.Mul(Xaug, W)
		if m.config.lossEvery > 0 && epoch%m.config.lossEvery == 0 {
			loss := CrossEntropy(Z, Yoh)
			history = append(history, loss)
			m.config.logger.Debug("Training progress",
				log.EpochKey, epoch,
				log.LossKey, loss,
			)
		}
		softmaxInto(P, Z)
		E.Sub(Yoh, P)
		G.Mul(Xaug.T(), E)
		G.Scale(step, G)
		W.Add(W, G)
	}

	if err := errors.CheckMatrix("SoftmaxRegression.Fit", W, m.config.epochs); err != nil {
		m.config.logger.Error("Training diverged",
			log.LearningRateKey, m.config.learningRate,
			log.ErrAttrKey, err,
		)
		return err
	}

	Z.Mul(Xaug, W)
	finalLoss := CrossEntropy(Z, Yoh)

	m.weights = W
	m.classes = classes
	m.lossHistory = history
	m.state.SetFitted(d, n)

	m.config.logger.Info("Training completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.LossKey, finalLoss,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// PredictProba returns the (n_samples, n_classes) class probabilities of X.
func (m *SoftmaxRegression[L]) PredictProba(X mat.Matrix) (proba *mat.Dense, err error) {
	defer errors.Recover(&err, "SoftmaxRegression.PredictProba")

	Z, err := m.scores(X, "PredictProba")
	if err != nil {
		return nil, err
	}
	softmaxInto(Z, Z)
	return Z, nil
}

// PredictIndex returns the class index with the highest probability for each
// row of X. Ties go to the lowest index.
func (m *SoftmaxRegression[L]) PredictIndex(X mat.Matrix) ([]int, error) {
	P, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return ArgMaxRows(P), nil
}

// Predict returns the most probable class label for each row of X.
func (m *SoftmaxRegression[L]) Predict(X mat.Matrix) ([]L, error) {
	idx, err := m.PredictIndex(X)
	if err != nil {
		return nil, err
	}
	labels := make([]L, len(idx))
	for i, k := range idx {
		labels[i] = m.classes[k]
	}
	return labels, nil
}

// scores checks X against the fitted state and returns Xaug·W.
func (m *SoftmaxRegression[L]) scores(X mat.Matrix, method string) (*mat.Dense, error) {
	if err := m.state.RequireFitted("SoftmaxRegression", method); err != nil {
		return nil, err
	}
	n, d := X.Dims()
	if err := m.state.RequireFeatures("SoftmaxRegression."+method, d); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "SoftmaxRegression.%s", method)
	}
	Z := mat.NewDense(n, len(m.classes), nil)
	Z.Mul(AddBiasColumn(X), m.weights)
	return Z, nil
}

// Score returns the accuracy of Predict(X) against y.
func (m *SoftmaxRegression[L]) Score(X mat.Matrix, y []L) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(y, pred)
}

// Weights returns a copy of the learned (n_features+1, n_classes) weight
// matrix, or nil before Fit.
func (m *SoftmaxRegression[L]) Weights() mat.Matrix {
	if !m.state.IsFitted() {
		return nil
	}
	return mat.DenseCopyOf(m.weights)
}

// Classes returns the class order learned by Fit.
func (m *SoftmaxRegression[L]) Classes() []L {
	return slices.Clone(m.classes)
}

// NFeatures returns the number of features seen by Fit.
func (m *SoftmaxRegression[L]) NFeatures() int {
	nFeatures, _ := m.state.Dimensions()
	return nFeatures
}

// LossHistory returns the losses recorded with WithLossEvery.
func (m *SoftmaxRegression[L]) LossHistory() []float64 {
	return slices.Clone(m.lossHistory)
}

// IsFitted reports whether Fit succeeded.
func (m *SoftmaxRegression[L]) IsFitted() bool {
	return m.state.IsFitted()
}

// Params returns the configured hyperparameters.
func (m *SoftmaxRegression[L]) Params() Params {
	return Params{LearningRate: m.config.learningRate, Epochs: m.config.epochs}
}

// GetParams returns the hyperparameters by name.
func (m *SoftmaxRegression[L]) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"learning_rate": m.config.learningRate,
		"epochs":        m.config.epochs,
		"loss_every":    m.config.lossEvery,
	}
}

// Name identifies the model in reports.
func (m *SoftmaxRegression[L]) Name() string {
	return "SoftmaxRegression"
}

func checkFinite(op string, X mat.Matrix) error {
	r, c := X.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := X.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewValueError(op, fmt.Sprintf("non-finite feature value %v at row %d, column %d", v, i, j))
			}
		}
	}
	return nil
}

var (
	_ model.ProbabilisticClassifier[int] = (*SoftmaxRegression[int])(nil)
	_ model.Oracle[string]               = (*SoftmaxRegression[string])(nil)
	_ model.ParameterGetter              = (*SoftmaxRegression[int])(nil)
)
