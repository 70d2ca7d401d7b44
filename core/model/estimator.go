package model

import (
	"cmp"

	"gonum.org/v1/gonum/mat"
)

// Classifier is a model trained on a feature matrix and a label vector.
// Labels are any ordered type so that the class order can be derived from the
// labels alone by sorting.
type Classifier[L cmp.Ordered] interface {
	// Fit trains the model. Every call starts from scratch.
	Fit(X mat.Matrix, y []L) error

	// Predict returns one label per row of X.
	Predict(X mat.Matrix) ([]L, error)
}

// ProbabilisticClassifier also exposes per-class probabilities.
type ProbabilisticClassifier[L cmp.Ordered] interface {
	Classifier[L]

	// PredictProba returns an (n_samples, n_classes) matrix whose columns
	// follow Classes().
	PredictProba(X mat.Matrix) (*mat.Dense, error)

	// Classes returns the class order learned by Fit.
	Classes() []L
}

// Scorer evaluates a fitted model on labelled data.
type Scorer[L cmp.Ordered] interface {
	// Score returns the accuracy of Predict(X) against y.
	Score(X mat.Matrix, y []L) (float64, error)
}

// Oracle is the fit/predict/score triple used to compare an alternative
// implementation against the softmax model.
type Oracle[L cmp.Ordered] interface {
	Classifier[L]
	Scorer[L]
	Name() string
}

// ParameterGetter is implemented by models that expose their hyperparameters.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
