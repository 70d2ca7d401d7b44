// Package softmax is a multinomial (softmax) logistic regression library for
// Go with a grid-search tuner and an accuracy evaluator.
//
// The classifier is trained by full-batch gradient descent on a bias-augmented
// design matrix. Class labels can be any ordered type; the class order is the
// ascending order of the distinct labels seen by Fit.
//
// # Features
//
// - Numerically stable softmax and cross-entropy (max subtraction, log-sum-exp)
// - Deterministic training: zero initial weights, fixed epoch count
// - Grid search over learning rates and epochs, optionally in parallel
// - CSV loading with missing-value dropping and min-max scaling to [1, 10]
// - Typed errors with stack traces and structured zerolog logging
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scigo-softmax/sklearn/linear_model"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(4, 1, []float64{1, 2, 8, 9})
//	    y := []int{0, 0, 1, 1}
//
//	    model, err := linear_model.TrainSoftmax(X, y,
//	        linear_model.Params{LearningRate: 0.5, Epochs: 2000})
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    predictions, err := model.Predict(X)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println("Predictions:", predictions) // [0 0 1 1]
//	}
//
// # Packages
//
//   - sklearn/linear_model: SoftmaxRegression and the one-vs-rest
//     LogisticRegression used as a reference
//   - sklearn/model_selection: GridSearch over learning rate and epochs
//   - metrics: Accuracy, ClassCounts, ConfusionMatrix
//   - dataset: CSV tables, feature/target selection, train/test split
//   - preprocessing: MinMaxScaler
//   - report: console summaries and gonum/plot charts
//   - pkg/config: YAML configuration of the softmax-tuner command
//   - pkg/errors, pkg/log: error types and structured logging
//   - core/model, core/parallel: shared interfaces and row-parallel helpers
//
// # Performance
//
// Row-wise work (design matrix construction, softmax) is split across CPU
// cores once a matrix has 1000 rows or more. Each worker owns a disjoint row
// range, so parallel and sequential results are bit-identical.
//
// # License
//
// Released under the MIT License.
package softmax
