package dataset

import (
	"math"
	"math/rand"

	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Split shuffles the rows with a generator seeded by seed and returns the
// first round(testFraction*n) rows as the test set and the rest as the
// training set. The same seed always yields the same split.
func (d *Dataset) Split(testFraction float64, seed int64) (train, test *Dataset, err error) {
	if !(testFraction > 0 && testFraction < 1) {
		return nil, nil, errors.NewValidationError("test_fraction", "must be in (0, 1)", testFraction)
	}
	n := d.Len()
	nTest := int(math.Round(testFraction * float64(n)))
	if nTest == 0 || nTest == n {
		return nil, nil, errors.NewValueError("Dataset.Split",
			"too few rows to hold out a non-empty test set and a non-empty training set")
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	return d.subset(perm[nTest:]), d.subset(perm[:nTest]), nil
}

// subset copies the given rows, in the given order.
func (d *Dataset) subset(rows []int) *Dataset {
	_, c := d.X.Dims()
	X := mat.NewDense(len(rows), c, nil)
	y := make([]string, len(rows))
	for i, r := range rows {
		X.SetRow(i, d.X.RawRowView(r))
		y[i] = d.Y[r]
	}
	return &Dataset{
		X:            X,
		Y:            y,
		FeatureNames: d.FeatureNames,
		Target:       d.Target,
		Scaler:       d.Scaler,
	}
}
