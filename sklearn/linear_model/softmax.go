package linear_model

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/YuminosukeSato/scigo-softmax/core/parallel"
	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Softmax applies the softmax function to each row of Z. Each row's maximum is
// subtracted before exponentiation, so large scores never overflow and every
// output row sums to 1.
func Softmax(Z mat.Matrix) *mat.Dense {
	r, c := Z.Dims()
	out := mat.NewDense(r, c, nil)
	softmaxInto(out, Z)
	return out
}

// softmaxInto writes Softmax(Z) into dst, which must have Z's shape.
func softmaxInto(dst *mat.Dense, Z mat.Matrix) {
	r, _ := Z.Dims()
	parallel.ParallelizeWithThreshold(r, parallel.RowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := dst.RawRowView(i)
			mat.Row(row, i, Z)
			softmaxRow(row)
		}
	})
}

func softmaxRow(v []float64) {
	maxScore := floats.Max(v)
	for k := range v {
		v[k] = math.Exp(v[k] - maxScore)
	}
	sum := floats.Sum(v)
	for k := range v {
		v[k] /= sum
	}
}

// UniqueClasses returns the distinct values of y in ascending order. The
// result depends on y alone, never on the order labels appear in.
func UniqueClasses[L cmp.Ordered](y []L) []L {
	classes := slices.Clone(y)
	slices.Sort(classes)
	return slices.Compact(classes)
}

// OneHotEncode returns the (len(y), len(classes)) indicator matrix with a
// single 1 per row, in the column of the row's label.
func OneHotEncode[L cmp.Ordered](y []L, classes []L) (*mat.Dense, error) {
	if len(y) == 0 || len(classes) == 0 {
		return nil, errors.NewModelError("OneHotEncode", "empty labels or classes", errors.ErrEmptyData)
	}
	index := classIndex(classes)

	Yoh := mat.NewDense(len(y), len(classes), nil)
	for i, label := range y {
		k, ok := index[label]
		if !ok {
			return nil, errors.NewValueError("OneHotEncode",
				fmt.Sprintf("label %v at row %d is not one of the %d classes", label, i, len(classes)))
		}
		Yoh.Set(i, k, 1)
	}
	return Yoh, nil
}

func classIndex[L cmp.Ordered](classes []L) map[L]int {
	index := make(map[L]int, len(classes))
	for k, c := range classes {
		index[c] = k
	}
	return index
}

// AddBiasColumn returns X with a column of ones prepended.
func AddBiasColumn(X mat.Matrix) *mat.Dense {
	r, c := X.Dims()
	out := mat.NewDense(r, c+1, nil)
	parallel.ParallelizeWithThreshold(r, parallel.RowThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			row[0] = 1
			mat.Row(row[1:], i, X)
		}
	})
	return out
}

// ArgMaxRows returns the column index of each row's largest entry. Ties go to
// the lowest index.
func ArgMaxRows(P mat.Matrix) []int {
	r, c := P.Dims()
	idx := make([]int, r)
	row := make([]float64, c)
	for i := 0; i < r; i++ {
		mat.Row(row, i, P)
		idx[i] = floats.MaxIdx(row)
	}
	return idx
}

// CrossEntropy is the mean negative log-likelihood of the one-hot targets
// Yoh under Softmax(Z). It works from the raw scores with log-sum-exp, so it
// stays finite when a probability underflows to zero.
func CrossEntropy(Z, Yoh mat.Matrix) float64 {
	r, c := Z.Dims()
	if r == 0 {
		return 0
	}
	z := make([]float64, c)
	t := make([]float64, c)
	total := 0.0
	for i := 0; i < r; i++ {
		mat.Row(z, i, Z)
		mat.Row(t, i, Yoh)
		total += errors.LogSumExp(z) - floats.Dot(t, z)
	}
	return total / float64(r)
}
