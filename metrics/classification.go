// Package metrics evaluates predicted class labels against true labels.
package metrics

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Accuracy is the fraction of positions where yPred equals yTrue.
func Accuracy[L comparable](yTrue, yPred []L) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewValueError("Accuracy", "empty label vector")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("Accuracy", n, len(yPred), 0)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ClassCount is the number of occurrences of one label.
type ClassCount[L cmp.Ordered] struct {
	Label L
	Count int
}

// ClassCounts counts each distinct label, ordered by label.
func ClassCounts[L cmp.Ordered](labels []L) []ClassCount[L] {
	counts := make(map[L]int)
	for _, l := range labels {
		counts[l]++
	}

	out := make([]ClassCount[L], 0, len(counts))
	for l, c := range counts {
		out = append(out, ClassCount[L]{Label: l, Count: c})
	}
	slices.SortFunc(out, func(a, b ClassCount[L]) int {
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}

// ConfusionMatrix counts (true, predicted) pairs: entry (i, j) is the number
// of samples of class classes[i] predicted as classes[j]. When classes is
// empty the sorted union of both label vectors is used.
func ConfusionMatrix[L cmp.Ordered](yTrue, yPred []L, classes []L) (*mat.Dense, []L, error) {
	n := len(yTrue)
	if n == 0 {
		return nil, nil, errors.NewValueError("ConfusionMatrix", "empty label vector")
	}
	if len(yPred) != n {
		return nil, nil, errors.NewDimensionError("ConfusionMatrix", n, len(yPred), 0)
	}

	if len(classes) == 0 {
		classes = slices.Concat(yTrue, yPred)
		slices.Sort(classes)
		classes = slices.Compact(classes)
	} else {
		classes = slices.Clone(classes)
	}

	index := make(map[L]int, len(classes))
	for k, c := range classes {
		index[c] = k
	}

	cm := mat.NewDense(len(classes), len(classes), nil)
	for i := range yTrue {
		t, ok := index[yTrue[i]]
		if !ok {
			return nil, nil, errors.NewValueError("ConfusionMatrix", fmt.Sprintf("true label %v is not a listed class", yTrue[i]))
		}
		p, ok := index[yPred[i]]
		if !ok {
			return nil, nil, errors.NewValueError("ConfusionMatrix", fmt.Sprintf("predicted label %v is not a listed class", yPred[i]))
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, classes, nil
}
