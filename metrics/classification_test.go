package metrics

import (
	"reflect"
	"testing"

	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []int
		yPred []int
		want  float64
	}{
		{"one miss in four", []int{0, 1, 1, 0}, []int{0, 1, 0, 0}, 0.75},
		{"perfect", []int{2, 2, 1}, []int{2, 2, 1}, 1.0},
		{"all wrong", []int{0, 1}, []int{1, 0}, 0.0},
		{"single sample", []int{5}, []int{5}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccuracyStringLabels(t *testing.T) {
	got, err := Accuracy([]string{"setosa", "virginica"}, []string{"setosa", "versicolor"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0.5 {
		t.Errorf("Accuracy() = %v, want 0.5", got)
	}
}

func TestAccuracyErrors(t *testing.T) {
	t.Run("length mismatch", func(t *testing.T) {
		_, err := Accuracy([]int{0, 1}, []int{0})
		var dimErr *errors.DimensionError
		if !errors.As(err, &dimErr) {
			t.Fatalf("expected DimensionError, got %v", err)
		}
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Error("length mismatch should be an invalid input")
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Accuracy([]int{}, []int{})
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("expected invalid input, got %v", err)
		}
	})
}

func TestClassCounts(t *testing.T) {
	got := ClassCounts([]string{"b", "a", "c", "a", "b", "a"})
	want := []ClassCount[string]{
		{Label: "a", Count: 3},
		{Label: "b", Count: 2},
		{Label: "c", Count: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ClassCounts() = %v, want %v", got, want)
	}

	if got := ClassCounts([]int{}); len(got) != 0 {
		t.Errorf("ClassCounts(empty) = %v, want empty", got)
	}
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := []int{0, 0, 1, 1, 2}
	yPred := []int{0, 1, 1, 1, 0}

	cm, classes, err := ConfusionMatrix(yTrue, yPred, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(classes, []int{0, 1, 2}) {
		t.Errorf("classes = %v, want [0 1 2]", classes)
	}
	want := mat.NewDense(3, 3, []float64{
		1, 1, 0,
		0, 2, 0,
		1, 0, 0,
	})
	if !mat.Equal(cm, want) {
		t.Errorf("ConfusionMatrix() =\n%v\nwant\n%v", mat.Formatted(cm), mat.Formatted(want))
	}

	trace := 0.0
	for i := 0; i < 3; i++ {
		trace += cm.At(i, i)
	}
	acc, _ := Accuracy(yTrue, yPred)
	if trace/float64(len(yTrue)) != acc {
		t.Errorf("diagonal share %v does not match accuracy %v", trace/float64(len(yTrue)), acc)
	}
}

func TestConfusionMatrixErrors(t *testing.T) {
	if _, _, err := ConfusionMatrix([]int{0, 3}, []int{0, 1}, []int{0, 1}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected invalid input for an unknown label, got %v", err)
	}
	if _, _, err := ConfusionMatrix([]int{0}, []int{0, 1}, nil); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected invalid input for a length mismatch, got %v", err)
	}
}
