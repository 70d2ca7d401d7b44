package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with original error",
			op:      "Fit",
			kind:    "training failed",
			err:     fmt.Errorf("test error"),
			wantMsg: "softmax: Fit: training failed: test error",
		},
		{
			name:    "without original error",
			op:      "Predict",
			kind:    "not fitted",
			err:     nil,
			wantMsg: "softmax: Predict: not fitted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("Expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}
		})
	}
}

func TestInvalidInputTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"dimension", NewDimensionError("Accuracy", 4, 3, 0)},
		{"validation", NewValidationError("learning_rate", "must be positive", -1.0)},
		{"value", NewValueError("Load", "column 'Feature1' row 3: not a number")},
		{"empty data", NewModelError("Fit", "empty data", ErrEmptyData)},
		{"wrapped", Wrap(NewDimensionError("Fit", 4, 2, 0), "training")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, ErrInvalidInput) {
				t.Errorf("expected %v to be an invalid input", tt.err)
			}
			if Is(tt.err, ErrDegenerateFeature) {
				t.Errorf("%v must not match ErrDegenerateFeature", tt.err)
			}
		})
	}
}

func TestDegenerateFeatureError(t *testing.T) {
	err := NewDegenerateFeatureError("MinMaxScaler.Fit", 2, 5)

	if !Is(err, ErrDegenerateFeature) {
		t.Fatal("expected ErrDegenerateFeature")
	}
	if Is(err, ErrInvalidInput) {
		t.Error("degenerate feature is its own class")
	}

	var degErr *DegenerateFeatureError
	if !As(err, &degErr) {
		t.Fatal("expected *DegenerateFeatureError")
	}
	if degErr.Column != 2 || degErr.Value != 5 {
		t.Errorf("unexpected fields: %+v", degErr)
	}
	if !strings.Contains(err.Error(), "#2") {
		t.Errorf("message should name the column: %s", err.Error())
	}

	degErr.Feature = "Feature3"
	if !strings.Contains(degErr.Error(), "Feature3") {
		t.Errorf("message should prefer the feature name: %s", degErr.Error())
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 3, 2, 1)

	want := "softmax: Predict: dimension mismatch on axis 1 (features). Expected 3, got 2"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Error("Error should be castable to *DimensionError")
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("SoftmaxRegression", "Predict")
	want := "softmax: SoftmaxRegression: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
	var nfErr *NotFittedError
	if !As(err, &nfErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestWarnUsesRegisteredSink(t *testing.T) {
	var got []error
	SetZerologWarnFunc(func(w error) { got = append(got, w) })
	defer SetZerologWarnFunc(nil)

	Warn(NewDataConversionWarning("table", "matrix", "2 rows dropped"))

	if len(got) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "2 rows dropped") {
		t.Errorf("unexpected warning: %v", got[0])
	}
}

func TestWarnFallsBackToHandler(t *testing.T) {
	var got error
	SetWarningHandler(func(w error) { got = w })
	defer SetWarningHandler(func(w error) {})

	Warn(NewDataConversionWarning("table", "matrix", "no samples"))
	if got == nil {
		t.Fatal("fallback handler not called")
	}
}

func TestCheckMatrix(t *testing.T) {
	ok := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := CheckMatrix("weights", ok, 0); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := mat.NewDense(2, 2, []float64{1, math.NaN(), 3, math.Inf(1)})
	err := CheckMatrix("weights", bad, 7)
	if err == nil {
		t.Fatal("expected numerical instability error")
	}
	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected *NumericalInstabilityError, got %T", err)
	}
	if numErr.Iteration != 7 {
		t.Errorf("iteration = %d, want 7", numErr.Iteration)
	}
	if len(numErr.Values) != 2 {
		t.Errorf("reported %d values, want both non-finite entries", len(numErr.Values))
	}

	if err := CheckScalar("loss", math.Inf(-1), 3); err == nil {
		t.Error("CheckScalar accepted -Inf")
	}
	if err := CheckScalar("loss", 0.25, 3); err != nil {
		t.Errorf("CheckScalar(0.25) = %v", err)
	}
}

func TestLogSumExp(t *testing.T) {
	got := LogSumExp([]float64{1000, 1000})
	want := 1000 + math.Log(2)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("LogSumExp = %v, want %v", got, want)
	}
	if !math.IsInf(LogSumExp(nil), -1) {
		t.Error("LogSumExp(nil) should be -Inf")
	}
}

func TestRecover(t *testing.T) {
	t.Run("panic becomes PanicError", func(t *testing.T) {
		fn := func() (err error) {
			defer Recover(&err, "SoftmaxRegression.Fit")
			panic("mat: dimension mismatch")
		}
		err := fn()
		var panicErr *PanicError
		if !As(err, &panicErr) {
			t.Fatalf("expected *PanicError, got %T", err)
		}
		if panicErr.Operation != "SoftmaxRegression.Fit" {
			t.Errorf("operation = %q", panicErr.Operation)
		}
		if panicErr.StackTrace == "" {
			t.Error("expected a stack trace")
		}
	})

	t.Run("existing error is kept", func(t *testing.T) {
		fn := func() (err error) {
			defer Recover(&err, "op")
			err = ErrEmptyData
			panic("boom")
		}
		err := fn()
		if !Is(err, ErrEmptyData) {
			t.Errorf("original error lost: %v", err)
		}
		if !strings.Contains(err.Error(), "boom") {
			t.Errorf("panic value lost: %v", err)
		}
	})

	t.Run("no panic", func(t *testing.T) {
		if err := SafeExecute("op", func() error { return nil }); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
