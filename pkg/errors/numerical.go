package errors

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// maxReportedValues bounds the values carried by a NumericalInstabilityError.
const maxReportedValues = 10

// CheckScalar returns a NumericalInstabilityError if v is NaN or infinite.
func CheckScalar(op string, v float64, iteration int) error {
	if isFinite(v) {
		return nil
	}
	return NewNumericalInstabilityError(op, []float64{v}, iteration)
}

// CheckMatrix scans m in row-major order and reports the first non-finite
// entries it finds, at most ten of them.
func CheckMatrix(op string, m mat.Matrix, iteration int) error {
	r, c := m.Dims()
	var bad []float64
	for i := 0; i < r && len(bad) < maxReportedValues; i++ {
		for j := 0; j < c && len(bad) < maxReportedValues; j++ {
			if v := m.At(i, j); !isFinite(v) {
				bad = append(bad, v)
			}
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return NewNumericalInstabilityError(op, bad, iteration)
}

// LogSumExp returns log(sum(exp(z))) without overflowing. It is -Inf for an
// empty slice.
func LogSumExp(z []float64) float64 {
	if len(z) == 0 {
		return math.Inf(-1)
	}
	return floats.LogSumExp(z)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
