// Package preprocessing provides feature rescaling.
package preprocessing

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/scigo-softmax/core/model"
	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultFeatureRange is the target range used by the loader: every feature
// is mapped into [1, 10].
var DefaultFeatureRange = [2]float64{1, 10}

// ConstantPolicy decides what happens to a feature column whose minimum equals
// its maximum.
type ConstantPolicy int

const (
	// ConstantReject makes Fit fail with a DegenerateFeatureError.
	ConstantReject ConstantPolicy = iota
	// ConstantToLow maps every value of the column to the low end of the
	// feature range.
	ConstantToLow
)

func (p ConstantPolicy) String() string {
	switch p {
	case ConstantReject:
		return "reject"
	case ConstantToLow:
		return "low"
	default:
		return fmt.Sprintf("ConstantPolicy(%d)", int(p))
	}
}

// ParseConstantPolicy parses "reject" or "low".
func ParseConstantPolicy(s string) (ConstantPolicy, error) {
	switch s {
	case "", "reject":
		return ConstantReject, nil
	case "low", "clamp":
		return ConstantToLow, nil
	default:
		return ConstantReject, errors.NewValidationError("constant_policy", "must be 'reject' or 'low'", s)
	}
}

// MinMaxScaler maps each column independently onto FeatureRange:
//
//	v' = (v - min) / (max - min) * (high - low) + low
//
// using the column's own min and max from Fit.
type MinMaxScaler struct {
	state *model.StateManager

	// FeatureRange is [low, high]
	FeatureRange [2]float64

	// Policy handles zero-range columns
	Policy ConstantPolicy

	// FeatureNames, when set, are used in error messages
	FeatureNames []string

	// Learned per column
	DataMin  []float64
	DataMax  []float64
	Constant []bool
}

// MinMaxOption configures a MinMaxScaler.
type MinMaxOption func(*MinMaxScaler)

// WithConstantPolicy sets how zero-range columns are handled.
func WithConstantPolicy(p ConstantPolicy) MinMaxOption {
	return func(m *MinMaxScaler) {
		m.Policy = p
	}
}

// WithFeatureNames names the columns for error messages.
func WithFeatureNames(names []string) MinMaxOption {
	return func(m *MinMaxScaler) {
		m.FeatureNames = names
	}
}

// NewMinMaxScaler creates a scaler mapping onto featureRange.
//
// Example:
//
//	scaler := preprocessing.NewMinMaxScaler([2]float64{1, 10},
//	    preprocessing.WithConstantPolicy(preprocessing.ConstantToLow))
//	XScaled, err := scaler.FitTransform(X)
func NewMinMaxScaler(featureRange [2]float64, opts ...MinMaxOption) *MinMaxScaler {
	m := &MinMaxScaler{
		state:        model.NewStateManager(),
		FeatureRange: featureRange,
		Policy:       ConstantReject,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewMinMaxScalerDefault creates a scaler with DefaultFeatureRange that
// rejects constant columns.
func NewMinMaxScalerDefault() *MinMaxScaler {
	return NewMinMaxScaler(DefaultFeatureRange)
}

// Fit records each column's min and max.
func (m *MinMaxScaler) Fit(X mat.Matrix) error {
	m.state.Reset()

	low, high := m.FeatureRange[0], m.FeatureRange[1]
	if !(low < high) || math.IsInf(low, 0) || math.IsInf(high, 0) {
		return errors.NewValidationError("feature_range", "low must be finite and below high", m.FeatureRange)
	}

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("MinMaxScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	dataMin := make([]float64, c)
	dataMax := make([]float64, c)
	constant := make([]bool, c)

	for j := 0; j < c; j++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for i := 0; i < r; i++ {
			v := X.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errors.NewValueError("MinMaxScaler.Fit",
					fmt.Sprintf("non-finite value %v in %s, row %d", v, m.columnName(j), i))
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		dataMin[j], dataMax[j] = lo, hi

		if hi == lo {
			if m.Policy == ConstantReject {
				err := &errors.DegenerateFeatureError{
					Op:      "MinMaxScaler.Fit",
					Column:  j,
					Feature: m.featureName(j),
					Value:   lo,
				}
				return errors.WithStack(err)
			}
			constant[j] = true
		}
	}

	m.DataMin, m.DataMax, m.Constant = dataMin, dataMax, constant
	m.state.SetFitted(c, r)
	return nil
}

// Transform rescales X with the statistics learned by Fit.
func (m *MinMaxScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MinMaxScaler", "Transform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := m.state.RequireFeatures("MinMaxScaler.Transform", c); err != nil {
		return nil, err
	}

	low, high := m.FeatureRange[0], m.FeatureRange[1]
	span := high - low
	result := mat.NewDense(r, c, nil)

	for j := 0; j < c; j++ {
		if m.Constant[j] {
			for i := 0; i < r; i++ {
				result.Set(i, j, low)
			}
			continue
		}
		dataRange := m.DataMax[j] - m.DataMin[j]
		for i := 0; i < r; i++ {
			result.Set(i, j, (X.At(i, j)-m.DataMin[j])/dataRange*span+low)
		}
	}

	return result, nil
}

// FitTransform fits on X and rescales it.
func (m *MinMaxScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.Fit(X); err != nil {
		return nil, err
	}
	return m.Transform(X)
}

// InverseTransform maps scaled values back to the original units. Constant
// columns map back to their single original value.
func (m *MinMaxScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := m.state.RequireFitted("MinMaxScaler", "InverseTransform"); err != nil {
		return nil, err
	}
	r, c := X.Dims()
	if err := m.state.RequireFeatures("MinMaxScaler.InverseTransform", c); err != nil {
		return nil, err
	}

	low, high := m.FeatureRange[0], m.FeatureRange[1]
	span := high - low
	result := mat.NewDense(r, c, nil)

	for j := 0; j < c; j++ {
		dataRange := m.DataMax[j] - m.DataMin[j]
		for i := 0; i < r; i++ {
			if m.Constant[j] {
				result.Set(i, j, m.DataMin[j])
				continue
			}
			result.Set(i, j, (X.At(i, j)-low)/span*dataRange+m.DataMin[j])
		}
	}

	return result, nil
}

// IsFitted reports whether Fit succeeded.
func (m *MinMaxScaler) IsFitted() bool {
	return m.state.IsFitted()
}

// GetParams returns the scaler configuration.
func (m *MinMaxScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"feature_range":   m.FeatureRange,
		"constant_policy": m.Policy.String(),
	}
}

func (m *MinMaxScaler) String() string {
	if !m.IsFitted() {
		return fmt.Sprintf("MinMaxScaler(feature_range=[%g, %g], constant_policy=%s)",
			m.FeatureRange[0], m.FeatureRange[1], m.Policy)
	}
	nFeatures, _ := m.state.Dimensions()
	return fmt.Sprintf("MinMaxScaler(feature_range=[%g, %g], constant_policy=%s, n_features=%d)",
		m.FeatureRange[0], m.FeatureRange[1], m.Policy, nFeatures)
}

func (m *MinMaxScaler) featureName(j int) string {
	if j < len(m.FeatureNames) {
		return m.FeatureNames[j]
	}
	return ""
}

func (m *MinMaxScaler) columnName(j int) string {
	if name := m.featureName(j); name != "" {
		return fmt.Sprintf("column '%s'", name)
	}
	return fmt.Sprintf("column %d", j)
}

var _ model.Transformer = (*MinMaxScaler)(nil)
