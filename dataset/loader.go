package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/pkg/log"
	"github.com/YuminosukeSato/scigo-softmax/preprocessing"
	"gonum.org/v1/gonum/mat"
)

// DefaultFeatureToken is the naming convention for feature columns.
const DefaultFeatureToken = "Feature"

// Loader extracts a Dataset from a Table. Rows with a missing value in any
// column are always dropped, then every feature column is min-max rescaled.
type Loader struct {
	selector   FeatureSelector
	target     string
	scaleRange [2]float64
	policy     preprocessing.ConstantPolicy
	logger     log.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFeatureSelector replaces the default ContainsToken("Feature") selector.
func WithFeatureSelector(sel FeatureSelector) LoaderOption {
	return func(l *Loader) {
		l.selector = sel
	}
}

// WithTarget names the label column. It is required.
func WithTarget(column string) LoaderOption {
	return func(l *Loader) {
		l.target = column
	}
}

// WithScaleRange sets the range features are rescaled into.
func WithScaleRange(low, high float64) LoaderOption {
	return func(l *Loader) {
		l.scaleRange = [2]float64{low, high}
	}
}

// WithConstantPolicy sets how constant feature columns are handled.
func WithConstantPolicy(p preprocessing.ConstantPolicy) LoaderOption {
	return func(l *Loader) {
		l.policy = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader. Without options it selects columns containing
// "Feature", scales to [1, 10] and rejects constant columns.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		selector:   ContainsToken(DefaultFeatureToken),
		scaleRange: preprocessing.DefaultFeatureRange,
		policy:     preprocessing.ConstantReject,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = log.GetLoggerWithName("dataset")
	}
	l.logger = l.logger.With(log.ComponentKey, "dataset")
	return l
}

// Dataset is a scaled feature matrix with its aligned labels.
type Dataset struct {
	X            *mat.Dense
	Y            []string
	FeatureNames []string
	Target       string

	// Scaler holds the per-column min and max used to build X.
	Scaler *preprocessing.MinMaxScaler
}

// Load builds a Dataset from t.
func (l *Loader) Load(t *Table) (*Dataset, error) {
	start := time.Now()

	if l.target == "" {
		return nil, errors.NewValidationError("target", "a target column is required", l.target)
	}
	targetIdx := t.ColumnIndex(l.target)
	if targetIdx < 0 {
		return nil, errors.NewValueError("Loader.Load", fmt.Sprintf("target column '%s' not found", l.target))
	}

	var featureIdx []int
	var featureNames []string
	for i, name := range t.Columns {
		if i == targetIdx || !l.selector(name) {
			continue
		}
		featureIdx = append(featureIdx, i)
		featureNames = append(featureNames, name)
	}
	if len(featureIdx) == 0 {
		return nil, errors.NewValueError("Loader.Load", "no feature columns selected")
	}

	clean, dropped := t.DropMissing()
	if dropped > 0 {
		errors.Warn(errors.NewDataConversionWarning("table", "dataset",
			fmt.Sprintf("%d of %d rows dropped because of missing values", dropped, len(t.Rows))))
	}
	n := len(clean.Rows)
	if n == 0 {
		return nil, errors.NewModelError("Loader.Load", "no rows left after dropping missing values", errors.ErrEmptyData)
	}

	raw := mat.NewDense(n, len(featureIdx), nil)
	y := make([]string, n)
	for i, row := range clean.Rows {
		for j, col := range featureIdx {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil || math.IsInf(v, 0) {
				return nil, errors.NewValueError("Loader.Load",
					fmt.Sprintf("column '%s', row %d: %q is not a finite number", featureNames[j], i, row[col]))
			}
			raw.Set(i, j, v)
		}
		y[i] = strings.TrimSpace(row[targetIdx])
	}

	scaler := preprocessing.NewMinMaxScaler(l.scaleRange,
		preprocessing.WithConstantPolicy(l.policy),
		preprocessing.WithFeatureNames(featureNames))
	scaled, err := scaler.FitTransform(raw)
	if err != nil {
		l.logger.Error("Rescaling failed", log.ErrAttrKey, err)
		return nil, err
	}

	l.logger.Info("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.SamplesKey, n,
		log.FeaturesKey, len(featureIdx),
		log.DroppedRowsKey, dropped,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	return &Dataset{
		X:            toDense(scaled),
		Y:            y,
		FeatureNames: featureNames,
		Target:       l.target,
		Scaler:       scaler,
	}, nil
}

// LoadFile reads a CSV file and loads it.
func (l *Loader) LoadFile(path string) (*Dataset, error) {
	t, err := ReadCSVFile(path)
	if err != nil {
		return nil, err
	}
	return l.Load(t)
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Y)
}

// IntLabels parses every label as an integer, so numeric targets get a
// numeric class order.
func (d *Dataset) IntLabels() ([]int, error) {
	out := make([]int, len(d.Y))
	for i, s := range d.Y {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.NewValueError("Dataset.IntLabels",
				fmt.Sprintf("label %q at row %d is not an integer", s, i))
		}
		out[i] = v
	}
	return out, nil
}

func toDense(m mat.Matrix) *mat.Dense {
	if d, ok := m.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(m)
}
