package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
	"github.com/YuminosukeSato/scigo-softmax/pkg/log"
	"github.com/YuminosukeSato/scigo-softmax/preprocessing"
	"gonum.org/v1/gonum/mat"
)

const irisLike = `Id,Feature_SepalLength,Feature_PetalLength,Species
1,5.1,1.4,setosa
2,4.9,,setosa
3,7.0,4.7,versicolor
4,6.4,4.5,versicolor
5,NA,6.0,virginica
6,6.3,6.0,virginica
7,5.8,5.1,virginica
`

func quietLoader(opts ...LoaderOption) (*Loader, *log.TestLogger) {
	logger, _ := log.NewTestLogger(log.LevelDebug)
	return NewLoader(append([]LoaderOption{WithLogger(logger)}, opts...)...), logger
}

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(irisLike))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	want := []string{"Id", "Feature_SepalLength", "Feature_PetalLength", "Species"}
	if !reflect.DeepEqual(table.Columns, want) {
		t.Errorf("Columns = %v, want %v", table.Columns, want)
	}
	if len(table.Rows) != 7 {
		t.Errorf("len(Rows) = %d, want 7", len(table.Rows))
	}
	if idx := table.ColumnIndex("Species"); idx != 3 {
		t.Errorf("ColumnIndex(Species) = %d, want 3", idx)
	}
	if idx := table.ColumnIndex("missing"); idx != -1 {
		t.Errorf("ColumnIndex(missing) = %d, want -1", idx)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"ragged row", "a,b\n1,2\n3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Errorf("expected invalid input, got %v", err)
			}
		})
	}
}

func TestDropMissing(t *testing.T) {
	table := &Table{
		Columns: []string{"a", "b"},
		Rows: [][]string{
			{"1", "2"},
			{"", "2"},
			{"1", "  "},
			{"NA", "2"},
			{"1", "NaN"},
			{"null", "2"},
			{"3", "4"},
		},
	}
	clean, dropped := table.DropMissing()
	if dropped != 5 {
		t.Errorf("dropped = %d, want 5", dropped)
	}
	want := [][]string{{"1", "2"}, {"3", "4"}}
	if !reflect.DeepEqual(clean.Rows, want) {
		t.Errorf("Rows = %v, want %v", clean.Rows, want)
	}
	if len(table.Rows) != 7 {
		t.Error("DropMissing must not modify the receiver")
	}
}

func TestFeatureSelectors(t *testing.T) {
	sel := ContainsToken("Feature")
	if !sel("Feature_x") || !sel("my Feature") || sel("feature_x") || sel("Species") {
		t.Error("ContainsToken matched unexpectedly")
	}
	cols := Columns("a", "c")
	if !cols("a") || cols("b") || !cols("c") {
		t.Error("Columns matched unexpectedly")
	}
}

func TestLoaderLoad(t *testing.T) {
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	defer log.SetProvider(log.NewZerologProvider(os.Stderr, log.LevelInfo))

	table, err := ReadCSV(strings.NewReader(irisLike))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	loader, logger := quietLoader(WithTarget("Species"))

	ds, err := loader.Load(table)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	r, c := ds.X.Dims()
	if r != 5 || c != 2 || ds.Len() != 5 {
		t.Fatalf("shape = (%d, %d) with %d labels, want (5, 2) with 5", r, c, ds.Len())
	}
	wantNames := []string{"Feature_SepalLength", "Feature_PetalLength"}
	if !reflect.DeepEqual(ds.FeatureNames, wantNames) {
		t.Errorf("FeatureNames = %v, want %v", ds.FeatureNames, wantNames)
	}
	wantY := []string{"setosa", "versicolor", "versicolor", "virginica", "virginica"}
	if !reflect.DeepEqual(ds.Y, wantY) {
		t.Errorf("Y = %v, want %v", ds.Y, wantY)
	}

	// sepal length over surviving rows: min 5.1, max 7.0
	if got := ds.X.At(0, 0); got != 1 {
		t.Errorf("X[0,0] = %g, want 1", got)
	}
	if got := ds.X.At(1, 0); got != 10 {
		t.Errorf("X[1,0] = %g, want 10", got)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := ds.X.At(i, j); v < 1 || v > 10 {
				t.Errorf("X[%d,%d] = %g outside [1, 10]", i, j, v)
			}
		}
	}

	if !logger.ContainsMessage("Dataset loaded") {
		t.Error("expected a load log entry")
	}
	if !logger.ContainsField(log.DroppedRowsKey, float64(2)) {
		t.Error("expected the dropped row count in the log entry")
	}
	if !provider.Logger().ContainsMessage("rows dropped because of missing values") {
		t.Error("expected a data conversion warning")
	}
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		csv    string
		opts   []LoaderOption
		target error
	}{
		{
			name:   "no target configured",
			csv:    "Feature_a,y\n1,0\n",
			target: errors.ErrInvalidInput,
		},
		{
			name:   "unknown target",
			csv:    "Feature_a,y\n1,0\n",
			opts:   []LoaderOption{WithTarget("label")},
			target: errors.ErrInvalidInput,
		},
		{
			name:   "no feature columns",
			csv:    "a,y\n1,0\n",
			opts:   []LoaderOption{WithTarget("y")},
			target: errors.ErrInvalidInput,
		},
		{
			name:   "every row missing",
			csv:    "Feature_a,y\n,0\n1,\n",
			opts:   []LoaderOption{WithTarget("y")},
			target: errors.ErrEmptyData,
		},
		{
			name:   "non-numeric feature",
			csv:    "Feature_a,y\n1,0\nabc,1\n",
			opts:   []LoaderOption{WithTarget("y")},
			target: errors.ErrInvalidInput,
		},
		{
			name:   "constant feature",
			csv:    "Feature_a,Feature_b,y\n1,5,0\n2,5,1\n",
			opts:   []LoaderOption{WithTarget("y")},
			target: errors.ErrDegenerateFeature,
		},
		{
			name:   "bad scale range",
			csv:    "Feature_a,y\n1,0\n2,1\n",
			opts:   []LoaderOption{WithTarget("y"), WithScaleRange(10, 1)},
			target: errors.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadCSV(strings.NewReader(tt.csv))
			if err != nil {
				t.Fatalf("ReadCSV failed: %v", err)
			}
			loader, _ := quietLoader(tt.opts...)
			_, err = loader.Load(table)
			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestLoaderConstantToLow(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("Feature_a,Feature_b,y\n1,5,0\n2,5,1\n"))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	loader, _ := quietLoader(WithTarget("y"), WithConstantPolicy(preprocessing.ConstantToLow))
	ds, err := loader.Load(table)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := mat.NewDense(2, 2, []float64{1, 1, 10, 1})
	if !mat.Equal(ds.X, want) {
		t.Errorf("X =\n%v\nwant\n%v", mat.Formatted(ds.X), mat.Formatted(want))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("Feature_a,y\n1,0\n3,1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	loader, _ := quietLoader(WithTarget("y"), WithFeatureSelector(Columns("Feature_a")))
	ds, err := loader.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if ds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", ds.Len())
	}

	if _, err := loader.LoadFile(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestIntLabels(t *testing.T) {
	ds := &Dataset{Y: []string{"10", "2", "-1"}}
	got, err := ds.IntLabels()
	if err != nil {
		t.Fatalf("IntLabels failed: %v", err)
	}
	if !reflect.DeepEqual(got, []int{10, 2, -1}) {
		t.Errorf("IntLabels() = %v", got)
	}

	ds.Y = append(ds.Y, "setosa")
	if _, err := ds.IntLabels(); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestSplit(t *testing.T) {
	n := 10
	X := mat.NewDense(n, 1, nil)
	y := make([]string, n)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		y[i] = string(rune('a' + i))
	}
	ds := &Dataset{X: X, Y: y, FeatureNames: []string{"f"}, Target: "y"}

	train, test, err := ds.Split(0.3, 7)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if train.Len() != 7 || test.Len() != 3 {
		t.Fatalf("split sizes = (%d, %d), want (7, 3)", train.Len(), test.Len())
	}

	seen := map[string]bool{}
	for _, part := range []*Dataset{train, test} {
		for i, label := range part.Y {
			if seen[label] {
				t.Errorf("label %s appears twice", label)
			}
			seen[label] = true
			if want := float64(label[0] - 'a'); part.X.At(i, 0) != want {
				t.Errorf("row for %s carries %g, want %g", label, part.X.At(i, 0), want)
			}
		}
	}
	if len(seen) != n {
		t.Errorf("split covers %d rows, want %d", len(seen), n)
	}

	train2, test2, err := ds.Split(0.3, 7)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if !reflect.DeepEqual(train.Y, train2.Y) || !reflect.DeepEqual(test.Y, test2.Y) {
		t.Error("same seed should give the same split")
	}

	for _, frac := range []float64{0, 1, -0.5} {
		if _, _, err := ds.Split(frac, 1); !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("Split(%g) expected invalid input, got %v", frac, err)
		}
	}
	if _, _, err := ds.Split(0.01, 1); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected invalid input for an empty test set, got %v", err)
	}
}
