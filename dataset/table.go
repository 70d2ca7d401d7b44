// Package dataset turns tabular data into a scaled feature matrix and a label
// vector.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/YuminosukeSato/scigo-softmax/pkg/errors"
)

// Table is a header plus string rows, as read from a CSV file.
type Table struct {
	Columns []string
	Rows    [][]string
}

// missingTokens are the cell values treated as missing, compared case
// sensitively after trimming.
var missingTokens = map[string]struct{}{
	"":     {},
	"NA":   {},
	"NaN":  {},
	"null": {},
}

// IsMissing reports whether a cell holds no value.
func IsMissing(cell string) bool {
	_, ok := missingTokens[strings.TrimSpace(cell)]
	return ok
}

// ReadCSV reads a CSV stream whose first record is the header. Rows with a
// different field count than the header are rejected.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "dataset: read csv")
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("ReadCSV", "missing header", errors.ErrEmptyData)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}

	rows := records[1:]
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, errors.NewValueError("ReadCSV",
				fmt.Sprintf("line %d has %d fields, header has %d", i+2, len(row), len(header)))
		}
	}

	return &Table{Columns: header, Rows: rows}, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// DropMissing returns a copy of t without the rows that have a missing value
// in any column, and the number of rows removed.
func (t *Table) DropMissing() (*Table, int) {
	kept := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !rowHasMissing(row) {
			kept = append(kept, row)
		}
	}
	return &Table{Columns: t.Columns, Rows: kept}, len(t.Rows) - len(kept)
}

func rowHasMissing(row []string) bool {
	for _, cell := range row {
		if IsMissing(cell) {
			return true
		}
	}
	return false
}

// FeatureSelector decides from its name whether a column is a feature.
type FeatureSelector func(column string) bool

// ContainsToken selects every column whose name contains token.
func ContainsToken(token string) FeatureSelector {
	return func(column string) bool {
		return strings.Contains(column, token)
	}
}

// Columns selects exactly the named columns.
func Columns(names ...string) FeatureSelector {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(column string) bool {
		_, ok := set[column]
		return ok
	}
}
