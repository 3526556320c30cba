// Package dataset holds the in-memory tables the merge engine works on and
// the registry that owns them between merges.
package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrRowWidth is returned when a row does not have one value per column.
	ErrRowWidth = errors.New("row width does not match column count")
	// ErrColumnNotFound is returned when a named column is not part of a dataset.
	ErrColumnNotFound = errors.New("column not found")
)

// Dataset is a named table of rows. Every row holds one value per column,
// in column order; nil is the absent value.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]any

	index map[string]int
}

// New builds a dataset and checks that every row matches the column count.
func New(name string, columns []string, rows [][]any) (*Dataset, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: table %s row %d has %d values for %d columns",
				ErrRowWidth, name, i, len(row), len(columns))
		}
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Name: name, Columns: cols, Rows: rows, index: indexColumns(cols)}, nil
}

func indexColumns(columns []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return index
}

// MustNew is New for literals in tests and fixtures.
func MustNew(name string, columns []string, rows ...[]any) *Dataset {
	ds, err := New(name, columns, rows)
	if err != nil {
		panic(err)
	}
	return ds
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// ColumnIndex returns the position of a column, or -1. It never writes to
// the dataset, so concurrent readers are safe. The index built by New is
// trusted only while it still agrees with Columns.
func (d *Dataset) ColumnIndex(name string) int {
	if i, ok := d.index[name]; ok && i < len(d.Columns) && d.Columns[i] == name {
		return i
	}
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the dataset has a column called name.
func (d *Dataset) HasColumn(name string) bool {
	return d.ColumnIndex(name) >= 0
}

// Value returns the value at row/column, and false if the column is unknown.
func (d *Dataset) Value(row int, column string) (any, bool) {
	i := d.ColumnIndex(column)
	if i < 0 || row < 0 || row >= len(d.Rows) {
		return nil, false
	}
	return d.Rows[row][i], true
}

// Column returns a copy of every value in the named column.
func (d *Dataset) Column(name string) ([]any, error) {
	i := d.ColumnIndex(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, d.Name, name)
	}
	values := make([]any, len(d.Rows))
	for r, row := range d.Rows {
		values[r] = row[i]
	}
	return values, nil
}

// Record returns one row as a column -> value map.
func (d *Dataset) Record(row int) map[string]any {
	rec := make(map[string]any, len(d.Columns))
	for i, c := range d.Columns {
		rec[c] = d.Rows[row][i]
	}
	return rec
}

// Rename returns a shallow copy of the dataset under another name.
func (d *Dataset) Rename(name string) *Dataset {
	return &Dataset{Name: name, Columns: d.Columns, Rows: d.Rows, index: d.index}
}
