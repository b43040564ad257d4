package dataset

import (
	"fmt"

	"gocausal/domain/core"

	"gonum.org/v1/gonum/mat"
)

// Dataset is an immutable tabular input: an ordered set of named numeric
// columns of equal length. Categorical inputs are coerced to numeric codes
// at ingestion time by the tabular readers. The pipeline only ever reads a
// Dataset, so one instance may safely back any number of runs.
type Dataset struct {
	columns []string
	index   map[string]int
	data    [][]float64 // column-major
	rows    int
}

// New creates a dataset from column names and column-major values. All
// columns must have the same length and names must be unique.
func New(columns []string, data [][]float64) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset requires at least one column")
	}
	if len(columns) != len(data) {
		return nil, fmt.Errorf("column name count %d does not match column count %d", len(columns), len(data))
	}
	rows := len(data[0])
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		if len(data[i]) != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(data[i]), rows)
		}
		index[name] = i
	}
	cols := make([][]float64, len(data))
	for i, col := range data {
		cols[i] = append([]float64(nil), col...)
	}
	return &Dataset{
		columns: append([]string(nil), columns...),
		index:   index,
		data:    cols,
		rows:    rows,
	}, nil
}

// Columns returns the ordered column names.
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Rows returns the number of observations.
func (d *Dataset) Rows() int {
	return d.rows
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column's values.
func (d *Dataset) Column(name string) ([]float64, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, core.NewColumnError(name)
	}
	return append([]float64(nil), d.data[i]...), nil
}

// Matrix returns the observations as a rows x columns dense matrix in
// column order, the shape the discovery backends consume.
func (d *Dataset) Matrix() *mat.Dense {
	m := mat.NewDense(d.rows, len(d.columns), nil)
	for j, col := range d.data {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}

// SubsetRows returns a new dataset containing only the given row indices,
// in the given order. Used by the data-subset refuter.
func (d *Dataset) SubsetRows(indices []int) (*Dataset, error) {
	cols := make([][]float64, len(d.data))
	for j, col := range d.data {
		sub := make([]float64, len(indices))
		for i, idx := range indices {
			if idx < 0 || idx >= d.rows {
				return nil, fmt.Errorf("row index %d out of range [0,%d)", idx, d.rows)
			}
			sub[i] = col[idx]
		}
		cols[j] = sub
	}
	return New(d.columns, cols)
}

// WithColumn returns a new dataset extended by one extra column. Used by
// the random-common-cause refuter to inject a synthetic confounder.
func (d *Dataset) WithColumn(name string, values []float64) (*Dataset, error) {
	if d.HasColumn(name) {
		return nil, fmt.Errorf("column %q already exists", name)
	}
	if len(values) != d.rows {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(values), d.rows)
	}
	return New(append(d.Columns(), name), append(d.copyData(), values))
}

// WithReplacedColumn returns a new dataset with one column's values
// replaced. Used by the placebo-treatment refuter.
func (d *Dataset) WithReplacedColumn(name string, values []float64) (*Dataset, error) {
	i, ok := d.index[name]
	if !ok {
		return nil, core.NewColumnError(name)
	}
	if len(values) != d.rows {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", name, len(values), d.rows)
	}
	cols := d.copyData()
	cols[i] = append([]float64(nil), values...)
	return New(d.columns, cols)
}

func (d *Dataset) copyData() [][]float64 {
	cols := make([][]float64, len(d.data))
	for i, col := range d.data {
		cols[i] = append([]float64(nil), col...)
	}
	return cols
}
