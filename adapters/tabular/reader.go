package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gocausal/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// DataReader loads a tabular file (xlsx or csv) into an immutable Dataset,
// choosing the format from the file extension. Categorical columns are
// coerced to numeric codes in first-seen order so every column the
// pipeline touches is numeric.
type DataReader struct {
	sheet string // Excel sheet; first sheet when empty
}

// NewDataReader creates a reader.
func NewDataReader() *DataReader {
	return &DataReader{}
}

// WithSheet selects an Excel sheet by name.
func (r *DataReader) WithSheet(name string) *DataReader {
	r.sheet = name
	return r
}

// Read loads the file into a Dataset.
func (r *DataReader) Read(path string) (*dataset.Dataset, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("data file not found: %s", path)
	}
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return r.readCSV(path)
	}
	return r.readExcel(path)
}

func (r *DataReader) readCSV(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv file: %w", err)
	}
	return rowsToDataset(rows)
}

func (r *DataReader) readExcel(path string) (*dataset.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rowsToDataset(rows)
}

// rowsToDataset converts header+data rows into numeric columns. A column
// whose values do not all parse as numbers is treated as categorical and
// coded by first appearance.
func rowsToDataset(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}
	header := rows[0]
	data := rows[1:]

	columns := make([][]float64, len(header))
	for j, name := range header {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("column %d has an empty header", j)
		}
		raw := make([]string, len(data))
		for i, row := range data {
			if j < len(row) {
				raw[i] = strings.TrimSpace(row[j])
			}
		}
		columns[j] = coerceColumn(raw)
	}
	return dataset.New(header, columns)
}

// coerceColumn parses a raw column, falling back to categorical codes when
// any non-empty cell fails numeric parsing. Empty cells become 0 in
// numeric columns and their own category otherwise.
func coerceColumn(raw []string) []float64 {
	numeric := true
	for _, v := range raw {
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			numeric = false
			break
		}
	}

	out := make([]float64, len(raw))
	if numeric {
		for i, v := range raw {
			if v == "" {
				continue
			}
			out[i], _ = strconv.ParseFloat(v, 64)
		}
		return out
	}

	codes := make(map[string]float64)
	for i, v := range raw {
		code, ok := codes[v]
		if !ok {
			code = float64(len(codes))
			codes[v] = code
		}
		out[i] = code
	}
	return out
}
