package tabular

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestReadCSVNumeric tests a plain numeric file
func TestReadCSVNumeric(t *testing.T) {
	path := writeCSV(t, "x,y\n1,4\n2,5\n3,6\n")

	ds, err := NewDataReader().Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Rows() != 3 {
		t.Errorf("Expected 3 rows, got %d", ds.Rows())
	}
	col, err := ds.Column("y")
	if err != nil {
		t.Fatal(err)
	}
	if col[0] != 4 || col[2] != 6 {
		t.Errorf("Unexpected column values: %v", col)
	}
}

// TestReadCSVCategoricalCoercion tests first-seen categorical codes
func TestReadCSVCategoricalCoercion(t *testing.T) {
	path := writeCSV(t, "group,value\nred,1\nblue,2\nred,3\ngreen,4\n")

	ds, err := NewDataReader().Read(path)
	if err != nil {
		t.Fatal(err)
	}
	col, err := ds.Column("group")
	if err != nil {
		t.Fatal(err)
	}
	// red=0, blue=1, green=2 in first appearance order.
	want := []float64{0, 1, 0, 2}
	for i, v := range want {
		if col[i] != v {
			t.Errorf("Row %d: expected code %v, got %v", i, v, col[i])
		}
	}
}

// TestReadCSVErrors tests the failure modes
func TestReadCSVErrors(t *testing.T) {
	if _, err := NewDataReader().Read("/nonexistent/data.csv"); err == nil {
		t.Error("Expected missing file to fail")
	}

	headerOnly := writeCSV(t, "x,y\n")
	if _, err := NewDataReader().Read(headerOnly); err == nil {
		t.Error("Expected header-only file to fail")
	}

	emptyHeader := writeCSV(t, "x,\n1,2\n")
	if _, err := NewDataReader().Read(emptyHeader); err == nil {
		t.Error("Expected empty column header to fail")
	}
}

// TestCoerceColumnEmptyCells tests empty-cell handling in numeric columns
func TestCoerceColumnEmptyCells(t *testing.T) {
	out := coerceColumn([]string{"1.5", "", "2.5"})
	if out[1] != 0 {
		t.Errorf("Empty numeric cell should read as 0, got %v", out[1])
	}
	if out[0] != 1.5 || out[2] != 2.5 {
		t.Errorf("Unexpected parsed values: %v", out)
	}
}
