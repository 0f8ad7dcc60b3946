package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"adventureworks-report/internal/errors"
)

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadCSV_PreservesColumnsAndOrder(t *testing.T) {
	path := createTempCSV(t, "\ufeffCountry, CalendarYear,Month,TotalSales\nUS,2023,2,150\nUS,2023,1,100\nCA,2023,1,200\n")

	table, err := ReadCSV(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}

	wantCols := []string{"Country", "CalendarYear", "Month", "TotalSales"}
	if strings.Join(table.Columns, ",") != strings.Join(wantCols, ",") {
		t.Errorf("Columns = %v, want %v", table.Columns, wantCols)
	}
	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	if table.Rows[0][2] != "2" || table.Rows[2][0] != "CA" {
		t.Errorf("row order not preserved: %v", table.Rows)
	}
	if !table.HasColumn("CalendarYear") {
		t.Error("BOM/space should be stripped from header names")
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		missing  bool
		wantCode errors.ErrorCode
	}{
		{name: "missing file", missing: true, wantCode: errors.CodeFileNotFound},
		{name: "empty file", content: "", wantCode: errors.CodeEmptyInput},
		{name: "header only", content: "Country,TotalSales\n", wantCode: errors.CodeEmptyInput},
		{name: "ragged row", content: "Country,TotalSales\nUS,1,extra\n", wantCode: errors.CodeParse},
		{name: "bad quoting", content: "Country,TotalSales\n\"US,1\n", wantCode: errors.CodeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nope.csv")
			if !tt.missing {
				path = createTempCSV(t, tt.content)
			}

			_, err := ReadCSV(context.Background(), path)
			if err == nil {
				t.Fatal("ReadCSV() should fail")
			}
			if got := errors.CodeOf(err); got != tt.wantCode {
				t.Errorf("code = %s, want %s (err: %v)", got, tt.wantCode, err)
			}
		})
	}
}

func TestReadCSV_Canceled(t *testing.T) {
	path := createTempCSV(t, "TotalSales\n1\n2\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := ReadCSV(ctx, path); err != context.Canceled {
		t.Errorf("ReadCSV() error = %v, want context.Canceled", err)
	}
}

func TestTable_Column(t *testing.T) {
	table, err := Read(context.Background(), "mem.csv", strings.NewReader("A,B\n1,2\n"))
	if err != nil {
		t.Fatal(err)
	}

	if i, err := table.Column("B"); err != nil || i != 1 {
		t.Errorf("Column(B) = %d, %v", i, err)
	}

	_, err = table.Column("C")
	if errors.CodeOf(err) != errors.CodeColumnMissing {
		t.Fatalf("Column(C) error = %v, want COLUMN_MISSING", err)
	}
	if !strings.Contains(err.Error(), `"mem.csv" has no column "C"`) {
		t.Errorf("diagnostic should name file and column: %v", err)
	}
}
