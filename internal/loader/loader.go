// Package loader reads the CSV exports into memory and decodes them into
// typed sales records.
package loader

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"adventureworks-report/internal/errors"
)

const utf8BOM = "\ufeff"

// Table is a CSV file held in memory: header names plus rows in file order.
type Table struct {
	Path    string
	Columns []string
	Rows    [][]string
	index   map[string]int
}

func ReadCSV(ctx context.Context, path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.FileNotFound(err, path)
		}
		return nil, errors.Parse(err, path)
	}
	defer file.Close()

	return Read(ctx, path, file)
}

// Read parses CSV from r. path is used only in diagnostics.
func Read(ctx context.Context, path string, r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.EmptyInput(path)
	}
	if err != nil {
		return nil, errors.Parse(err, path)
	}

	t := &Table{
		Path:    path,
		Columns: make([]string, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		t.Columns[i] = name
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Parse(err, path)
		}
		t.Rows = append(t.Rows, record)
	}

	if len(t.Rows) == 0 {
		return nil, errors.EmptyInput(path)
	}

	return t, nil
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the named column.
func (t *Table) Column(name string) (int, error) {
	if i, ok := t.index[name]; ok {
		return i, nil
	}
	return -1, errors.ColumnMissing(t.Path, name)
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		idx[i] = col
	}
	return idx, nil
}
