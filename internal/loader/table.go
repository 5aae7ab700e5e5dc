// Package loader reads MVV source tables from CSV and XLSX files.
package loader

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Table is an in-memory source table: ordered columns and ordered rows.
type Table struct {
	Columns []string
	Rows    []Row
}

// Row is one data row keyed by column name.
type Row struct {
	Number   int // 1-based position among data records
	Fields   map[string]string
	Overflow []string // cells beyond the header width
}

// Get returns the raw value of col, or "" when the column is absent.
func (r Row) Get(col string) string {
	return r.Fields[col]
}

// Has reports whether the table has a column named col.
func (t *Table) Has(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// buildTable turns raw records (header first) into a Table. Every record
// after the header becomes a row, including ones whose cells are all empty;
// short records leave their missing columns empty.
func buildTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, eris.New("loader: no header row")
	}

	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = strings.TrimSpace(col)
	}
	// Spreadsheet exports often pad the header with empty cells.
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	if len(header) == 0 {
		return nil, eris.New("loader: header row is empty")
	}

	t := &Table{Columns: header}
	for i, rec := range records[1:] {
		row := Row{
			Number: i + 1,
			Fields: make(map[string]string, len(header)),
		}
		for i, col := range header {
			if col == "" {
				continue
			}
			if _, dup := row.Fields[col]; dup {
				continue
			}
			if i < len(rec) {
				row.Fields[col] = rec[i]
			} else {
				row.Fields[col] = ""
			}
		}
		if len(rec) > len(header) {
			row.Overflow = rec[len(header):]
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
