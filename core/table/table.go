// Package table decodes uploaded spreadsheets into header + rows and checks their schema.
package table

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Table is a decoded spreadsheet. Every row holds exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New builds a table, trimming headers and padding or truncating rows to the header width.
func New(columns []string, rows [][]string) Table {
	cols := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		if isBlank(r) {
			continue
		}
		row := make([]string, len(cols))
		copy(row, r)
		out = append(out, row)
	}
	return Table{Columns: cols, Rows: out}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Index returns the position of column, or -1.
func (t Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Value returns the trimmed cell of row i under column ("" when the column is absent).
func (t Table) Value(i int, column string) string {
	j := t.Index(column)
	if j < 0 || i < 0 || i >= len(t.Rows) {
		return ""
	}
	return strings.TrimSpace(t.Rows[i][j])
}

// Float parses the cell of row i under column.
func (t Table) Float(i int, column string) (float64, error) {
	s := t.Value(i, column)
	if s == "" {
		return 0, errors.Errorf("%s is empty", column)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Errorf("%s: %q is not a number", column, s)
	}
	return f, nil
}

// Map returns row i keyed by column name.
func (t Table) Map(i int) map[string]string {
	m := make(map[string]string, len(t.Columns))
	for j, c := range t.Columns {
		m[c] = strings.TrimSpace(t.Rows[i][j])
	}
	return m
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }
