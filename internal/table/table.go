// Package table provides the in-memory tabular model shared by every tab.
//
// A Table is an ordered list of column names plus an ordered list of rows.
// Every row always holds exactly len(Headers) cells; rows and columns added
// after load are filled with empty strings so callers never see a short row.
package table

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrOutOfRange is returned when a row or column index does not exist.
var ErrOutOfRange = errors.New("index out of range")

// Table holds headers and rows as display text.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// New creates a table and normalizes every row to the header width.
func New(name string, headers []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Headers: append([]string(nil), headers...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, t.fit(r))
	}
	return t
}

// fit pads or truncates a row to the header width.
func (t *Table) fit(r []string) []string {
	out := make([]string, len(t.Headers))
	copy(out, r)
	return out
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return len(t.Rows) }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.Headers) }

// Cell returns the value at (row, col).
func (t *Table) Cell(row, col int) (string, error) {
	if err := t.check(row, col); err != nil {
		return "", err
	}
	return t.Rows[row][col], nil
}

// SetCell overwrites the value at (row, col).
func (t *Table) SetCell(row, col int, value string) error {
	if err := t.check(row, col); err != nil {
		return err
	}
	t.Rows[row][col] = value
	return nil
}

// AddRow appends a row of empty placeholders and returns its index.
func (t *Table) AddRow() int {
	t.Rows = append(t.Rows, make([]string, len(t.Headers)))
	return len(t.Rows) - 1
}

// AddColumn appends a column. An empty name is replaced by the column's
// 1-based position. Existing rows get an empty cell.
func (t *Table) AddColumn(name string) int {
	if name == "" {
		name = strconv.Itoa(len(t.Headers) + 1)
	}
	t.Headers = append(t.Headers, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Headers) - 1
}

// DeleteRow removes the row at index row.
func (t *Table) DeleteRow(row int) error {
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}
	t.Rows = append(t.Rows[:row], t.Rows[row+1:]...)
	return nil
}

// Row returns a copy of the row at index row.
func (t *Table) Row(row int) ([]string, error) {
	if row < 0 || row >= len(t.Rows) {
		return nil, fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}
	return append([]string(nil), t.Rows[row]...), nil
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns every value of the named column in row order.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// RowComplete reports whether every cell in the row is non-empty.
func (t *Table) RowComplete(row int) bool {
	if row < 0 || row >= len(t.Rows) {
		return false
	}
	for _, v := range t.Rows[row] {
		if v == "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return New(t.Name, t.Headers, t.Rows)
}

func (t *Table) check(row, col int) error {
	if row < 0 || row >= len(t.Rows) {
		return fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}
	if col < 0 || col >= len(t.Headers) {
		return fmt.Errorf("column %d: %w", col, ErrOutOfRange)
	}
	return nil
}
