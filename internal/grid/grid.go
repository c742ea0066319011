// Package grid keeps the editable view of a table in step with its store.
//
// Every write carries an EditOrigin. Only writes made while the grid is in
// User origin reach the change handler; bulk repopulation runs inside
// Programmatic so it can never be mistaken for a user edit.
package grid

import (
	"context"

	"github.com/tipy-dev/tipy/internal/table"
)

// EditOrigin tells the change handler who produced a write.
type EditOrigin int

const (
	// User edits come from the keyboard or an explicit edit command.
	User EditOrigin = iota
	// Programmatic writes come from loads, refreshes and placeholder fills.
	Programmatic
)

func (o EditOrigin) String() string {
	if o == Programmatic {
		return "programmatic"
	}
	return "user"
}

// CellChange describes one user edit. Row holds the displayed row after the
// edit was applied.
type CellChange struct {
	Row    int
	Col    int
	Value  string
	Values []string
}

// ChangeHandler reacts to user edits. Returning an error does not undo the
// edit.
type ChangeHandler func(context.Context, CellChange) error

// Grid is the cursor, selection and cell state of one tab.
type Grid struct {
	t        *table.Table
	origin   EditOrigin
	onChange ChangeHandler

	row, col int
	anchor   *cell
}

type cell struct{ row, col int }

// New wraps t. A nil table becomes an empty one.
func New(t *table.Table) *Grid {
	if t == nil {
		t = table.New("", nil, nil)
	}
	return &Grid{t: t}
}

// OnCellChanged installs the handler for user edits.
func (g *Grid) OnCellChanged(h ChangeHandler) { g.onChange = h }

// Origin returns the origin applied to writes right now.
func (g *Grid) Origin() EditOrigin { return g.origin }

// Programmatic runs fn with writes tagged Programmatic and restores the
// previous origin afterwards, even if fn panics.
func (g *Grid) Programmatic(fn func()) {
	prev := g.origin
	g.origin = Programmatic
	defer func() { g.origin = prev }()
	fn()
}

// Table returns the backing table.
func (g *Grid) Table() *table.Table { return g.t }

// Load replaces the grid contents with t.
func (g *Grid) Load(t *table.Table) {
	g.Programmatic(func() {
		g.t = t
		g.clampCursor()
		g.anchor = nil
	})
}

// Headers returns the column names.
func (g *Grid) Headers() []string { return g.t.Headers }

// RowCount returns the number of displayed rows.
func (g *Grid) RowCount() int { return g.t.RowCount() }

// ColumnCount returns the number of displayed columns.
func (g *Grid) ColumnCount() int { return g.t.ColumnCount() }

// Value returns the displayed text of a cell, or "" when out of range.
func (g *Grid) Value(row, col int) string {
	v, err := g.t.Cell(row, col)
	if err != nil {
		return ""
	}
	return v
}

// SetCell writes a cell. In User origin the change handler runs after the
// value has been written; its error is returned unchanged.
func (g *Grid) SetCell(ctx context.Context, row, col int, value string) error {
	if err := g.t.SetCell(row, col, value); err != nil {
		return err
	}
	if g.origin != User || g.onChange == nil {
		return nil
	}
	values, _ := g.t.Row(row)
	return g.onChange(ctx, CellChange{Row: row, Col: col, Value: value, Values: values})
}

// AddRow appends an empty placeholder row and moves the cursor onto it.
func (g *Grid) AddRow() int {
	var idx int
	g.Programmatic(func() { idx = g.t.AddRow() })
	g.SetCursor(idx, g.col)
	return idx
}

// AddColumn appends a column.
func (g *Grid) AddColumn(name string) int {
	var idx int
	g.Programmatic(func() { idx = g.t.AddColumn(name) })
	return idx
}

// DeleteRow removes a row and clears the selection.
func (g *Grid) DeleteRow(row int) error {
	if err := g.t.DeleteRow(row); err != nil {
		return err
	}
	g.anchor = nil
	g.clampCursor()
	return nil
}

// Cursor returns the focused cell.
func (g *Grid) Cursor() (row, col int) { return g.row, g.col }

// SetCursor focuses a cell, clamped to the grid.
func (g *Grid) SetCursor(row, col int) {
	g.row, g.col = row, col
	g.clampCursor()
}

// MoveCursor shifts the focus by the given offsets.
func (g *Grid) MoveCursor(dRow, dCol int) {
	g.SetCursor(g.row+dRow, g.col+dCol)
}

func (g *Grid) clampCursor() {
	g.row = clamp(g.row, g.t.RowCount()-1)
	g.col = clamp(g.col, g.t.ColumnCount()-1)
}

func clamp(v, hi int) int {
	if v > hi {
		v = hi
	}
	if v < 0 {
		v = 0
	}
	return v
}
