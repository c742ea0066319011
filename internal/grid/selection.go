package grid

// Selection is the rectangle between the anchor and the cursor. Without an
// anchor only the cursor cell is selected.
type Selection struct {
	Top, Left, Bottom, Right int
}

// Cells returns the number of selected cells.
func (s Selection) Cells() int {
	return (s.Bottom - s.Top + 1) * (s.Right - s.Left + 1)
}

// Contains reports whether (row, col) lies inside the selection.
func (s Selection) Contains(row, col int) bool {
	return row >= s.Top && row <= s.Bottom && col >= s.Left && col <= s.Right
}

// StartSelection anchors the selection at the cursor.
func (g *Grid) StartSelection() {
	g.anchor = &cell{row: g.row, col: g.col}
}

// ClearSelection drops the anchor.
func (g *Grid) ClearSelection() { g.anchor = nil }

// Selecting reports whether an anchor is set.
func (g *Grid) Selecting() bool { return g.anchor != nil }

// SelectRow selects every cell of row.
func (g *Grid) SelectRow(row int) {
	if g.t.RowCount() == 0 {
		return
	}
	row = clamp(row, g.t.RowCount()-1)
	g.anchor = &cell{row: row, col: 0}
	g.row, g.col = row, max(g.t.ColumnCount()-1, 0)
}

// Selection returns the selected rectangle. ok is false on an empty grid.
func (g *Grid) Selection() (Selection, bool) {
	if g.t.RowCount() == 0 || g.t.ColumnCount() == 0 {
		return Selection{}, false
	}
	a := cell{row: g.row, col: g.col}
	if g.anchor != nil {
		a = *g.anchor
	}
	return Selection{
		Top:    min(a.row, g.row),
		Left:   min(a.col, g.col),
		Bottom: max(a.row, g.row),
		Right:  max(a.col, g.col),
	}, true
}

// SelectedRow returns the row index when exactly one whole row is selected.
func (g *Grid) SelectedRow() (int, bool) {
	s, ok := g.Selection()
	if !ok {
		return 0, false
	}
	if s.Cells() != g.t.ColumnCount() || s.Top != s.Bottom {
		return 0, false
	}
	return s.Top, true
}
