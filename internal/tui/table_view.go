package tui

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/tipy-dev/tipy/internal/grid"
)

// Column widths in terminal cells.
const (
	minColWidth = 3
	maxColWidth = 24
)

// tableView renders a grid window that keeps the cursor visible.
type tableView struct {
	rowOff, colOff int
}

func columnWidths(g *grid.Grid) []int {
	widths := make([]int, g.ColumnCount())
	for c, h := range g.Headers() {
		widths[c] = max(minColWidth, runewidth.StringWidth(h))
	}
	for r := 0; r < g.RowCount(); r++ {
		for c := range widths {
			widths[c] = max(widths[c], runewidth.StringWidth(g.Value(r, c)))
		}
	}
	for c := range widths {
		widths[c] = min(widths[c], maxColWidth)
	}
	return widths
}

func fit(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return runewidth.FillRight(runewidth.Truncate(s, w, "…"), w)
}

// scroll moves the window so the cursor is inside rows by the columns that
// fit in width.
func (v *tableView) scroll(g *grid.Grid, widths []int, gutter, width, rows int) {
	row, col := g.Cursor()
	if row < v.rowOff {
		v.rowOff = row
	}
	if rows > 0 && row >= v.rowOff+rows {
		v.rowOff = row - rows + 1
	}
	if col < v.colOff {
		v.colOff = col
	}
	for v.colOff < col {
		used := gutter
		for c := v.colOff; c <= col; c++ {
			used += widths[c] + 1
		}
		if used <= width {
			break
		}
		v.colOff++
	}
}

// Render draws at most rows data rows of g into width cells.
func (v *tableView) Render(g *grid.Grid, width, rows int) string {
	if g.ColumnCount() == 0 {
		return statusStyle.Render("Empty table. Press c to add a column.")
	}
	widths := columnWidths(g)
	gutter := len(strconv.Itoa(max(g.RowCount(), 1))) + 1
	v.scroll(g, widths, gutter, width, rows)

	var visible []int
	used := gutter
	for c := v.colOff; c < len(widths); c++ {
		if used+widths[c]+1 > width && len(visible) > 0 {
			break
		}
		visible = append(visible, c)
		used += widths[c] + 1
	}

	sel, selecting := g.Selection()
	curRow, curCol := g.Cursor()

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutter))
	for _, c := range visible {
		b.WriteString(" " + headerStyle.Render(fit(g.Headers()[c], widths[c])))
	}
	b.WriteString("\n")

	end := min(g.RowCount(), v.rowOff+rows)
	for r := v.rowOff; r < end; r++ {
		b.WriteString(gutterStyle.Render(fit(strconv.Itoa(r+1), gutter)))
		for _, c := range visible {
			cell := fit(g.Value(r, c), widths[c])
			switch {
			case r == curRow && c == curCol:
				cell = cursorStyle.Render(cell)
			case selecting && sel.Contains(r, c):
				cell = selectedStyle.Render(cell)
			}
			b.WriteString(" " + cell)
		}
		b.WriteString("\n")
	}
	if g.RowCount() == 0 {
		b.WriteString(statusStyle.Render("No rows. Press a to add one."))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
