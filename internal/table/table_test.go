package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NormalizesRowWidth(t *testing.T) {
	tbl := New("people", []string{"id", "name", "age"}, [][]string{
		{"1", "a"},
		{"2", "b", "30", "extra"},
	})

	require.Equal(t, 2, tbl.RowCount())
	assert.Equal(t, []string{"1", "a", ""}, tbl.Rows[0])
	assert.Equal(t, []string{"2", "b", "30"}, tbl.Rows[1])
}

func TestTable_AddRowAndColumn(t *testing.T) {
	tbl := New("page 1", nil, nil)

	col := tbl.AddColumn("")
	assert.Equal(t, 0, col)
	assert.Equal(t, []string{"1"}, tbl.Headers)

	row := tbl.AddRow()
	assert.Equal(t, 0, row)
	assert.Equal(t, []string{""}, tbl.Rows[0])

	tbl.AddColumn("")
	assert.Equal(t, []string{"1", "2"}, tbl.Headers)
	assert.Equal(t, []string{"", ""}, tbl.Rows[0], "existing rows get a placeholder")
}

func TestTable_SetCell(t *testing.T) {
	tbl := New("t", []string{"id", "name"}, [][]string{{"1", "a"}})

	require.NoError(t, tbl.SetCell(0, 1, "z"))
	v, err := tbl.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "z", v)

	assert.ErrorIs(t, tbl.SetCell(1, 0, "x"), ErrOutOfRange)
	assert.ErrorIs(t, tbl.SetCell(0, 2, "x"), ErrOutOfRange)
}

func TestTable_DeleteRow(t *testing.T) {
	tbl := New("t", []string{"id"}, [][]string{{"1"}, {"2"}, {"3"}})

	require.NoError(t, tbl.DeleteRow(1))
	assert.Equal(t, [][]string{{"1"}, {"3"}}, tbl.Rows)
	assert.ErrorIs(t, tbl.DeleteRow(5), ErrOutOfRange)
}

func TestTable_Column(t *testing.T) {
	tbl := New("t", []string{"x", "y"}, [][]string{{"1", "a"}, {"2", "b"}})

	ys, err := tbl.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ys)

	_, err = tbl.Column("missing")
	assert.Error(t, err)
}

func TestTable_RowComplete(t *testing.T) {
	tbl := New("t", []string{"x", "y"}, [][]string{{"1", "a"}, {"2", ""}})

	assert.True(t, tbl.RowComplete(0))
	assert.False(t, tbl.RowComplete(1))
	assert.False(t, tbl.RowComplete(2))
}

func TestTable_CloneIsDeep(t *testing.T) {
	tbl := New("t", []string{"x"}, [][]string{{"1"}})
	c := tbl.Clone()
	require.NoError(t, c.SetCell(0, 0, "2"))

	v, _ := tbl.Cell(0, 0)
	assert.Equal(t, "1", v)
}
