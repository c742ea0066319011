package csvio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tipy-dev/tipy/internal/table"
	"github.com/tipy-dev/tipy/internal/textenc"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestRead_HeadersAndRows(t *testing.T) {
	path := writeFile(t, "people.csv", []byte("id,name\n1,a\n\n2,b\n"))

	tbl, err := Read(path, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "people", tbl.Name)
	assert.Equal(t, []string{"id", "name"}, tbl.Headers)
	require.Equal(t, 2, tbl.RowCount(), "blank rows are dropped")
	v, err := tbl.Cell(0, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestRead_CustomDelimiterTrimsLeadingSpace(t *testing.T) {
	path := writeFile(t, "semi.csv", []byte("a; b\n1; 2\n"))

	tbl, err := Read(path, Options{Delimiter: ';', Encoding: "utf-8"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Headers)
	assert.Equal(t, [][]string{{"1", "2"}}, tbl.Rows)
}

func TestRead_RaggedRowsAreNormalized(t *testing.T) {
	path := writeFile(t, "ragged.csv", []byte("a,b,c\n1\n1,2,3,4\n"))

	tbl, err := Read(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1", "", ""}, {"1", "2", "3"}}, tbl.Rows)
}

func TestRead_EmptyFile(t *testing.T) {
	path := writeFile(t, "empty.csv", nil)

	tbl, err := Read(path, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.ColumnCount())
	assert.Equal(t, 0, tbl.RowCount())
}

func TestRead_UnknownEncodingBeforeOpen(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist.csv")

	_, err := Read(missing, Options{Delimiter: ',', Encoding: "klingon"})
	require.Error(t, err)
	assert.ErrorIs(t, err, textenc.ErrUnknownEncoding)
	assert.False(t, os.IsNotExist(err), "encoding must be rejected before the file is touched")
}

func TestRead_DecodeFailure(t *testing.T) {
	path := writeFile(t, "latin.csv", []byte("name\ncaf\xe9\n"))

	_, err := Read(path, Options{Delimiter: ',', Encoding: "utf-8"})
	assert.ErrorIs(t, err, textenc.ErrDecode)

	tbl, err := Read(path, Options{Delimiter: ',', Encoding: "latin_1"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"café"}}, tbl.Rows)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		tbl  *table.Table
	}{
		{
			name: "comma utf-8",
			opts: DefaultOptions(),
			tbl: table.New("t", []string{"id", "name"}, [][]string{
				{"1", "a"}, {"2", "with,comma"}, {"3", `quote "q"`},
			}),
		},
		{
			name: "tab cp1251",
			opts: Options{Delimiter: '\t', Encoding: "cp1251"},
			tbl: table.New("t", []string{"город", "население"}, [][]string{
				{"Москва", "13"}, {"Казань", "1.3"},
			}),
		},
		{
			name: "semicolon utf-16 with leading spaces",
			opts: Options{Delimiter: ';', Encoding: "utf-16"},
			tbl: table.New("t", []string{"x", "y"}, [][]string{
				{" padded", "1"}, {"", "2"},
			}),
		},
		{
			name: "single column with empty cells",
			opts: DefaultOptions(),
			tbl: table.New("t", []string{"name"}, [][]string{
				{"a"}, {""}, {"b"}, {""},
			}),
		},
		{
			name: "single empty header",
			opts: Options{Delimiter: ';', Encoding: "utf-16"},
			tbl:  table.New("t", []string{""}, [][]string{{"x"}, {""}}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.csv")
			require.NoError(t, Write(path, tt.tbl, tt.opts))

			got, err := Read(path, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.tbl.Headers, got.Headers)
			assert.Equal(t, tt.tbl.Rows, got.Rows)
		})
	}
}

func TestMarshal_QuotesLoneEmptyField(t *testing.T) {
	tbl := table.New("t", []string{"name"}, [][]string{{"a"}, {""}, {"b"}})

	data, err := Marshal(tbl, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "name\na\n\"\"\nb\n", string(data))
}

func TestWrite_UnencodableLeavesFileUntouched(t *testing.T) {
	path := writeFile(t, "keep.csv", []byte("a\n1\n"))
	tbl := table.New("t", []string{"a"}, [][]string{{"Ж"}})

	err := Write(path, tbl, Options{Delimiter: ',', Encoding: "latin_1"})
	require.ErrorIs(t, err, textenc.ErrEncode)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{in: ",", want: ','},
		{in: ";", want: ';'},
		{in: `\t`, want: '\t'},
		{in: "tab", want: '\t'},
		{in: "|", want: '|'},
		{in: "", wantErr: true},
		{in: ",,", wantErr: true},
		{in: `"`, wantErr: true},
		{in: "\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDelimiter(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadDelimiter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
