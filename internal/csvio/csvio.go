// Package csvio reads and writes tables as delimited text in a chosen
// encoding.
package csvio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/tipy-dev/tipy/internal/table"
	"github.com/tipy-dev/tipy/internal/textenc"
)

// ErrBadDelimiter is returned for delimiters encoding/csv cannot use.
var ErrBadDelimiter = errors.New("invalid delimiter")

// Options describe how a CSV file is laid out on disk.
type Options struct {
	Delimiter rune
	Encoding  string
}

// DefaultOptions returns comma-separated UTF-8.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Encoding: textenc.Default}
}

// ParseDelimiter turns user input into a single delimiter rune.
// "\t" and "tab" both select a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %q must be a single character", ErrBadDelimiter, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: %q", ErrBadDelimiter, s)
	}
	return r, nil
}

// Read loads path. The encoding is validated before the file is opened.
func Read(path string, opts Options) (*table.Table, error) {
	enc, err := textenc.Lookup(opts.Encoding)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, err := enc.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Parse(TableName(path), text, opts.Delimiter)
}

// Parse splits decoded text into headers and rows. Blank lines are dropped;
// the first remaining record is the header row.
func Parse(name, text string, delim rune) (*table.Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) == 0 {
		return table.New(name, nil, nil), nil
	}
	return table.New(name, records[0], records[1:]), nil
}

// Marshal serializes headers followed by rows.
func Marshal(t *table.Table, opts Options) ([]byte, error) {
	enc, err := textenc.Lookup(opts.Encoding)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = opts.Delimiter
	if err := writeRecord(w, &buf, t.Headers); err != nil {
		return nil, fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range t.Rows {
		if err := writeRecord(w, &buf, row); err != nil {
			return nil, fmt.Errorf("failed to write rows: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write rows: %w", err)
	}
	return enc.Encode(buf.String())
}

// writeRecord writes one record. A record of a single empty field is
// quoted so it does not read back as a blank line.
func writeRecord(w *csv.Writer, buf *bytes.Buffer, record []string) error {
	if len(record) == 1 && record[0] == "" {
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
		buf.WriteString("\"\"\n")
		return nil
	}
	return w.Write(record)
}

// Write replaces the contents of path with t. Nothing is written when the
// table cannot be encoded.
func Write(path string, t *table.Table, opts Options) error {
	data, err := Marshal(t, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // G306
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// TableName derives a tab name from a file path.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
