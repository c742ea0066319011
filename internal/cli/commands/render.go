package commands

import (
	"encoding/json"
	"fmt"
	"io"

	pretty "github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/tipy-dev/tipy/internal/csvio"
	"github.com/tipy-dev/tipy/internal/table"
	"github.com/tipy-dev/tipy/internal/textenc"
)

// tableDoc is the json and yaml shape of one table.
type tableDoc struct {
	Name    string              `json:"table" yaml:"table"`
	Columns []string            `json:"columns" yaml:"columns"`
	Rows    []map[string]string `json:"rows" yaml:"-"`
	Ordered []yaml.Node         `json:"-" yaml:"rows"`
}

// renderTables prints tables in format. Text formats title each table when
// there is more than one.
func renderTables(w io.Writer, tables []*table.Table, format string, delim rune) error {
	switch format {
	case "json":
		return renderJSON(w, tables)
	case "yaml":
		return renderYAML(w, tables)
	}
	for i, t := range tables {
		if len(tables) > 1 {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "%s\n", t.Name)
		}
		var err error
		switch format {
		case "csv":
			err = renderCSV(w, t, delim)
		case "md", "markdown":
			err = renderMarkdown(w, t)
		default:
			err = renderTable(w, t)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func newWriter(w io.Writer, t *table.Table) pretty.Writer {
	tw := pretty.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(pretty.StyleLight)

	header := make(pretty.Row, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)
	for _, r := range t.Rows {
		row := make(pretty.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		tw.AppendRow(row)
	}
	return tw
}

func renderTable(w io.Writer, t *table.Table) error {
	if t.ColumnCount() == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return nil
	}
	newWriter(w, t).Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", t.RowCount())
	return nil
}

func renderMarkdown(w io.Writer, t *table.Table) error {
	if t.ColumnCount() == 0 {
		_, _ = fmt.Fprintln(w, "(no columns)")
		return nil
	}
	newWriter(w, t).RenderMarkdown()
	return nil
}

func renderCSV(w io.Writer, t *table.Table, delim rune) error {
	b, err := csvio.Marshal(t, csvio.Options{Delimiter: delim, Encoding: textenc.Default})
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func docs(tables []*table.Table) []tableDoc {
	out := make([]tableDoc, len(tables))
	for i, t := range tables {
		doc := tableDoc{Name: t.Name, Columns: t.Headers, Rows: make([]map[string]string, len(t.Rows))}
		for r, row := range t.Rows {
			m := make(map[string]string, len(row))
			node := yaml.Node{Kind: yaml.MappingNode}
			for c, v := range row {
				m[t.Headers[c]] = v
				node.Content = append(node.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: t.Headers[c]},
					&yaml.Node{Kind: yaml.ScalarNode, Value: v, Style: yaml.DoubleQuotedStyle},
				)
			}
			doc.Rows[r] = m
			doc.Ordered = append(doc.Ordered, node)
		}
		out[i] = doc
	}
	return out
}

func renderJSON(w io.Writer, tables []*table.Table) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs(tables))
}

// renderYAML keeps each row's keys in column order.
func renderYAML(w io.Writer, tables []*table.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(docs(tables)); err != nil {
		return err
	}
	return enc.Close()
}
