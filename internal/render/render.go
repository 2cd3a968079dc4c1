// Package render writes the visible rows of a dashboard for non-interactive
// use.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cms-PdmV/PdmVPages/internal/model"
)

// Formats lists the accepted output formats.
var Formats = []string{"table", "pretty", "markdown", "csv", "json"}

type Options struct {
	Format string
	// IsTTY and Width describe the terminal; they only affect "table".
	IsTTY bool
	Width int
}

// Rows writes records, in order, with the columns of schema.
func Rows(w io.Writer, schema model.Schema, records []model.Record, opts Options) error {
	switch opts.Format {
	case "", "table":
		return renderPlain(w, schema, records, opts)
	case "pretty":
		return renderPretty(w, schema, records, func(t table.Writer) { t.Render() }, true)
	case "md", "markdown":
		return renderPretty(w, schema, records, func(t table.Writer) { t.RenderMarkdown() }, false)
	case "csv":
		return renderPretty(w, schema, records, func(t table.Writer) { t.RenderCSV() }, false)
	case "json":
		return renderJSON(w, schema, records)
	}
	return fmt.Errorf("unknown format %q (want one of %s)", opts.Format, strings.Join(Formats, ", "))
}

// renderPlain prints aligned, truncated columns under a header on a
// terminal, and header-less tab-separated values when piped.
func renderPlain(w io.Writer, schema model.Schema, records []model.Record, opts Options) error {
	tp := tableprinter.New(w, opts.IsTTY, opts.Width)
	headers := make([]string, len(schema))
	for i, c := range schema {
		headers[i] = strings.ToUpper(c.Label())
	}
	tp.AddHeader(headers)
	for _, r := range records {
		for _, c := range schema {
			tp.AddField(r.Get(c.Key).String())
		}
		tp.EndRow()
	}
	return tp.Render()
}

func renderPretty(w io.Writer, schema model.Schema, records []model.Record, do func(table.Writer), footer bool) error {
	if len(records) == 0 && footer {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(schema))
	for i, c := range schema {
		header[i] = c.Label()
	}
	t.AppendHeader(header)

	for _, r := range records {
		row := make(table.Row, len(schema))
		for i, c := range schema {
			row[i] = r.Get(c.Key).String()
		}
		t.AppendRow(row)
	}

	do(t)
	if footer {
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(records))
	}
	return nil
}

func renderJSON(w io.Writer, schema model.Schema, records []model.Record) error {
	out := make([]map[string]model.Value, len(records))
	for i, r := range records {
		row := make(map[string]model.Value, len(schema))
		for _, c := range schema {
			row[c.Key] = r.Get(c.Key)
		}
		out[i] = row
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
