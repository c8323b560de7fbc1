// Package formatter renders command output tables.
package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Dialect is a table notation.
type Dialect string

const (
	// DefaultDialect renders rounded box tables.
	DefaultDialect Dialect = "default"
	// PlainDialect renders tables without pseudographics.
	PlainDialect Dialect = "plain"
	// MarkdownDialect renders markdown tables.
	MarkdownDialect Dialect = "markdown"
	// JiraDialect renders jira markup tables.
	JiraDialect Dialect = "jira"
)

// ParseDialect parses a dialect name. It supports mixed case letters.
func ParseDialect(str string) (Dialect, error) {
	switch dialect := Dialect(strings.ToLower(str)); dialect {
	case DefaultDialect, PlainDialect, MarkdownDialect, JiraDialect:
		return dialect, nil
	}
	return DefaultDialect, fmt.Errorf("unknown table format %q", str)
}

// Opts contains formatting options.
type Opts struct {
	// Dialect sets a table notation.
	Dialect Dialect
	// ColumnWidthMax sets a maximum width of columns, 0 means no limit.
	ColumnWidthMax int
}

// Table collects rows and renders them in the configured dialect.
type Table struct {
	opts   Opts
	header table.Row
	rows   []table.Row
}

// NewTable creates a table with the given column titles.
func NewTable(opts Opts, titles ...string) *Table {
	header := make(table.Row, 0, len(titles))
	for _, title := range titles {
		header = append(header, title)
	}
	return &Table{opts: opts, header: header}
}

// Append adds a row.
func (t *Table) Append(cells ...any) {
	t.rows = append(t.rows, table.Row(cells))
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// handleColumnWidth wraps cells wider than widthMax, marking every
// continuation with '+'.
func handleColumnWidth(writer table.Writer, columns int, widthMax int) {
	colWidthTransformer := text.Transformer(func(val interface{}) string {
		str := fmt.Sprintf("%v", val)
		if utf8.RuneCountInString(str) > widthMax {
			first := string([]rune(str)[:widthMax])
			remaining := string([]rune(str)[widthMax:])
			return first + "+" + text.InsertEveryN(remaining, '+', widthMax-1)
		}
		return str
	})

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 1; i <= columns; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i,
			Transformer: colWidthTransformer,
			WidthMax:    widthMax,
		})
	}
	writer.SetColumnConfigs(configs)
}

// Render returns the table as a string.
func (t *Table) Render() string {
	writer := table.NewWriter()
	writer.AppendHeader(t.header)
	writer.AppendRows(t.rows)

	switch t.opts.Dialect {
	case PlainDialect:
		writer.SetStyle(table.Style{Box: StyleWithoutGraphics, Format: table.FormatOptionsDefault})
	default:
		writer.SetStyle(table.StyleRounded)
	}
	if t.opts.ColumnWidthMax > 0 {
		handleColumnWidth(writer, len(t.header), t.opts.ColumnWidthMax)
	}

	switch t.opts.Dialect {
	case MarkdownDialect:
		return writer.RenderMarkdown() + "\n"
	case JiraDialect:
		return writer.RenderMarkdown() + "\n\n"
	}
	return writer.Render() + "\n"
}
