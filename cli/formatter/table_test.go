package formatter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peondevelopments/aptrepo/cli/formatter"
)

func TestParseDialect(t *testing.T) {
	cases := []struct {
		str      string
		expected formatter.Dialect
		ok       bool
	}{
		{"default", formatter.DefaultDialect, true},
		{"Plain", formatter.PlainDialect, true},
		{"markdown", formatter.MarkdownDialect, true},
		{"JIRA", formatter.JiraDialect, true},
		{".", formatter.DefaultDialect, false},
	}

	for _, c := range cases {
		t.Run(c.str, func(t *testing.T) {
			dialect, err := formatter.ParseDialect(c.str)
			if !c.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.expected, dialect)
		})
	}
}

func TestTableRender(t *testing.T) {
	tbl := formatter.NewTable(formatter.Opts{Dialect: formatter.MarkdownDialect},
		"NAME", "SIZE")
	tbl.Append("foo-1.0_amd64.deb", 1024)
	tbl.Append("bar-2.0_amd64.deb", 2048)
	assert.Equal(t, 2, tbl.Len())

	out := tbl.Render()
	assert.Contains(t, out, "| NAME | SIZE |")
	assert.Contains(t, out, "| foo-1.0_amd64.deb | 1024 |")
	assert.Contains(t, out, "| bar-2.0_amd64.deb | 2048 |")

	plain := formatter.NewTable(formatter.Opts{Dialect: formatter.PlainDialect}, "NAME")
	plain.Append("foo")
	out = plain.Render()
	assert.NotContains(t, out, "│")
	assert.Contains(t, out, "foo")
}

func TestTableColumnWidth(t *testing.T) {
	tbl := formatter.NewTable(formatter.Opts{
		Dialect:        formatter.PlainDialect,
		ColumnWidthMax: 4,
	}, "NAME")
	tbl.Append("abcdefgh")

	out := tbl.Render()
	assert.True(t, strings.Contains(out, "abcd"), out)
	assert.False(t, strings.Contains(out, "abcdefgh"), out)
}
