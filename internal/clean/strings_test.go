package clean

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

func TestTrimWhitespace(t *testing.T) {
	c := newCleaner()
	tb := load(t, []string{"name", "city", "n"},
		[]string{" John ", "Paris", "1"},
		[]string{"Jane", "Rome", "2"},
		[]string{"", "Oslo", "3"},
	)
	out, stats := c.TrimWhitespace(tb)
	assert.Equal(t, []string{"name"}, stats.Columns)
	assert.Equal(t, []string{"John", "Jane", ""}, strs(column(t, out, "name")))
	assert.True(t, column(t, out, "name").Cells[2].IsNull(), "nulls stay null")
	assert.Equal(t, " John ", tb.Columns[0].Cells[0].String())
}

func TestChangeCase(t *testing.T) {
	c := newCleaner()
	tb := load(t, []string{"name", "n"}, []string{"john smith", "1"}, []string{"", "2"})

	t.Run("Should apply each mode to text columns", func(t *testing.T) {
		cases := map[string]string{CaseUpper: "JOHN SMITH", CaseLower: "john smith", CaseTitle: "John Smith"}
		for mode, want := range cases {
			out, stats := c.ChangeCase(tb, mode)
			assert.Equal(t, want, column(t, out, "name").Cells[0].String())
			assert.Equal(t, mode, stats.Mode)
			assert.Equal(t, []string{"name"}, stats.Columns)
			assert.True(t, column(t, out, "name").Cells[1].IsNull())
			assert.Equal(t, table.TypeInt, column(t, out, "n").Type)
		}
	})

	t.Run("Should accept mixed-case mode names", func(t *testing.T) {
		out, stats := c.ChangeCase(tb, " UPPER ")
		assert.Equal(t, "JOHN SMITH", out.Columns[0].Cells[0].String())
		assert.Equal(t, CaseUpper, stats.Mode)
	})

	t.Run("Should skip an invalid mode", func(t *testing.T) {
		out, stats := c.ChangeCase(tb, "snake")
		assert.Equal(t, tb.Records(), out.Records())
		assert.Equal(t, CaseStats{}, stats)
	})
}

func TestFindReplace(t *testing.T) {
	c := newCleaner()

	t.Run("Should replace exact matches across columns", func(t *testing.T) {
		tb := load(t, []string{"a", "b"}, []string{"N/Aa", "x"}, []string{"x", "xx"}, []string{"y", "x"})
		out, stats := c.FindReplace(tb, "x", "z")
		assert.Equal(t, 3, stats.Replacements)
		assert.Equal(t, []string{"a", "b"}, stats.Columns)
		assert.Equal(t, []string{"N/Aa", "z", "y"}, strs(out.Columns[0]))
		assert.Equal(t, []string{"z", "xx", "z"}, strs(out.Columns[1]))
	})

	t.Run("Should match numeric cells by their string form", func(t *testing.T) {
		tb := load(t, []string{"n"}, []string{"1"}, []string{"-1"}, []string{"3"})
		out, stats := c.FindReplace(tb, "-1", "0")
		assert.Equal(t, 1, stats.Replacements)
		assert.Equal(t, table.TypeInt, out.Columns[0].Type)
		assert.Equal(t, []string{"1", "0", "3"}, strs(out.Columns[0]))
	})

	t.Run("Should promote int columns for fractional replacements", func(t *testing.T) {
		tb := load(t, []string{"n"}, []string{"1"}, []string{"2"})
		out, _ := c.FindReplace(tb, "2", "2.5")
		assert.Equal(t, table.TypeFloat, out.Columns[0].Type)
		assert.Equal(t, []string{"1.0", "2.5"}, strs(out.Columns[0]))
	})

	t.Run("Should degrade typed columns that cannot hold the replacement", func(t *testing.T) {
		tb := load(t, []string{"n"}, []string{"1"}, []string{"-999"})
		out, _ := c.FindReplace(tb, "-999", "unknown")
		assert.Equal(t, table.TypeText, out.Columns[0].Type)
		assert.Equal(t, []string{"1", "unknown"}, strs(out.Columns[0]))
	})

	t.Run("Should turn NA replacements into nulls", func(t *testing.T) {
		tb := load(t, []string{"n"}, []string{"1"}, []string{"-999"})
		out, _ := c.FindReplace(tb, "-999", "NA")
		assert.Equal(t, table.TypeInt, out.Columns[0].Type)
		assert.True(t, out.Columns[0].Cells[1].IsNull())
	})

	t.Run("Should report zero replacements when nothing matches", func(t *testing.T) {
		tb := load(t, []string{"a"}, []string{"x"})
		out, stats := c.FindReplace(tb, "q", "z")
		assert.Zero(t, stats.Replacements)
		assert.Empty(t, stats.Columns)
		assert.Equal(t, tb.Records(), out.Records())
	})
}
