package clean

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

func textColumn(name string, vals ...string) table.Column {
	cells := make([]table.Cell, len(vals))
	for i, v := range vals {
		if v == "" {
			cells[i] = table.Null()
			continue
		}
		cells[i] = table.Text(v)
	}
	return table.Column{Name: name, Type: table.TypeText, Cells: cells}
}

func mustNew(t *testing.T, cols ...table.Column) table.Table {
	t.Helper()
	tb, err := table.New(cols...)
	require.NoError(t, err)
	return tb
}

func TestStandardizeTypes(t *testing.T) {
	c := newCleaner()

	t.Run("Should convert boolean literals", func(t *testing.T) {
		tb := load(t, []string{"flag"}, []string{"true"}, []string{"false"}, []string{"1"}, []string{"0"})
		out, stats := c.StandardizeTypes(tb)
		col := out.Columns[0]
		assert.Equal(t, table.TypeBool, col.Type)
		assert.Equal(t, []string{"true", "false", "true", "false"}, strs(col))
		assert.Equal(t, []TypeChange{{Column: "flag", From: "text", To: "bool"}}, stats.Changes)
	})

	t.Run("Should convert integer strings", func(t *testing.T) {
		tb := mustNew(t, textColumn("n", "1", "2", "3"))
		out, stats := c.StandardizeTypes(tb)
		assert.Equal(t, table.TypeInt, out.Columns[0].Type)
		v, ok := out.Columns[0].Cells[2].Int()
		assert.True(t, ok)
		assert.Equal(t, int64(3), v)
		assert.Len(t, stats.Changes, 1)
	})

	t.Run("Should turn whole floats with gaps into ints", func(t *testing.T) {
		tb := load(t, []string{"n"}, []string{"1"}, []string{""}, []string{"3"})
		require.Equal(t, table.TypeFloat, tb.Columns[0].Type)
		out, stats := c.StandardizeTypes(tb)
		assert.Equal(t, table.TypeInt, out.Columns[0].Type)
		assert.True(t, out.Columns[0].Cells[1].IsNull())
		assert.Equal(t, []TypeChange{{Column: "n", From: "float", To: "int"}}, stats.Changes)
	})

	t.Run("Should convert decimal strings to float", func(t *testing.T) {
		tb := mustNew(t, textColumn("p", "1.5", "2", "x"))
		out, _ := c.StandardizeTypes(tb)
		assert.Equal(t, table.TypeText, out.Columns[0].Type, "one non-number keeps the column text")

		tb = mustNew(t, textColumn("p", "1.5", "2"))
		out, _ = c.StandardizeTypes(tb)
		assert.Equal(t, table.TypeFloat, out.Columns[0].Type)
	})

	t.Run("Should detect dates from the first ten values", func(t *testing.T) {
		vals := []string{"2024-01-05", "2024-02-10", "03/15/2024", "2024/04/01", "2024-05-06",
			"2024-06-07", "2024-07-08", "2024-08-09", "2024-09-10", "garbage"}
		tb := mustNew(t, textColumn("d", vals...))
		out, stats := c.StandardizeTypes(tb)
		col := out.Columns[0]
		assert.Equal(t, table.TypeDatetime, col.Type)
		assert.Equal(t, "2024-01-05", col.Cells[0].String())
		assert.True(t, col.Cells[9].IsNull(), "unparseable values coerce to null")
		assert.Equal(t, "datetime", stats.Changes[0].To)
	})

	t.Run("Should not treat mostly free text as dates", func(t *testing.T) {
		tb := mustNew(t, textColumn("d", "2024-01-05", "hello", "world"))
		out, stats := c.StandardizeTypes(tb)
		assert.Equal(t, table.TypeText, out.Columns[0].Type)
		assert.Empty(t, stats.Changes)
	})

	t.Run("Should make repeating text categorical", func(t *testing.T) {
		vals := make([]string, 15)
		for i := range vals {
			vals[i] = []string{"red", "green", "blue"}[i%3]
		}
		out, stats := c.StandardizeTypes(mustNew(t, textColumn("color", vals...)))
		assert.Equal(t, table.TypeCategory, out.Columns[0].Type)
		assert.Equal(t, "red", out.Columns[0].Cells[0].String())
		assert.Equal(t, []TypeChange{{Column: "color", From: "text", To: "category"}}, stats.Changes)
	})

	t.Run("Should leave short or diverse text alone", func(t *testing.T) {
		short := mustNew(t, textColumn("c", "a", "a", "b"))
		out, stats := c.StandardizeTypes(short)
		assert.Equal(t, table.TypeText, out.Columns[0].Type)
		assert.Empty(t, stats.Changes)

		diverse := make([]string, 12)
		for i := range diverse {
			diverse[i] = "v" + strconv.Itoa(i)
		}
		out, _ = c.StandardizeTypes(mustNew(t, textColumn("c", diverse...)))
		assert.Equal(t, table.TypeText, out.Columns[0].Type)
	})

	t.Run("Should record conversion failures and keep the column", func(t *testing.T) {
		tb := mustNew(t, textColumn("big", "1e300", "2"), textColumn("n", "1", "2"))
		out, stats := c.StandardizeTypes(tb)
		assert.Equal(t, table.TypeText, column(t, out, "big").Type)
		assert.Equal(t, "1e300", column(t, out, "big").Cells[0].String())
		assert.Equal(t, table.TypeInt, column(t, out, "n").Type)
		require.Len(t, stats.Errors, 1)
		assert.Equal(t, "big", stats.Errors[0].Column)
		assert.Contains(t, stats.Errors[0].Error(), "standardize_types")
	})

	t.Run("Should not wrap integers past the int64 range", func(t *testing.T) {
		tb := load(t, []string{"big"}, []string{"9223372036854775808"}, []string{"1"})
		before := tb.Columns[0].Type
		out, stats := c.StandardizeTypes(tb)
		col := column(t, out, "big")
		assert.Equal(t, before, col.Type)
		assert.NotEqual(t, table.TypeInt, col.Type)
		f, ok := col.Cells[0].Float64()
		require.True(t, ok)
		assert.Greater(t, f, 0.0)
		require.Len(t, stats.Errors, 1)
		assert.Equal(t, "big", stats.Errors[0].Column)
	})

	t.Run("Should skip empty tables", func(t *testing.T) {
		out, stats := c.StandardizeTypes(load(t, []string{"a"}))
		assert.Equal(t, 1, out.NumCols())
		assert.Empty(t, stats.Changes)
	})
}

func TestSuggestTypes(t *testing.T) {
	tb := mustNew(t, textColumn("n", "1", "2"), textColumn("s", "x", "y"))
	got := SuggestTypes(tb)
	assert.Equal(t, []TypeChange{{Column: "n", From: "text", To: "int"}}, got)
	assert.Equal(t, "text -> int", got[0].String())
	assert.Equal(t, table.TypeText, tb.Columns[0].Type)
}
