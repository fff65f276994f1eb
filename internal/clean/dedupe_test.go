package clean

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

func TestRemoveDuplicates(t *testing.T) {
	c := newCleaner()

	t.Run("Should keep the first occurrence", func(t *testing.T) {
		tb := load(t, []string{"k", "v"}, []string{"a", "1"}, []string{"a", "1"}, []string{"b", "2"})
		out, stats := c.RemoveDuplicates(tb)
		assert.Equal(t, [][]string{{"k", "v"}, {"a", "1"}, {"b", "2"}}, out.Records())
		assert.Equal(t, DedupeStats{RowsRemoved: 1, OriginalRows: 3, FinalRows: 2}, stats)
		assert.Equal(t, 3, tb.NumRows())
	})

	t.Run("Should preserve order of first occurrences", func(t *testing.T) {
		tb := load(t, []string{"k"}, []string{"c"}, []string{"a"}, []string{"c"}, []string{"b"}, []string{"a"})
		out, stats := c.RemoveDuplicates(tb)
		assert.Equal(t, []string{"c", "a", "b"}, strs(out.Columns[0]))
		assert.Equal(t, 2, stats.RowsRemoved)
	})

	t.Run("Should treat nulls as equal", func(t *testing.T) {
		tb := load(t, []string{"k", "v"}, []string{"a", ""}, []string{"a", "NA"})
		out, _ := c.RemoveDuplicates(tb)
		assert.Equal(t, 1, out.NumRows())
	})

	t.Run("Should treat negative zero as zero", func(t *testing.T) {
		col := table.Column{Name: "x", Type: table.TypeFloat, Cells: []table.Cell{
			table.Float(0), table.Float(math.Copysign(0, -1)),
		}}
		tb, err := table.New(col)
		require.NoError(t, err)
		out, stats := c.RemoveDuplicates(tb)
		assert.Equal(t, 1, out.NumRows())
		assert.Equal(t, 1, stats.RowsRemoved)
	})

	t.Run("Should not merge values of different kinds", func(t *testing.T) {
		col := table.Column{Name: "x", Type: table.TypeText, Cells: []table.Cell{
			table.Text("1"), table.Int(1), table.Float(1), table.Text("1"),
		}}
		tb, err := table.New(col)
		require.NoError(t, err)
		out, stats := c.RemoveDuplicates(tb)
		assert.Equal(t, 3, out.NumRows())
		assert.Equal(t, 1, stats.RowsRemoved)
	})

	t.Run("Should handle empty tables", func(t *testing.T) {
		out, stats := c.RemoveDuplicates(load(t, []string{"a"}))
		assert.Equal(t, 0, out.NumRows())
		assert.Zero(t, stats.RowsRemoved)
	})

	t.Run("Should leave every kept row distinct", func(t *testing.T) {
		tb := load(t, []string{"a", "b"},
			[]string{"1", "x"}, []string{"2", "y"}, []string{"1", "x"}, []string{"1", "y"}, []string{"2", "y"},
		)
		out, _ := c.RemoveDuplicates(tb)
		seen := map[string]bool{}
		for _, row := range out.Records()[1:] {
			k := row[0] + "|" + row[1]
			assert.False(t, seen[k], k)
			seen[k] = true
		}
		assert.LessOrEqual(t, out.NumRows(), tb.NumRows())
	})
}
