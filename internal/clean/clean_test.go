package clean

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/datatidy-cli/internal/logger"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

func newCleaner() *Cleaner {
	return New(logger.NewNopLogger())
}

func load(t *testing.T, header []string, rows ...[]string) table.Table {
	t.Helper()
	tb, err := table.FromRecords(header, rows)
	require.NoError(t, err)
	return tb
}

func column(t *testing.T, tb table.Table, name string) table.Column {
	t.Helper()
	i := tb.Index(name)
	require.GreaterOrEqual(t, i, 0, "column %q not found in %v", name, tb.Names())
	return tb.Columns[i]
}

func strs(col table.Column) []string {
	out := make([]string, len(col.Cells))
	for i, c := range col.Cells {
		out[i] = c.String()
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("Should default the z-score threshold", func(t *testing.T) {
		require.Equal(t, DefaultZScoreThreshold, New(nil).ZScoreThreshold())
	})
	t.Run("Should ignore non-positive thresholds", func(t *testing.T) {
		require.Equal(t, DefaultZScoreThreshold, New(nil, WithZScoreThreshold(0)).ZScoreThreshold())
		require.Equal(t, 2.5, New(nil, WithZScoreThreshold(2.5)).ZScoreThreshold())
	})
}
