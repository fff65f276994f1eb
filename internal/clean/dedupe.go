package clean

import (
	"github.com/zeebo/xxh3"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// DedupeStats describes a RemoveDuplicates pass.
type DedupeStats struct {
	RowsRemoved  int `json:"rows_removed" yaml:"rows_removed"`
	OriginalRows int `json:"original_rows" yaml:"original_rows"`
	FinalRows    int `json:"final_rows" yaml:"final_rows"`
}

// RemoveDuplicates keeps the first occurrence of every identical row and preserves order.
func (c *Cleaner) RemoveDuplicates(t table.Table) (table.Table, DedupeStats) {
	n := t.NumRows()
	stats := DedupeStats{OriginalRows: n, FinalRows: n}
	if n == 0 {
		return t.Clone(), stats
	}

	buckets := make(map[uint64][]int, n)
	keep := make([]bool, n)
	var buf []byte
	for r := 0; r < n; r++ {
		buf = buf[:0]
		for _, col := range t.Columns {
			buf = col.Cells[r].AppendKey(buf)
		}
		h := xxh3.Hash(buf)
		dup := false
		for _, prev := range buckets[h] {
			if rowsEqual(t, prev, r) {
				dup = true
				break
			}
		}
		if dup {
			stats.RowsRemoved++
			continue
		}
		buckets[h] = append(buckets[h], r)
		keep[r] = true
	}

	stats.FinalRows = n - stats.RowsRemoved
	if stats.RowsRemoved > 0 {
		c.log.Info("removed duplicate rows", "count", stats.RowsRemoved)
	} else {
		c.log.Info("no duplicate rows found")
	}
	return t.FilterRows(keep), stats
}

func rowsEqual(t table.Table, a, b int) bool {
	for _, col := range t.Columns {
		if !col.Cells[a].Equal(col.Cells[b]) {
			return false
		}
	}
	return true
}
