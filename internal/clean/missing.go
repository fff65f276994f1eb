package clean

import (
	"math"
	"strings"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// Missing-value strategies accepted by HandleMissing.
const (
	MissingMean   = "mean"
	MissingMedian = "median"
	MissingMode   = "mode"
	MissingDrop   = "drop"
)

// MissingStrategies lists the valid HandleMissing strategies.
var MissingStrategies = []string{MissingMean, MissingMedian, MissingMode, MissingDrop}

// MissingInfo is the missing-value profile of a table.
type MissingInfo struct {
	TotalMissing       int                `json:"total_missing" yaml:"total_missing"`
	ColumnsWithMissing map[string]int     `json:"columns_with_missing" yaml:"columns_with_missing"`
	Percentages        map[string]float64 `json:"missing_percentages" yaml:"missing_percentages"`
	TotalRows          int                `json:"total_rows" yaml:"total_rows"`
	TotalColumns       int                `json:"total_columns" yaml:"total_columns"`
}

// MissingStats describes a HandleMissing pass.
type MissingStats struct {
	Strategy    string `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	ChangesMade bool   `json:"changes_made" yaml:"changes_made"`

	// drop
	RowsDropped  int `json:"rows_dropped,omitempty" yaml:"rows_dropped,omitempty"`
	OriginalRows int `json:"original_rows,omitempty" yaml:"original_rows,omitempty"`
	FinalRows    int `json:"final_rows,omitempty" yaml:"final_rows,omitempty"`

	// mean, median, mode
	ColumnsFilled []string          `json:"columns_filled,omitempty" yaml:"columns_filled,omitempty"`
	FillValues    map[string]string `json:"fill_values,omitempty" yaml:"fill_values,omitempty"`
	Skipped       []string          `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	Before *MissingInfo `json:"original_missing_info,omitempty" yaml:"original_missing_info,omitempty"`
}

// MissingReport counts nulls per column. Percentages are relative to the row count.
func MissingReport(t table.Table) MissingInfo {
	info := MissingInfo{
		ColumnsWithMissing: map[string]int{},
		Percentages:        make(map[string]float64, t.NumCols()),
		TotalRows:          t.NumRows(),
		TotalColumns:       t.NumCols(),
	}
	for _, col := range t.Columns {
		n := col.NullCount()
		info.TotalMissing += n
		if n > 0 {
			info.ColumnsWithMissing[col.Name] = n
		}
		info.Percentages[col.Name] = percent(n, info.TotalRows)
	}
	return info
}

// HandleMissing applies strategy to every null cell. An unknown strategy or an empty table
// returns the input unchanged with zero stats.
func (c *Cleaner) HandleMissing(t table.Table, strategy string) (table.Table, MissingStats) {
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	if t.NumRows() == 0 {
		c.log.Warn("table is empty, skipping missing data handling")
		return t.Clone(), MissingStats{}
	}
	switch strategy {
	case MissingMean, MissingMedian, MissingMode, MissingDrop:
	default:
		c.log.Error("invalid missing data strategy", "strategy", strategy, "valid", strings.Join(MissingStrategies, ","))
		return t.Clone(), MissingStats{}
	}

	info := MissingReport(t)
	if info.TotalMissing == 0 {
		c.log.Info("no missing values found")
		return t.Clone(), MissingStats{Strategy: strategy}
	}
	c.log.Info("found missing values", "total", info.TotalMissing, "columns", len(info.ColumnsWithMissing))

	var (
		out   table.Table
		stats MissingStats
	)
	if strategy == MissingDrop {
		out, stats = c.dropMissing(t)
	} else {
		out, stats = c.fillMissing(t, strategy)
	}
	stats.Strategy = strategy
	stats.Before = &info
	return out, stats
}

func (c *Cleaner) dropMissing(t table.Table) (table.Table, MissingStats) {
	n := t.NumRows()
	keep := make([]bool, n)
	for r := 0; r < n; r++ {
		keep[r] = true
		for _, col := range t.Columns {
			if col.Cells[r].IsNull() {
				keep[r] = false
				break
			}
		}
	}
	out := t.FilterRows(keep)
	stats := MissingStats{
		OriginalRows: n,
		FinalRows:    out.NumRows(),
		RowsDropped:  n - out.NumRows(),
	}
	stats.ChangesMade = stats.RowsDropped > 0
	c.log.Info("dropped rows with missing values", "rows", stats.RowsDropped, "from", n, "to", stats.FinalRows)
	return out, stats
}

func (c *Cleaner) fillMissing(t table.Table, strategy string) (table.Table, MissingStats) {
	out := t.Clone()
	stats := MissingStats{FillValues: map[string]string{}}
	for i := range out.Columns {
		col := &out.Columns[i]
		nulls := col.NullCount()
		if nulls == 0 {
			continue
		}
		var (
			fill table.Cell
			ok   bool
		)
		switch strategy {
		case MissingMean, MissingMedian:
			if !col.IsNumeric() {
				c.log.Warn("cannot apply numeric fill to non-numeric column, skipping", "strategy", strategy, "column", col.Name)
				stats.Skipped = append(stats.Skipped, col.Name)
				continue
			}
			fill, ok = numericFill(col, strategy)
		case MissingMode:
			fill, ok = modeOf(col.Cells)
		}
		if !ok {
			c.log.Warn("cannot determine fill value, skipping", "strategy", strategy, "column", col.Name)
			stats.Skipped = append(stats.Skipped, col.Name)
			continue
		}
		for r, v := range col.Cells {
			if v.IsNull() {
				col.Cells[r] = fill
			}
		}
		stats.ColumnsFilled = append(stats.ColumnsFilled, col.Name)
		stats.FillValues[col.Name] = fill.String()
		c.log.Debug("filled missing values", "column", col.Name, "count", nulls, "value", fill.String())
	}
	stats.ChangesMade = len(stats.ColumnsFilled) > 0
	if stats.ChangesMade {
		c.log.Info("filled missing values", "columns", len(stats.ColumnsFilled))
	} else {
		c.log.Info("no missing values were filled, no applicable columns")
	}
	return out, stats
}

// numericFill computes the mean or median of col. An int column is promoted to float when
// the fill value is fractional.
func numericFill(col *table.Column, strategy string) (table.Cell, bool) {
	vals := col.Floats()
	if len(vals) == 0 {
		return table.Null(), false
	}
	var v float64
	if strategy == MissingMean {
		v, _ = meanStd(vals)
	} else {
		v = median(vals)
	}
	if col.Type == table.TypeInt {
		if v == math.Trunc(v) {
			return table.Int(int64(v)), true
		}
		promoteToFloat(col)
	}
	return table.Float(v), true
}

// modeOf returns the most frequent non-null cell. Ties go to the value seen first.
func modeOf(cells []table.Cell) (table.Cell, bool) {
	type entry struct {
		cell  table.Cell
		count int
		first int
	}
	counts := map[string]*entry{}
	var order []*entry
	for i, v := range cells {
		if v.IsNull() {
			continue
		}
		k := string(v.AppendKey(nil))
		e, ok := counts[k]
		if !ok {
			e = &entry{cell: v, first: i}
			counts[k] = e
			order = append(order, e)
		}
		e.count++
	}
	if len(order) == 0 {
		return table.Null(), false
	}
	best := order[0]
	for _, e := range order[1:] {
		if e.count > best.count {
			best = e
		}
	}
	return best.cell, true
}
