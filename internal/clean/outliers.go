package clean

import (
	"math"
	"strings"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// Outlier detection methods.
const (
	OutlierZScore = "zscore"
	OutlierIQR    = "iqr"
)

// OutlierMethods lists the valid outlier methods.
var OutlierMethods = []string{OutlierZScore, OutlierIQR}

// removalWarnPercent is the removal share above which a warning is raised.
const removalWarnPercent = 20.0

// ColumnOutliers holds per-column detection details. Z-score and IQR fill different fields.
type ColumnOutliers struct {
	Column           string  `json:"column" yaml:"column"`
	OutliersDetected int     `json:"outliers_detected" yaml:"outliers_detected"`
	Threshold        float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	MaxZScore        float64 `json:"max_zscore,omitempty" yaml:"max_zscore,omitempty"`
	Mean             float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std              float64 `json:"std,omitempty" yaml:"std,omitempty"`
	Q1               float64 `json:"q1,omitempty" yaml:"q1,omitempty"`
	Q3               float64 `json:"q3,omitempty" yaml:"q3,omitempty"`
	IQR              float64 `json:"iqr,omitempty" yaml:"iqr,omitempty"`
	LowerBound       float64 `json:"lower_bound,omitempty" yaml:"lower_bound,omitempty"`
	UpperBound       float64 `json:"upper_bound,omitempty" yaml:"upper_bound,omitempty"`
	Min              float64 `json:"min_value,omitempty" yaml:"min_value,omitempty"`
	Max              float64 `json:"max_value,omitempty" yaml:"max_value,omitempty"`

	rows []int
}

// OutlierStats describes a RemoveOutliers pass.
type OutlierStats struct {
	Method                 string           `json:"method,omitempty" yaml:"method,omitempty"`
	TotalRemoved           int              `json:"total_removed" yaml:"total_removed"`
	OriginalRows           int              `json:"original_rows" yaml:"original_rows"`
	FinalRows              int              `json:"final_rows" yaml:"final_rows"`
	NumericColumnsAnalyzed int              `json:"numeric_columns_analyzed" yaml:"numeric_columns_analyzed"`
	Columns                []ColumnOutliers `json:"column_stats,omitempty" yaml:"column_stats,omitempty"`
	RemovalPercentage      float64          `json:"removal_percentage" yaml:"removal_percentage"`
	Warning                string           `json:"warning,omitempty" yaml:"warning,omitempty"`
}

func validOutlierMethod(m string) bool {
	return m == OutlierZScore || m == OutlierIQR
}

// RemoveOutliers drops every row that is an outlier in at least one numeric column. A
// non-positive threshold uses the cleaner's configured threshold.
func (c *Cleaner) RemoveOutliers(t table.Table, method string, threshold float64) (table.Table, OutlierStats) {
	method = strings.ToLower(strings.TrimSpace(method))
	n := t.NumRows()
	stats := OutlierStats{OriginalRows: n, FinalRows: n}
	if n == 0 {
		c.log.Warn("table is empty, skipping outlier removal")
		return t.Clone(), stats
	}
	if !validOutlierMethod(method) {
		c.log.Error("invalid outlier method", "method", method, "valid", strings.Join(OutlierMethods, ","))
		return t.Clone(), stats
	}
	if threshold <= 0 {
		threshold = c.zscoreThreshold
	}
	stats.Method = method

	cols := c.analyzeOutliers(t, method, threshold)
	stats.NumericColumnsAnalyzed = len(cols)
	if len(cols) == 0 {
		c.log.Warn("no numeric columns found for outlier detection")
		return t.Clone(), stats
	}

	keep := make([]bool, n)
	for i := range keep {
		keep[i] = true
	}
	for _, co := range cols {
		for _, r := range co.rows {
			keep[r] = false
		}
	}
	out := t.FilterRows(keep)

	stats.Columns = cols
	stats.FinalRows = out.NumRows()
	stats.TotalRemoved = n - stats.FinalRows
	stats.RemovalPercentage = percent(stats.TotalRemoved, n)
	if stats.TotalRemoved > 0 {
		c.log.Info("removed outlier rows", "method", method, "rows", stats.TotalRemoved, "percent", stats.RemovalPercentage)
	} else {
		c.log.Info("no outliers detected", "method", method)
	}
	if stats.RemovalPercentage > removalWarnPercent {
		stats.Warning = "removed more than 20% of rows, consider adjusting the threshold"
		c.log.Warn("large share of rows removed as outliers", "percent", stats.RemovalPercentage)
	}
	return out, stats
}

// DetectOutliers returns the outlier row indexes per numeric column without removing anything.
// Columns without outliers are omitted. An invalid method yields nil.
func (c *Cleaner) DetectOutliers(t table.Table, method string, threshold float64) map[string][]int {
	method = strings.ToLower(strings.TrimSpace(method))
	if !validOutlierMethod(method) {
		return nil
	}
	if threshold <= 0 {
		threshold = c.zscoreThreshold
	}
	out := map[string][]int{}
	for _, co := range c.analyzeOutliers(t, method, threshold) {
		if len(co.rows) > 0 {
			out[co.Column] = co.rows
		}
	}
	return out
}

// OutlierSummary returns detection details for every numeric column without removing rows.
func (c *Cleaner) OutlierSummary(t table.Table, method string, threshold float64) []ColumnOutliers {
	method = strings.ToLower(strings.TrimSpace(method))
	if !validOutlierMethod(method) {
		return nil
	}
	if threshold <= 0 {
		threshold = c.zscoreThreshold
	}
	return c.analyzeOutliers(t, method, threshold)
}

func (c *Cleaner) analyzeOutliers(t table.Table, method string, threshold float64) []ColumnOutliers {
	var out []ColumnOutliers
	for _, col := range t.Columns {
		if !col.IsNumeric() {
			continue
		}
		var co ColumnOutliers
		if method == OutlierZScore {
			co = zscoreOutliers(col, threshold)
		} else {
			co = iqrOutliers(col)
		}
		if co.OutliersDetected > 0 {
			c.log.Debug("column outliers", "column", col.Name, "count", co.OutliersDetected)
		}
		out = append(out, co)
	}
	return out
}

func zscoreOutliers(col table.Column, threshold float64) ColumnOutliers {
	co := ColumnOutliers{Column: col.Name, Threshold: threshold}
	vals := col.Floats()
	if len(vals) < 2 {
		return co
	}
	mean, std := meanStd(vals)
	co.Mean, co.Std = mean, std
	if std == 0 || math.IsNaN(std) {
		return co
	}
	for r, v := range col.Cells {
		f, ok := v.Float64()
		if !ok {
			continue
		}
		z := math.Abs((f - mean) / std)
		if z > co.MaxZScore {
			co.MaxZScore = z
		}
		if z > threshold {
			co.rows = append(co.rows, r)
		}
	}
	co.OutliersDetected = len(co.rows)
	return co
}

func iqrOutliers(col table.Column) ColumnOutliers {
	co := ColumnOutliers{Column: col.Name}
	vals := col.Floats()
	if len(vals) == 0 {
		return co
	}
	sorted := sortedCopy(vals)
	co.Q1 = quantile(sorted, 0.25)
	co.Q3 = quantile(sorted, 0.75)
	co.IQR = co.Q3 - co.Q1
	co.LowerBound = co.Q1 - 1.5*co.IQR
	co.UpperBound = co.Q3 + 1.5*co.IQR
	co.Min, co.Max = sorted[0], sorted[len(sorted)-1]
	for r, v := range col.Cells {
		f, ok := v.Float64()
		if !ok {
			continue
		}
		if f < co.LowerBound || f > co.UpperBound {
			co.rows = append(co.rows, r)
		}
	}
	co.OutliersDetected = len(co.rows)
	return co
}
