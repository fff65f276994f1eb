package clean

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

const (
	dateSampleSize    = 10
	dateMatchRatio    = 0.7
	categoryMinValues = 10
	categoryMaxUnique = 100
)

var (
	trueValues  = map[string]struct{}{"true": {}, "1": {}, "yes": {}, "y": {}, "t": {}, "on": {}}
	falseValues = map[string]struct{}{"false": {}, "0": {}, "no": {}, "n": {}, "f": {}, "off": {}}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`\d{2}/\d{2}/\d{4}`),
		regexp.MustCompile(`\d{2}-\d{2}-\d{4}`),
		regexp.MustCompile(`\d{4}/\d{2}/\d{2}`),
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`),
	}
)

// TypeChange records a column whose declared type changed.
type TypeChange struct {
	Column string `json:"column" yaml:"column"`
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
}

func (tc TypeChange) String() string { return tc.From + " -> " + tc.To }

// TypeStats describes a StandardizeTypes pass.
type TypeStats struct {
	Changes []TypeChange   `json:"changes" yaml:"changes"`
	Errors  []*ColumnError `json:"-" yaml:"-"`
}

// StandardizeTypes detects the best type of every column and converts it. A column whose
// conversion fails keeps its original values and is reported in TypeStats.Errors.
func (c *Cleaner) StandardizeTypes(t table.Table) (table.Table, TypeStats) {
	var stats TypeStats
	out := t.Clone()
	if t.NumRows() == 0 {
		c.log.Warn("table is empty, skipping type standardization")
		return out, stats
	}
	c.log.Info("standardizing data types", "columns", t.NumCols())
	for i := range out.Columns {
		col := out.Columns[i]
		converted, err := convertColumn(col)
		if err != nil {
			ce := &ColumnError{Stage: "standardize_types", Column: col.Name, Err: err}
			stats.Errors = append(stats.Errors, ce)
			c.log.Error("type standardization failed", "column", col.Name, "error", err)
			continue
		}
		if converted.Type == col.Type {
			continue
		}
		out.Columns[i] = converted
		stats.Changes = append(stats.Changes, TypeChange{Column: col.Name, From: col.Type.String(), To: converted.Type.String()})
		c.log.Debug("column type changed", "column", col.Name, "from", col.Type.String(), "to", converted.Type.String())
	}
	if len(stats.Changes) > 0 {
		c.log.Info("standardized column types", "count", len(stats.Changes))
	} else {
		c.log.Info("no type conversions were necessary")
	}
	return out, stats
}

// SuggestTypes reports the changes StandardizeTypes would make without applying them.
func SuggestTypes(t table.Table) []TypeChange {
	var out []TypeChange
	for _, col := range t.Columns {
		to := DetectType(col)
		if to != col.Type {
			out = append(out, TypeChange{Column: col.Name, From: col.Type.String(), To: to.String()})
		}
	}
	return out
}

// DetectType returns the type a column would be converted to. Detection tries bool, int,
// float and datetime in that order; text columns may become categories.
func DetectType(col table.Column) table.Type {
	var vals []string
	for _, v := range col.Cells {
		if !v.IsNull() {
			vals = append(vals, v.String())
		}
	}
	if len(vals) == 0 {
		return col.Type
	}
	switch {
	case isBoolValues(vals):
		return table.TypeBool
	case isIntValues(vals):
		return table.TypeInt
	case isFloatValues(vals):
		return table.TypeFloat
	case isDateValues(vals):
		return table.TypeDatetime
	}
	if col.Type == table.TypeText && shouldBeCategory(col) {
		return table.TypeCategory
	}
	return col.Type
}

func isBoolValues(vals []string) bool {
	for _, v := range vals {
		k := strings.ToLower(strings.TrimSpace(v))
		_, t := trueValues[k]
		_, f := falseValues[k]
		if !t && !f {
			return false
		}
	}
	return true
}

func isIntValues(vals []string) bool {
	for _, v := range vals {
		f, ok := table.ParseNumber(v)
		if !ok || math.IsInf(f, 0) || f != math.Trunc(f) {
			return false
		}
	}
	return true
}

func isFloatValues(vals []string) bool {
	for _, v := range vals {
		if _, ok := table.ParseNumber(v); !ok {
			return false
		}
	}
	return true
}

func isDateValues(vals []string) bool {
	n := len(vals)
	if n > dateSampleSize {
		n = dateSampleSize
	}
	hits := 0
	for _, v := range vals[:n] {
		if looksLikeDate(v) {
			hits++
		}
	}
	return float64(hits)/float64(n) >= dateMatchRatio
}

func looksLikeDate(s string) bool {
	for _, p := range datePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	_, ok := table.ParseTime(s)
	return ok
}

// shouldBeCategory counts nulls in the total and excludes them from the distinct count.
func shouldBeCategory(col table.Column) bool {
	total := len(col.Cells)
	if total <= categoryMinValues {
		return false
	}
	distinct := map[string]struct{}{}
	for _, v := range col.Cells {
		if !v.IsNull() {
			distinct[string(v.AppendKey(nil))] = struct{}{}
		}
	}
	limit := math.Min(categoryMaxUnique, float64(total)*0.5)
	return float64(len(distinct)) < limit
}

// convertColumn converts col to its detected type. Panics raised while converting are
// returned as errors so a single bad column never aborts the stage.
func convertColumn(col table.Column) (out table.Column, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion panicked: %v", r)
		}
	}()
	to := DetectType(col)
	if to == col.Type {
		return col, nil
	}
	cells := make([]table.Cell, len(col.Cells))
	for r, v := range col.Cells {
		if v.IsNull() {
			continue
		}
		c, cerr := convertCell(v, to)
		if cerr != nil {
			return col, fmt.Errorf("row %d: %w", r, cerr)
		}
		cells[r] = c
	}
	return table.Column{Name: col.Name, Type: to, Cells: cells}, nil
}

func convertCell(v table.Cell, to table.Type) (table.Cell, error) {
	s := v.String()
	switch to {
	case table.TypeBool:
		_, ok := trueValues[strings.ToLower(strings.TrimSpace(s))]
		return table.Bool(ok), nil
	case table.TypeInt:
		if i, ok := v.Int(); ok {
			return table.Int(i), nil
		}
		if i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
			return table.Int(i), nil
		}
		f, ok := table.ParseNumber(s)
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if !ok || f >= math.MaxInt64 || f < math.MinInt64 {
			return table.Null(), fmt.Errorf("value %q does not fit in a 64-bit integer", s)
		}
		return table.Int(int64(f)), nil
	case table.TypeFloat:
		if f, ok := v.Float64(); ok && v.Kind() != table.KindBool {
			return table.Float(f), nil
		}
		f, ok := table.ParseNumber(s)
		if !ok {
			return table.Null(), fmt.Errorf("value %q is not numeric", s)
		}
		return table.Float(f), nil
	case table.TypeDatetime:
		if tm, ok := v.Time(); ok {
			return table.Time(tm), nil
		}
		if tm, ok := table.ParseTime(s); ok {
			return table.Time(tm), nil
		}
		// unparseable values coerce to null
		return table.Null(), nil
	default:
		return table.Text(s), nil
	}
}
