// Package report builds a read-only Markdown profile of a loaded table: schema, header
// problems, missing data, outlier candidates and suggested type conversions.
package report

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/datatidy-cli/internal/clean"
	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// Options controls profiling behavior.
type Options struct {
	// SampleRows is the number of head rows shown; 0 uses 5.
	SampleRows int
	// TopValues caps the frequent values listed for non-numeric columns; 0 uses 5.
	TopValues int
}

// DefaultOptions returns reasonable defaults for profiling.
func DefaultOptions() Options {
	return Options{SampleRows: 5, TopValues: 5}
}

// Report is a markdown-friendly profile of a table.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Names    clean.NameIssues
	Missing  clean.MissingInfo
	Outliers []MethodOutliers
	Types    []clean.TypeChange
	Samples  table.Table
	Warnings []string
}

// ColumnSummary captures the type and statistics of one column.
type ColumnSummary struct {
	Name    string
	Type    table.Type
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	Std  float64
	// Non-numeric frequent values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// MethodOutliers holds the per-column detection details of one method.
type MethodOutliers struct {
	Method  string
	Columns []clean.ColumnOutliers
	// Rows holds 0-based outlier row indexes per column; columns without outliers are absent.
	Rows map[string][]int
}

// maxListedRows caps the outlier row numbers printed per column.
const maxListedRows = 10

// Build profiles t. The cleaner supplies the outlier threshold and logger; nothing is modified.
func Build(name string, t table.Table, c *clean.Cleaner, opt Options) *Report {
	if c == nil {
		c = clean.New(nil)
	}
	if opt.SampleRows <= 0 {
		opt.SampleRows = 5
	}
	if opt.TopValues <= 0 {
		opt.TopValues = 5
	}
	rep := &Report{
		Name:    name,
		Rows:    t.NumRows(),
		Names:   clean.ValidateColumnNames(t.Names()),
		Missing: clean.MissingReport(t),
		Types:   clean.SuggestTypes(t),
		Samples: t.Head(opt.SampleRows),
	}
	for _, col := range t.Columns {
		rep.Cols = append(rep.Cols, summarize(col, opt.TopValues))
	}
	for _, m := range clean.OutlierMethods {
		rep.Outliers = append(rep.Outliers, MethodOutliers{
			Method:  m,
			Columns: c.OutlierSummary(t, m, 0),
			Rows:    c.DetectOutliers(t, m, 0),
		})
	}
	if t.NumRows() == 0 {
		rep.Warnings = append(rep.Warnings, "table has no rows")
	}
	for _, cs := range rep.Cols {
		if cs.NonNull == 0 && rep.Rows > 0 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s is entirely missing", safeName(cs.Name)))
		} else if cs.Unique == 1 && rep.Rows > 1 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("column %s has a single distinct value", safeName(cs.Name)))
		}
	}
	return rep
}

func summarize(col table.Column, top int) ColumnSummary {
	cs := ColumnSummary{Name: col.Name, Type: col.Type, Missing: col.NullCount()}
	cs.NonNull = len(col.Cells) - cs.Missing
	counts := map[string]int{}
	for _, v := range col.Cells {
		if !v.IsNull() {
			counts[v.String()]++
		}
	}
	cs.Unique = len(counts)

	if col.IsNumeric() {
		vals := col.Floats()
		if len(vals) > 0 {
			cs.Min, cs.Max = math.Inf(1), math.Inf(-1)
			for _, x := range vals {
				cs.Min = math.Min(cs.Min, x)
				cs.Max = math.Max(cs.Max, x)
			}
			cs.Mean = stat.Mean(vals, nil)
			if len(vals) > 1 {
				cs.Std = stat.StdDev(vals, nil)
			}
		}
		return cs
	}
	for v, n := range counts {
		cs.TopValues = append(cs.TopValues, CategoryCount{Value: v, Count: n})
	}
	sort.Slice(cs.TopValues, func(i, j int) bool {
		if cs.TopValues[i].Count == cs.TopValues[j].Count {
			return cs.TopValues[i].Value < cs.TopValues[j].Value
		}
		return cs.TopValues[i].Count > cs.TopValues[j].Count
	})
	if len(cs.TopValues) > top {
		cs.TopValues = cs.TopValues[:top]
	}
	return cs
}

// Markdown renders the report as plain sections suitable for a terminal or a document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Cols)))
	cells := r.Rows * len(r.Cols)
	missPct := 0.0
	if cells > 0 {
		missPct = float64(r.Missing.TotalMissing) * 100.0 / float64(cells)
	}
	b.WriteString(fmt.Sprintf("Missing values: %d (%.1f%% of cells)\n\n", r.Missing.TotalMissing, missPct))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, unique %d)",
			safeName(c.Name), c.Type, c.NonNull, r.Missing.Percentages[c.Name], c.Unique))
		switch {
		case c.Type == table.TypeInt || c.Type == table.TypeFloat:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			}
		case len(c.TopValues) > 0:
			b.WriteString("; top: ")
			for i, kv := range c.TopValues {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(clip(kv.Value, 40)), kv.Count))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString("\n[COLUMN NAME ISSUES]\n")
	if !r.Names.Any() {
		b.WriteString("None\n")
	}
	for _, iss := range []struct {
		label string
		names []string
	}{
		{"duplicates", r.Names.Duplicates},
		{"special characters", r.Names.SpecialChars},
		{"leading/trailing whitespace", r.Names.Whitespace},
		{"empty", r.Names.Empty},
		{"starts with a digit", r.Names.NumericStart},
	} {
		if len(iss.names) == 0 {
			continue
		}
		quoted := make([]string, len(iss.names))
		for i, n := range iss.names {
			quoted[i] = fmt.Sprintf("%q", n)
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", iss.label, strings.Join(quoted, ", ")))
	}

	b.WriteString("\n[MISSING DATA]\n")
	if r.Missing.TotalMissing == 0 {
		b.WriteString("No missing values\n")
	} else {
		for _, c := range r.Cols {
			if n := r.Missing.ColumnsWithMissing[c.Name]; n > 0 {
				b.WriteString(fmt.Sprintf("- %s: %d (%.2f%%)\n", safeName(c.Name), n, r.Missing.Percentages[c.Name]))
			}
		}
	}

	b.WriteString("\n[OUTLIERS]\n")
	if len(r.Outliers) == 0 || len(r.Outliers[0].Columns) == 0 {
		b.WriteString("No numeric columns\n")
	} else {
		for _, m := range r.Outliers {
			for _, co := range m.Columns {
				b.WriteString(fmt.Sprintf("- %s %s: %d", m.Method, safeName(co.Column), co.OutliersDetected))
				switch m.Method {
				case clean.OutlierZScore:
					b.WriteString(fmt.Sprintf(" above |z|>%.1f", co.Threshold))
					if co.MaxZScore > 0 {
						b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", co.MaxZScore))
					}
				case clean.OutlierIQR:
					b.WriteString(fmt.Sprintf(" outside [%.4g, %.4g]", co.LowerBound, co.UpperBound))
				}
				if rows := m.Rows[co.Column]; len(rows) > 0 {
					b.WriteString("; rows " + rowList(rows))
				}
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n[TYPE SUGGESTIONS]\n")
	if len(r.Types) == 0 {
		b.WriteString("None\n")
	}
	for _, tc := range r.Types {
		b.WriteString(fmt.Sprintf("- %s: %s\n", safeName(tc.Column), tc))
	}

	if r.Samples.NumRows() > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString(PipeTable(r.Samples, 80))
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// PipeTable renders t as a Markdown pipe table, clipping values longer than width runes.
// Nulls render empty.
func PipeTable(t table.Table, width int) string {
	var b strings.Builder
	names := t.Names()
	b.WriteString("| ")
	for i, n := range names {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeVal(safeName(n)))
	}
	b.WriteString(" |\n| ")
	for i := range names {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for r := 0; r < t.NumRows(); r++ {
		b.WriteString("| ")
		for i, col := range t.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeVal(clip(col.Cells[r].String(), width)))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func clip(s string, width int) string {
	rs := []rune(s)
	if width <= 3 || len(rs) <= width {
		return s
	}
	return string(rs[:width-3]) + "..."
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// rowList renders 0-based row indexes as 1-based data row numbers.
func rowList(rows []int) string {
	parts := make([]string, 0, min(len(rows), maxListedRows)+1)
	for i, r := range rows {
		if i == maxListedRows {
			parts = append(parts, fmt.Sprintf("... (%d more)", len(rows)-maxListedRows))
			break
		}
		parts = append(parts, strconv.Itoa(r+1))
	}
	return strings.Join(parts, ", ")
}
