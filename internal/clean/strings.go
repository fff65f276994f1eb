package clean

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// Case modes accepted by ChangeCase.
const (
	CaseUpper = "upper"
	CaseLower = "lower"
	CaseTitle = "title"
)

// CaseModes lists the valid ChangeCase modes.
var CaseModes = []string{CaseUpper, CaseLower, CaseTitle}

type TrimStats struct {
	Columns []string `json:"columns" yaml:"columns"`
}

type CaseStats struct {
	Mode    string   `json:"mode" yaml:"mode"`
	Columns []string `json:"columns" yaml:"columns"`
}

type ReplaceStats struct {
	Replacements int      `json:"replacements" yaml:"replacements"`
	Columns      []string `json:"columns" yaml:"columns"`
}

// TrimWhitespace strips leading and trailing whitespace from text cells of text columns.
func (c *Cleaner) TrimWhitespace(t table.Table) (table.Table, TrimStats) {
	out := t.Clone()
	var stats TrimStats
	for i := range out.Columns {
		col := &out.Columns[i]
		if !col.IsText() {
			continue
		}
		changed := false
		for r, v := range col.Cells {
			s, ok := v.Text()
			if !ok {
				continue
			}
			if trimmed := strings.TrimSpace(s); trimmed != s {
				col.Cells[r] = table.Text(trimmed)
				changed = true
			}
		}
		if changed {
			stats.Columns = append(stats.Columns, col.Name)
		}
	}
	c.log.Debug("trimmed whitespace", "columns", len(stats.Columns))
	return out, stats
}

func caserFor(mode string) (cases.Caser, bool) {
	switch mode {
	case CaseUpper:
		return cases.Upper(language.Und), true
	case CaseLower:
		return cases.Lower(language.Und), true
	case CaseTitle:
		return cases.Title(language.Und), true
	default:
		return cases.Caser{}, false
	}
}

// ChangeCase applies mode to text cells of text columns. An unknown mode leaves the table as is.
func (c *Cleaner) ChangeCase(t table.Table, mode string) (table.Table, CaseStats) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	caser, ok := caserFor(mode)
	if !ok {
		c.log.Warn("unknown case mode, skipping", "mode", mode)
		return t.Clone(), CaseStats{}
	}
	out := t.Clone()
	stats := CaseStats{Mode: mode}
	for i := range out.Columns {
		col := &out.Columns[i]
		if !col.IsText() {
			continue
		}
		stats.Columns = append(stats.Columns, col.Name)
		for r, v := range col.Cells {
			if s, ok := v.Text(); ok {
				col.Cells[r] = table.Text(caser.String(s))
			}
		}
	}
	c.log.Debug("changed case", "mode", mode, "columns", len(stats.Columns))
	return out, stats
}

// FindReplace replaces every non-null cell whose canonical string equals find. The replacement
// is parsed like a loaded value; a typed column that cannot hold it becomes a text column.
func (c *Cleaner) FindReplace(t table.Table, find, replace string) (table.Table, ReplaceStats) {
	out := t.Clone()
	var stats ReplaceStats
	repl := table.ParseCell(replace)
	for i := range out.Columns {
		col := &out.Columns[i]
		var rows []int
		for r, v := range col.Cells {
			if !v.IsNull() && v.String() == find {
				rows = append(rows, r)
			}
		}
		if len(rows) == 0 {
			continue
		}
		cell := fitCell(col, repl, replace)
		for _, r := range rows {
			col.Cells[r] = cell
		}
		stats.Replacements += len(rows)
		stats.Columns = append(stats.Columns, col.Name)
	}
	if stats.Replacements > 0 {
		c.log.Info("replaced values", "find", find, "replace", replace, "count", stats.Replacements)
	}
	return out, stats
}

// fitCell adapts col so that it can hold cell and returns the cell to store.
func fitCell(col *table.Column, cell table.Cell, raw string) table.Cell {
	if cell.IsNull() {
		return cell
	}
	switch col.Type {
	case table.TypeText:
		return cell
	case table.TypeCategory:
		if cell.Kind() == table.KindText {
			return cell
		}
		col.Type = table.TypeText
		return table.Text(raw)
	case table.TypeInt:
		switch cell.Kind() {
		case table.KindInt:
			return cell
		case table.KindFloat:
			promoteToFloat(col)
			return cell
		}
	case table.TypeFloat:
		switch cell.Kind() {
		case table.KindFloat:
			return cell
		case table.KindInt:
			f, _ := cell.Float64()
			return table.Float(f)
		}
	case table.TypeBool:
		if cell.Kind() == table.KindBool {
			return cell
		}
	case table.TypeDatetime:
		if cell.Kind() == table.KindTime {
			return cell
		}
	}
	col.Type = table.TypeText
	return cell
}

func promoteToFloat(col *table.Column) {
	for r, v := range col.Cells {
		if i, ok := v.Int(); ok {
			col.Cells[r] = table.Float(float64(i))
		}
	}
	col.Type = table.TypeFloat
}
