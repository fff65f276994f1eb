package table

import (
	"fmt"
)

// Type is the declared type of a column.
type Type uint8

const (
	TypeText Type = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeDatetime
	TypeCategory
)

func (t Type) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDatetime:
		return "datetime"
	case TypeCategory:
		return "category"
	default:
		return "unknown"
	}
}

// Column is a named, typed sequence of cells. Text columns may hold cells of any kind;
// other types hold cells of their own kind or null.
type Column struct {
	Name  string
	Type  Type
	Cells []Cell
}

// IsNumeric reports whether the column holds int or float values.
func (c Column) IsNumeric() bool { return c.Type == TypeInt || c.Type == TypeFloat }

// IsText reports whether string operations apply to the column.
func (c Column) IsText() bool { return c.Type == TypeText }

// NullCount returns the number of null cells.
func (c Column) NullCount() int {
	n := 0
	for _, v := range c.Cells {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// Floats returns the non-null numeric values in row order.
func (c Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Cells))
	for _, v := range c.Cells {
		if f, ok := v.Float64(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Table is an ordered set of equal-length columns. Stages receive it by value and must
// Clone before mutating cells.
type Table struct {
	Columns []Column
}

// New builds a table from columns and checks the equal-length invariant.
func New(cols ...Column) (Table, error) {
	t := Table{Columns: cols}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Validate checks that every column has the same number of cells.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return nil
	}
	n := len(t.Columns[0].Cells)
	for _, c := range t.Columns[1:] {
		if len(c.Cells) != n {
			return fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(c.Cells), n)
		}
	}
	return nil
}

func (t Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

func (t Table) NumCols() int { return len(t.Columns) }

func (t Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the first column named name, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Row returns the cells of row i across all columns.
func (t Table) Row(i int) []Cell {
	out := make([]Cell, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = c.Cells[i]
	}
	return out
}

// Clone deep-copies the column slices so the result shares no cell storage with t.
func (t Table) Clone() Table {
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cells := make([]Cell, len(c.Cells))
		copy(cells, c.Cells)
		cols[i] = Column{Name: c.Name, Type: c.Type, Cells: cells}
	}
	return Table{Columns: cols}
}

// FilterRows returns a new table holding only rows where keep is true.
func (t Table) FilterRows(keep []bool) Table {
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	cols := make([]Column, len(t.Columns))
	for i, c := range t.Columns {
		cells := make([]Cell, 0, n)
		for r, v := range c.Cells {
			if r < len(keep) && keep[r] {
				cells = append(cells, v)
			}
		}
		cols[i] = Column{Name: c.Name, Type: c.Type, Cells: cells}
	}
	return Table{Columns: cols}
}

// DropColumns removes the named columns and reports which ones were present, in table order.
func (t Table) DropColumns(names []string) (Table, []string) {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var dropped []string
	cols := make([]Column, 0, len(t.Columns))
	for _, c := range t.Clone().Columns {
		if _, ok := drop[c.Name]; ok {
			dropped = append(dropped, c.Name)
			continue
		}
		cols = append(cols, c)
	}
	return Table{Columns: cols}, dropped
}

// Head returns a copy of the first n rows.
func (t Table) Head(n int) Table {
	rows := t.NumRows()
	if n > rows || n < 0 {
		n = rows
	}
	keep := make([]bool, rows)
	for i := 0; i < n; i++ {
		keep[i] = true
	}
	return t.FilterRows(keep)
}

// MissingCount is the total number of null cells.
func (t Table) MissingCount() int {
	n := 0
	for _, c := range t.Columns {
		n += c.NullCount()
	}
	return n
}

// Records renders the table as string rows, header first. Nulls render as "".
func (t Table) Records() [][]string {
	out := make([][]string, 0, t.NumRows()+1)
	out = append(out, t.Names())
	for r := 0; r < t.NumRows(); r++ {
		row := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = c.Cells[r].String()
		}
		out = append(out, row)
	}
	return out
}
