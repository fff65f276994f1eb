package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// naTokens are raw values read as missing, matching common dataframe CSV readers.
var naTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-nan": {}, "-NaN": {},
	"null": {}, "NULL": {}, "None": {}, "#N/A": {}, "#NA": {}, "<NA>": {},
}

// IsNA reports whether a raw value should be read as missing.
func IsNA(s string) bool {
	_, ok := naTokens[strings.TrimSpace(s)]
	return ok
}

var timeLayouts = []string{
	time.RFC3339Nano, time.RFC3339,
	"2006-01-02", "2006/01/02", "2006-01-02 15:04", "2006-01-02 15:04:05", "2006-01-02T15:04:05",
	"2006-01-02 15:04:05.000", "2006/01/02 15:04:05",
	"01/02/2006", "02/01/2006", "01-02-2006", "02-01-2006", "1/2/2006", "1/2/06",
	"1/2/2006 15:04", "1/2/2006 15:04:05",
	"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "2 Jan 2006", "02 Jan 2006", "2 January 2006",
	time.RFC1123, time.RFC1123Z, time.RFC850, time.ANSIC,
}

// ParseTime tries the known date layouts in order.
func ParseTime(s string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a trimmed decimal or scientific number. NaN is rejected.
func ParseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

func parseInt(s string) (int64, bool) {
	i, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return i, err == nil
}

func parseBoolLiteral(s string) (bool, bool) {
	switch strings.TrimSpace(s) {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	}
	return false, false
}

// ParseCell reads a single raw value with the load-time rules.
func ParseCell(s string) Cell {
	if IsNA(s) {
		return Null()
	}
	if i, ok := parseInt(s); ok {
		return Int(i)
	}
	if f, ok := ParseNumber(s); ok {
		return Float(f)
	}
	if b, ok := parseBoolLiteral(s); ok {
		return Bool(b)
	}
	return Text(s)
}

// FromRecords builds a table from a header and raw string rows, inferring each column's
// load-time type. Short rows are padded with nulls; rows longer than the header are rejected.
func FromRecords(header []string, records [][]string) (Table, error) {
	names := uniqueHeader(header)
	raw := make([][]string, len(names))
	for j := range raw {
		raw[j] = make([]string, len(records))
	}
	for r, rec := range records {
		if len(rec) > len(names) {
			return Table{}, fmt.Errorf("row %d has %d fields, header has %d", r+1, len(rec), len(names))
		}
		for j := range rec {
			raw[j][r] = rec[j]
		}
	}
	cols := make([]Column, len(names))
	for j, name := range names {
		cols[j] = inferColumn(name, raw[j])
	}
	return Table{Columns: cols}, nil
}

func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	used := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if _, dup := used[name]; dup {
			base := name
			n := seen[base]
			for {
				n++
				cand := fmt.Sprintf("%s.%d", base, n)
				if _, taken := used[cand]; !taken {
					name = cand
					break
				}
			}
			seen[base] = n
		}
		used[name] = struct{}{}
		out[i] = name
	}
	return out
}

func inferColumn(name string, raw []string) Column {
	cells := make([]Cell, len(raw))
	nonNull, ints, floats, bools := 0, 0, 0, 0
	for _, s := range raw {
		if IsNA(s) {
			continue
		}
		nonNull++
		if _, ok := parseInt(s); ok {
			ints++
			floats++
			continue
		}
		if _, ok := ParseNumber(s); ok {
			floats++
			continue
		}
		if _, ok := parseBoolLiteral(s); ok {
			bools++
		}
	}
	col := Column{Name: name, Type: TypeText, Cells: cells}
	switch {
	case nonNull == 0:
	case ints == nonNull && nonNull == len(raw):
		col.Type = TypeInt
	case floats == nonNull:
		col.Type = TypeFloat
	case bools == nonNull:
		col.Type = TypeBool
	}
	for i, s := range raw {
		if IsNA(s) {
			cells[i] = Null()
			continue
		}
		switch col.Type {
		case TypeInt:
			v, _ := parseInt(s)
			cells[i] = Int(v)
		case TypeFloat:
			v, _ := ParseNumber(s)
			cells[i] = Float(v)
		case TypeBool:
			v, _ := parseBoolLiteral(s)
			cells[i] = Bool(v)
		default:
			cells[i] = Text(s)
		}
	}
	return col
}
