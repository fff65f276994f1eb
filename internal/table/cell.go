package table

import (
	"math"
	"strconv"
	"time"
)

// Kind tags the value held by a Cell.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindTime
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "datetime"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// TimeLayout is the canonical rendering of datetime cells.
const TimeLayout = "2006-01-02 15:04:05"

// Cell is a single nullable table value.
type Cell struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	t    time.Time
	s    string
}

func Null() Cell { return Cell{} }
func Bool(v bool) Cell { return Cell{kind: KindBool, b: v} }
func Int(v int64) Cell { return Cell{kind: KindInt, i: v} }
func Time(v time.Time) Cell { return Cell{kind: KindTime, t: v} }
func Text(v string) Cell { return Cell{kind: KindText, s: v} }

// Float builds a float cell; NaN is stored as null.
func Float(v float64) Cell {
	if math.IsNaN(v) {
		return Cell{}
	}
	return Cell{kind: KindFloat, f: v}
}

func (c Cell) Kind() Kind { return c.kind }
func (c Cell) IsNull() bool { return c.kind == KindNull }

func (c Cell) Bool() (bool, bool) { return c.b, c.kind == KindBool }
func (c Cell) Int() (int64, bool) { return c.i, c.kind == KindInt }
func (c Cell) Time() (time.Time, bool) { return c.t, c.kind == KindTime }
func (c Cell) Text() (string, bool) { return c.s, c.kind == KindText }

// Float64 returns the numeric view of int, float and bool cells.
func (c Cell) Float64() (float64, bool) {
	switch c.kind {
	case KindFloat:
		return c.f, true
	case KindInt:
		return float64(c.i), true
	case KindBool:
		if c.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// String renders the canonical text form. Null renders as "".
func (c Cell) String() string {
	switch c.kind {
	case KindBool:
		if c.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return FormatFloat(c.f)
	case KindTime:
		if c.t.Hour() == 0 && c.t.Minute() == 0 && c.t.Second() == 0 && c.t.Nanosecond() == 0 {
			return c.t.Format("2006-01-02")
		}
		return c.t.Format(TimeLayout)
	case KindText:
		return c.s
	default:
		return ""
	}
}

// Equal reports whether both cells hold the same kind and value. Null equals null.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindNull:
		return true
	case KindBool:
		return c.b == o.b
	case KindInt:
		return c.i == o.i
	case KindFloat:
		return c.f == o.f
	case KindTime:
		return c.t.Equal(o.t)
	default:
		return c.s == o.s
	}
}

// AppendKey appends a kind-tagged encoding of the cell suitable for hashing whole rows.
func (c Cell) AppendKey(dst []byte) []byte {
	dst = append(dst, byte('0'+c.kind))
	switch c.kind {
	case KindNull:
	case KindFloat:
		f := c.f
		if f == 0 {
			// -0 equals 0
			f = 0
		}
		dst = strconv.AppendUint(dst, math.Float64bits(f), 16)
	case KindTime:
		dst = strconv.AppendInt(dst, c.t.UnixNano(), 10)
	default:
		dst = append(dst, c.String()...)
	}
	return append(dst, '\x1f')
}

// FormatFloat renders whole floats with a trailing ".0" so they stay distinguishable from ints.
func FormatFloat(f float64) string {
	if math.IsInf(f, 0) {
		if f > 0 {
			return "inf"
		}
		return "-inf"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
