package cell

import (
	"strconv"
	"time"
)

// Kind is the semantic type of a cell.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Cell is a single immutable scalar value.
// The zero Cell is empty.
type Cell struct {
	t    time.Time
	s    string
	f    float64
	kind Kind
	b    bool
}

// Empty returns an empty cell.
func Empty() Cell { return Cell{} }

// String returns a string cell.
func String(s string) Cell { return Cell{kind: KindString, s: s} }

// Number returns a numeric cell.
func Number(f float64) Cell { return Cell{kind: KindNumber, f: f} }

// Bool returns a boolean cell.
func Bool(b bool) Cell { return Cell{kind: KindBool, b: b} }

// Time returns a date/time cell.
func Time(t time.Time) Cell { return Cell{kind: KindTime, t: t} }

// Of converts a Go value to a cell. Unsupported types yield an empty cell
// and false.
func Of(v any) (Cell, bool) {
	switch x := v.(type) {
	case nil:
		return Empty(), true
	case Cell:
		return x, true
	case string:
		return String(x), true
	case float64:
		return Number(x), true
	case float32:
		return Number(float64(x)), true
	case int:
		return Number(float64(x)), true
	case int64:
		return Number(float64(x)), true
	case int32:
		return Number(float64(x)), true
	case bool:
		return Bool(x), true
	case time.Time:
		return Time(x), true
	default:
		return Empty(), false
	}
}

// Kind returns the cell's kind.
func (c Cell) Kind() Kind { return c.kind }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.kind == KindEmpty }

// Str returns the string payload.
func (c Cell) Str() (string, bool) { return c.s, c.kind == KindString }

// Float returns the numeric payload.
func (c Cell) Float() (float64, bool) { return c.f, c.kind == KindNumber }

// Boolean returns the boolean payload.
func (c Cell) Boolean() (bool, bool) { return c.b, c.kind == KindBool }

// Time returns the date/time payload.
func (c Cell) Time() (time.Time, bool) { return c.t, c.kind == KindTime }

// Value returns the payload as a Go value; nil for empty cells.
func (c Cell) Value() any {
	switch c.kind {
	case KindString:
		return c.s
	case KindNumber:
		return c.f
	case KindBool:
		return c.b
	case KindTime:
		return c.t
	default:
		return nil
	}
}

// String returns the display form of the cell. Empty cells render as "".
func (c Cell) String() string {
	switch c.kind {
	case KindString:
		return c.s
	case KindNumber:
		return strconv.FormatFloat(c.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.b)
	case KindTime:
		return c.t.Format(time.RFC3339Nano)
	default:
		return ""
	}
}

// Equal reports whether two cells have the same kind and payload.
// Times are compared with time.Time.Equal.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindString:
		return c.s == o.s
	case KindNumber:
		return c.f == o.f
	case KindBool:
		return c.b == o.b
	case KindTime:
		return c.t.Equal(o.t)
	default:
		return true
	}
}

// Row is an ordered sequence of cells.
type Row []Cell

// Clone returns a copy of the row that shares no storage with r.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Equal reports whether both rows have equal cells in the same order.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if !r[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Strings returns the display form of every cell.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.String()
	}
	return out
}

// Pad returns r extended with empty cells to width n. Rows already at
// least n long are returned unchanged.
func (r Row) Pad(n int) Row {
	if len(r) >= n {
		return r
	}
	out := make(Row, n)
	copy(out, r)
	return out
}
