package cell

import (
	"testing"
	"time"
)

func TestCell_Kinds(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		value any
		name  string
		str   string
		cell  Cell
		kind  Kind
	}{
		{name: "empty", cell: Empty(), kind: KindEmpty, value: nil, str: ""},
		{name: "zero value", cell: Cell{}, kind: KindEmpty, value: nil, str: ""},
		{name: "string", cell: String("abc"), kind: KindString, value: "abc", str: "abc"},
		{name: "number", cell: Number(1.5), kind: KindNumber, value: 1.5, str: "1.5"},
		{name: "integral number", cell: Number(42), kind: KindNumber, value: float64(42), str: "42"},
		{name: "bool", cell: Bool(true), kind: KindBool, value: true, str: "true"},
		{name: "time", cell: Time(now), kind: KindTime, value: now, str: "2024-03-01T12:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cell.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.cell.Kind(), tt.kind)
			}
			if tt.cell.Value() != tt.value {
				t.Errorf("Value() = %v, want %v", tt.cell.Value(), tt.value)
			}
			if tt.cell.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.cell.String(), tt.str)
			}
			if tt.cell.IsEmpty() != (tt.kind == KindEmpty) {
				t.Errorf("IsEmpty() = %v", tt.cell.IsEmpty())
			}
		})
	}
}

func TestCell_Accessors(t *testing.T) {
	if s, ok := String("x").Str(); !ok || s != "x" {
		t.Errorf("Str() = %q, %v", s, ok)
	}
	if _, ok := Number(1).Str(); ok {
		t.Error("Str() on number should report false")
	}
	if f, ok := Number(2.5).Float(); !ok || f != 2.5 {
		t.Errorf("Float() = %v, %v", f, ok)
	}
	if b, ok := Bool(true).Boolean(); !ok || !b {
		t.Errorf("Boolean() = %v, %v", b, ok)
	}
	if _, ok := Empty().Time(); ok {
		t.Error("Time() on empty should report false")
	}
}

func TestCell_Equal(t *testing.T) {
	t1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.In(time.FixedZone("X", 3600))

	if !Time(t1).Equal(Time(t2)) {
		t.Error("same instant in different zones should be equal")
	}
	if Number(0).Equal(Empty()) {
		t.Error("number 0 should not equal empty")
	}
	if String("").Equal(Empty()) {
		t.Error("empty string should not equal empty cell")
	}
	if !Empty().Equal(Cell{}) {
		t.Error("empty cells should be equal")
	}
}

func TestOf(t *testing.T) {
	tests := []struct {
		in   any
		want Cell
		ok   bool
	}{
		{in: nil, want: Empty(), ok: true},
		{in: "s", want: String("s"), ok: true},
		{in: 3, want: Number(3), ok: true},
		{in: int64(4), want: Number(4), ok: true},
		{in: float32(0.5), want: Number(0.5), ok: true},
		{in: false, want: Bool(false), ok: true},
		{in: Number(9), want: Number(9), ok: true},
		{in: []byte("x"), want: Empty(), ok: false},
	}
	for _, tt := range tests {
		got, ok := Of(tt.in)
		if ok != tt.ok || !got.Equal(tt.want) {
			t.Errorf("Of(%#v) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRow(t *testing.T) {
	r := Row{String("a"), Number(1)}

	c := r.Clone()
	if !c.Equal(r) {
		t.Fatal("clone should equal original")
	}
	c[0] = String("b")
	if s, _ := r[0].Str(); s != "a" {
		t.Error("clone shares storage with original")
	}

	if Row(nil).Clone() != nil {
		t.Error("clone of nil row should be nil")
	}

	p := r.Pad(4)
	if len(p) != 4 || !p[3].IsEmpty() || !p[:2].Equal(r) {
		t.Errorf("Pad(4) = %v", p)
	}
	if len(r.Pad(1)) != 2 {
		t.Error("Pad should never truncate")
	}

	got := r.Strings()
	if len(got) != 2 || got[0] != "a" || got[1] != "1" {
		t.Errorf("Strings() = %v", got)
	}

	if r.Equal(Row{String("a")}) {
		t.Error("rows of different length should not be equal")
	}
}

func TestKind_String(t *testing.T) {
	if KindTime.String() != "time" {
		t.Errorf("KindTime.String() = %q", KindTime.String())
	}
	if Kind(99).String() != "kind(99)" {
		t.Errorf("Kind(99).String() = %q", Kind(99).String())
	}
}
