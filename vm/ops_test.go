package vm

import (
	"math"
	"testing"
)

func TestNumberNormalizes(t *testing.T) {
	tests := []struct {
		in      float64
		isInt   bool
		wantInt int32
	}{
		{0, true, 0},
		{3, true, 3},
		{-3, true, -3},
		{math.MaxInt32, true, math.MaxInt32},
		{math.MinInt32, true, math.MinInt32},
		{math.MaxInt32 + 1, false, 0},
		{0.5, false, 0},
		{math.Copysign(0, -1), false, 0},
		{math.Inf(1), false, 0},
	}
	for _, tt := range tests {
		v := Number(tt.in)
		if v.IsInt32() != tt.isInt {
			t.Errorf("Number(%v).IsInt32() = %t, want %t", tt.in, v.IsInt32(), tt.isInt)
			continue
		}
		if tt.isInt && v.AsInt32() != tt.wantInt {
			t.Errorf("Number(%v) = %d", tt.in, v.AsInt32())
		}
		if !tt.isInt && math.Float64bits(v.AsInlineDouble()) != math.Float64bits(tt.in) {
			t.Errorf("Number(%v) lost bits", tt.in)
		}
	}

	// Every NaN collapses to one encoding.
	a := Number(math.NaN())
	b := Number(math.Float64frombits(0xFFF8000000000001))
	if a != b || !math.IsNaN(a.AsInlineDouble()) {
		t.Errorf("NaNs not canonical: %#x vs %#x", a.Raw(), b.Raw())
	}
}

func TestAdd(t *testing.T) {
	e := newTestEngine(t)
	s := e.OpenScope()
	defer s.Close()

	half, _ := FromFloat64(0.5)
	str := e.NewString("n=")
	obj := e.NewObject(Null)

	tests := []struct {
		name string
		a, b Val
		want string
	}{
		{"ints", Int32(2), Int32(3), "5"},
		{"overflow", Int32(math.MaxInt32), Int32(1), "2147483648"},
		{"mixed", Int32(1), half, "1.5"},
		{"bool", True, Int32(1), "2"},
		{"undefined", Undefined, Int32(1), "NaN"},
		{"string left", str.Get(), Int32(4), `"n=4"`},
		{"string right", Int32(4), str.Get(), `"4n="`},
		{"object", obj.Get(), Null, `"[object Object]null"`},
	}
	for _, tt := range tests {
		got := e.DumpValue(e.Add(tt.a, tt.b).Get())
		if got != tt.want {
			t.Errorf("Add(%s) = %s, want %s", tt.name, got, tt.want)
		}
	}

	if v := e.Add(Int32(math.MaxInt32), Int32(1)).Get(); v.IsInt32() {
		t.Error("int32 overflow stayed an int32")
	}
	if v := e.Add(half, half).Get(); !v.IsInt32() || v.AsInt32() != 1 {
		t.Errorf("0.5 + 0.5 = %s, want Int32 1", e.DumpValue(v))
	}
}

func TestArithmetic(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		got  Val
		want string
	}{
		{"sub", e.Sub(Int32(2), Int32(5)), "-3"},
		{"sub underflow", e.Sub(Int32(math.MinInt32), Int32(1)), "-2147483649"},
		{"mul", e.Mul(Int32(6), Int32(7)), "42"},
		{"mul large", e.Mul(Int32(65536), Int32(65536)), "4294967296"},
		{"div", e.Div(Int32(7), Int32(2)), "3.5"},
		{"div exact", e.Div(Int32(8), Int32(2)), "4"},
		{"div zero", e.Div(Int32(1), Int32(0)), "Infinity"},
		{"div zero zero", e.Div(Int32(0), Int32(0)), "NaN"},
		{"mod", e.Mod(Int32(7), Int32(3)), "1"},
		{"mod negative", e.Mod(Int32(-7), Int32(3)), "-1"},
		{"mod zero", e.Mod(Int32(7), Int32(0)), "NaN"},
		{"negate", e.Negate(Int32(5)), "-5"},
	}
	for _, tt := range tests {
		if got := e.DumpValue(tt.got); got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, got, tt.want)
		}
	}

	// Signed zeros stay doubles.
	for name, v := range map[string]Val{
		"0 * -1":   e.Mul(Int32(0), Int32(-1)),
		"-(0)":     e.Negate(Int32(0)),
		"-4 % 2":   e.Mod(Int32(-4), Int32(2)),
		"-1 / Inf": e.Div(Int32(-1), Number(math.Inf(1))),
	} {
		if !v.IsInlineDouble() || !math.Signbit(v.AsInlineDouble()) || v.AsInlineDouble() != 0 {
			t.Errorf("%s = %#x, want -0", name, v.Raw())
		}
	}
}

func TestComparison(t *testing.T) {
	e := newTestEngine(t)
	s := e.OpenScope()
	defer s.Close()

	nan := Number(math.NaN())
	a := e.NewString("apple")
	b := e.NewString("banana")

	tests := []struct {
		name string
		got  Val
		want Val
	}{
		{"1 < 2", e.Less(Int32(1), Int32(2)), True},
		{"2 < 1", e.Less(Int32(2), Int32(1)), False},
		{"1 < 1", e.Less(Int32(1), Int32(1)), False},
		{"1.5 > 1", e.Greater(Number(1.5), Int32(1)), True},
		{"NaN < 1", e.Less(nan, Int32(1)), False},
		{"NaN > 1", e.Greater(nan, Int32(1)), False},
		{"strings", e.Less(a.Get(), b.Get()), True},
		{"strings reversed", e.Greater(a.Get(), b.Get()), False},
		{"numeric string", e.Less(e.NewString("10").Get(), Int32(9)), False},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, e.DumpValue(tt.got), e.DumpValue(tt.want))
		}
	}
}

func TestStrictEquals(t *testing.T) {
	e := newTestEngine(t)
	s := e.OpenScope()
	defer s.Close()

	one, _ := FromFloat64(1)
	nan := Number(math.NaN())
	negZero := Number(math.Copysign(0, -1))

	tests := []struct {
		name string
		a, b Val
		want Val
	}{
		{"int vs double", Int32(1), one, True},
		{"nan", nan, nan, False},
		{"zeros", Int32(0), negZero, True},
		{"strings", e.NewString("x").Get(), e.NewString("x").Get(), True},
		{"null vs undefined", Null, Undefined, False},
		{"distinct objects", e.NewObject(Null).Get(), e.NewObject(Null).Get(), False},
	}
	for _, tt := range tests {
		if got := e.StrictEquals(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: StrictEquals = %s", tt.name, e.DumpValue(got))
		}
	}
}
