package vm

import (
	"math"
)

// canonicalNaN is the quiet NaN every arithmetic result is normalized to.
var canonicalNaN = Val(math.Float64bits(math.NaN()))

// NewDouble stores d inline when its bits allow, and otherwise boxes it on
// the heap. Either way the result is rooted in the current region.
func (e *Engine) NewDouble(d float64) Local {
	if v, ok := FromFloat64(d); ok {
		return e.NewLocal(v)
	}
	return e.registerLocal("NewDouble", &boxedDouble{d: d})
}

// Number converts d to its canonical Val without allocating: integral
// values that fit are Int32, NaN is the canonical quiet NaN, everything
// else is an inline double.
func Number(d float64) Val {
	if math.IsNaN(d) {
		return canonicalNaN
	}
	if d == math.Trunc(d) && d >= math.MinInt32 && d <= math.MaxInt32 && !(d == 0 && math.Signbit(d)) {
		return Int32(int32(d))
	}
	// Any non-NaN double has a sign/exponent pattern outside the reserved
	// region, so the inline encoding always succeeds.
	v, _ := FromFloat64(d)
	return v
}

// ---------------------------------------------------------------------------
// Arithmetic
// ---------------------------------------------------------------------------

// Add implements the JS + operator. If either operand is a String or a
// property bag both are converted to strings and concatenated; otherwise
// the operands are added as numbers. Int32 sums that overflow widen to a
// double. The result is rooted in the current region, so a and b must be.
func (e *Engine) Add(a, b Val) Local {
	if a.IsInt32() && b.IsInt32() {
		return e.NewLocal(Number(float64(a.AsInt32()) + float64(b.AsInt32())))
	}
	if a.IsString() || b.IsString() || a.IsPropertyBag() || b.IsPropertyBag() {
		return e.NewString(e.stringOf(a) + e.stringOf(b))
	}
	return e.NewLocal(Number(e.ToDouble(a) + e.ToDouble(b)))
}

// Sub implements the JS - operator.
func (e *Engine) Sub(a, b Val) Val {
	if a.IsInt32() && b.IsInt32() {
		return Number(float64(a.AsInt32()) - float64(b.AsInt32()))
	}
	return Number(e.ToDouble(a) - e.ToDouble(b))
}

// Mul implements the JS * operator. A zero product with a negative operand
// is -0 and stays a double.
func (e *Engine) Mul(a, b Val) Val {
	return Number(e.ToDouble(a) * e.ToDouble(b))
}

// Div implements the JS / operator. Division by zero yields an infinity or
// NaN.
func (e *Engine) Div(a, b Val) Val {
	return Number(e.ToDouble(a) / e.ToDouble(b))
}

// Mod implements the JS % operator: the result takes the sign of the
// dividend.
func (e *Engine) Mod(a, b Val) Val {
	if a.IsInt32() && b.IsInt32() {
		x, y := a.AsInt32(), b.AsInt32()
		if y != 0 && !(x == math.MinInt32 && y == -1) && x >= 0 {
			return Int32(x % y)
		}
	}
	return Number(math.Mod(e.ToDouble(a), e.ToDouble(b)))
}

// Negate implements unary minus.
func (e *Engine) Negate(a Val) Val {
	if a.IsInt32() && a.AsInt32() != 0 {
		return Number(-float64(a.AsInt32()))
	}
	return Number(-e.ToDouble(a))
}

// ---------------------------------------------------------------------------
// Comparison
// ---------------------------------------------------------------------------

// Less implements the JS < operator. Two strings compare by content;
// anything else compares numerically and any NaN makes the result false.
func (e *Engine) Less(a, b Val) Val {
	if a.IsString() && b.IsString() {
		return Bool(e.AsString(a).data < e.AsString(b).data)
	}
	if a.IsInt32() && b.IsInt32() {
		return Bool(a.AsInt32() < b.AsInt32())
	}
	return Bool(e.ToDouble(a) < e.ToDouble(b))
}

// Greater implements the JS > operator.
func (e *Engine) Greater(a, b Val) Val {
	return e.Less(b, a)
}

// StrictEquals implements the JS === operator. Numbers compare by value
// across representations, so Int32 1 equals double 1.0, NaN never equals
// itself and 0 equals -0.
func (e *Engine) StrictEquals(a, b Val) Val {
	if a.IsNumber() && b.IsNumber() {
		return Bool(e.ToDouble(a) == e.ToDouble(b))
	}
	return Bool(e.Equal(a, b))
}
