package vm

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Equality
// ---------------------------------------------------------------------------

// Equal reports whether a and b are the same value: bitwise identical, or
// both Strings with equal content. Int32 3 and double 3.0 are not Equal.
func (e *Engine) Equal(a, b Val) bool {
	if a == b {
		return true
	}
	if a.IsString() && b.IsString() {
		return e.AsString(a).data == e.AsString(b).data
	}
	return false
}

// ---------------------------------------------------------------------------
// Coercions
//
// These implement the subset of JS conversions compiled code relies on.
// Objects do not go through valueOf/toString, strings parse with Go's
// number syntax plus Infinity, and Symbols convert to NaN instead of
// throwing.
// ---------------------------------------------------------------------------

// TypeOf returns the JS typeof name of v.
func (e *Engine) TypeOf(v Val) string {
	switch {
	case v.IsInlineDouble(), v.IsInt32():
		return "number"
	}
	switch v.Kind() {
	case KindDouble:
		return "number"
	case KindUndefined, KindDeleted:
		return "undefined"
	case KindNull, KindObject:
		return "object"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindFunction:
		return "function"
	default:
		return "internal"
	}
}

// ToBool converts v following JS truthiness.
func (e *Engine) ToBool(v Val) bool {
	switch {
	case v.IsInlineDouble():
		d := v.AsInlineDouble()
		return d != 0 && !math.IsNaN(d)
	case v.IsInt32():
		return v.AsInt32() != 0
	case v.IsBool():
		return v == True
	}
	switch v.Kind() {
	case KindUndefined, KindNull, KindDeleted:
		return false
	case KindDouble:
		d := e.AsDouble(v)
		return d != 0 && !math.IsNaN(d)
	case KindString:
		return e.AsString(v).Len() > 0
	case KindCell:
		fatal("ToBool", "cells are not JS values")
	}
	return true
}

// ToDouble converts v to a number.
func (e *Engine) ToDouble(v Val) float64 {
	switch {
	case v.IsInlineDouble():
		return v.AsInlineDouble()
	case v.IsInt32():
		return float64(v.AsInt32())
	case v.IsBool():
		if v == True {
			return 1
		}
		return 0
	}
	switch v.Kind() {
	case KindUndefined:
		return math.NaN()
	case KindNull, KindDeleted:
		return 0
	case KindDouble:
		return e.AsDouble(v)
	case KindString:
		return parseNumber(e.AsString(v).data)
	case KindCell:
		fatal("ToDouble", "cells are not JS values")
	}
	return math.NaN()
}

// ToInt32 converts v with the JS ToInt32 wrap-around on doubles.
func (e *Engine) ToInt32(v Val) int32 {
	if v.IsInt32() {
		return v.AsInt32()
	}
	return doubleToInt32(e.ToDouble(v))
}

// ToString converts v to a String rooted in the current region. A String
// argument is returned as-is.
func (e *Engine) ToString(v Val) Local {
	if v.IsString() {
		return e.NewLocal(v)
	}
	return e.NewString(e.stringOf(v))
}

// stringOf renders v the way ToString would, without allocating.
func (e *Engine) stringOf(v Val) string {
	switch {
	case v.IsInlineDouble():
		return formatNumber(v.AsInlineDouble())
	case v.IsInt32():
		return strconv.FormatInt(int64(v.AsInt32()), 10)
	case v.IsBool():
		if v == True {
			return "true"
		}
		return "false"
	}
	switch v.Kind() {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindDeleted:
		return "deleted"
	case KindDouble:
		return formatNumber(e.AsDouble(v))
	case KindString:
		return e.AsString(v).data
	case KindSymbol:
		return "Symbol(" + e.AsSymbol(v).name + ")"
	case KindObject:
		return "[object Object]"
	case KindFunction:
		return "[Function: " + e.AsFunction(v).name + "]"
	}
	fatal("ToString", "%s is not a JS value", e.describeKind(v))
	return ""
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return d
		}
		return math.NaN()
	}
	// Without a range error an infinity came from an "inf" spelling.
	if math.IsInf(d, 0) {
		return math.NaN()
	}
	return d
}

func doubleToInt32(d float64) int32 {
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0
	}
	t := math.Mod(math.Trunc(d), 4294967296)
	if t < 0 {
		t += 4294967296
	}
	return int32(uint32(t))
}

// formatNumber renders a double the way JS Number#toString does for the
// common cases.
func formatNumber(d float64) string {
	switch {
	case math.IsNaN(d):
		return "NaN"
	case math.IsInf(d, 1):
		return "Infinity"
	case math.IsInf(d, -1):
		return "-Infinity"
	case d == 0:
		return "0"
	}
	abs := math.Abs(d)
	if abs >= 1e21 || abs < 1e-6 {
		return cleanExponentialFormat(strconv.FormatFloat(d, 'e', -1, 64))
	}
	return strconv.FormatFloat(d, 'f', -1, 64)
}

// cleanExponentialFormat removes leading zeros from the exponent to match
// JS, e.g. "1e-07" -> "1e-7".
func cleanExponentialFormat(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != 'e' && s[i] != 'E' {
			continue
		}
		if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
			j := i + 2
			for j < len(s) && s[j] == '0' {
				j++
			}
			if j >= len(s) {
				return s[:i+2] + "0"
			}
			return s[:i+2] + s[j:]
		}
		break
	}
	return s
}
