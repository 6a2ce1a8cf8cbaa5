package vm

import (
	"math"
)

// Val represents a JavaScript value using NaN-boxing.
//
// Every value fits in one 64-bit word. Doubles are stored as their native
// IEEE 754 bits. All other kinds are encoded inside the negative quiet NaN
// space, which the encoder reserves for itself:
//
//   - Int32:   reserved prefix + tagInt32   + 32-bit payload
//   - Bool:    reserved prefix + tagBool    + handle of the true/false box
//   - Special: reserved prefix + tagSpecial + handle of undefined/null/deleted
//   - Ref:     reserved prefix + tagRef     + handle of a heap entity
//
// A handle packs the heap slot index (bits 0-31), the slot generation
// (bits 32-39) and the entity kind (bits 40-47), so kind predicates never
// have to touch the heap. A double whose own bit pattern falls inside the
// reserved prefix cannot be stored inline and is boxed on the heap instead
// (see Engine.NewDouble).
type Val uint64

// NaN-boxing constants
const (
	// Negative quiet NaN prefix: sign 1, exponent all 1s, quiet bit set.
	// 0xFFF8_0000_0000_0000
	reservedBits uint64 = 0xFFF8000000000000

	// Sub-tag: 3 bits right below the quiet bit.
	// 0x0007_0000_0000_0000
	tagMask uint64 = 0x0007000000000000

	// Payload mask: 48 bits
	// 0x0000_FFFF_FFFF_FFFF
	payloadMask uint64 = 0x0000FFFFFFFFFFFF

	tagInt32   uint64 = 0x0001000000000000
	tagBool    uint64 = 0x0002000000000000
	tagSpecial uint64 = 0x0003000000000000
	tagRef     uint64 = 0x0004000000000000

	handleIndexMask uint64 = 0x00000000FFFFFFFF
	handleGenShift         = 32
	handleGenMask   uint64 = 0xFF
	handleKindShift        = 40
	handleKindMask  uint64 = 0xFF
)

// Sentinel boxes are the first five entities every Engine allocates, so
// their handles are identical across engines.
const (
	undefinedIndex uint32 = iota
	nullIndex
	deletedIndex
	falseIndex
	trueIndex

	numSentinels = 5
)

// Pre-defined sentinel values
const (
	Undefined Val = Val(reservedBits | tagSpecial | uint64(KindUndefined)<<handleKindShift | uint64(undefinedIndex))
	Null      Val = Val(reservedBits | tagSpecial | uint64(KindNull)<<handleKindShift | uint64(nullIndex))
	Deleted   Val = Val(reservedBits | tagSpecial | uint64(KindDeleted)<<handleKindShift | uint64(deletedIndex))
	False     Val = Val(reservedBits | tagBool | uint64(KindBoolean)<<handleKindShift | uint64(falseIndex))
	True      Val = Val(reservedBits | tagBool | uint64(KindBoolean)<<handleKindShift | uint64(trueIndex))
)

var sentinelVals = [numSentinels]Val{Undefined, Null, Deleted, False, True}

// makeRef builds the Val for a heap handle. Sentinel kinds get their own
// sub-tags; every other kind is a plain reference.
func makeRef(kind Kind, gen uint8, index uint32) Val {
	tag := tagRef
	switch kind {
	case KindBoolean:
		tag = tagBool
	case KindUndefined, KindNull, KindDeleted:
		tag = tagSpecial
	}
	return Val(reservedBits | tag |
		uint64(kind)<<handleKindShift |
		uint64(gen)<<handleGenShift |
		uint64(index))
}

// ---------------------------------------------------------------------------
// Raw encoding
// ---------------------------------------------------------------------------

// Raw returns the bit pattern of v.
func (v Val) Raw() uint64 {
	return uint64(v)
}

// isReserved reports whether bits fall in the region owned by non-double kinds.
func isReserved(bits uint64) bool {
	return bits&reservedBits == reservedBits
}

func (v Val) tag() uint64 {
	if !isReserved(uint64(v)) {
		return 0
	}
	return uint64(v) & tagMask
}

// Identical reports whether v and o have the same bit pattern.
func (v Val) Identical(o Val) bool {
	return v == o
}

// ---------------------------------------------------------------------------
// Type checking
// ---------------------------------------------------------------------------

// IsInlineDouble returns true if v stores a double directly in its bits.
func (v Val) IsInlineDouble() bool {
	return !isReserved(uint64(v))
}

// IsDouble returns true if v is a double, inline or boxed on the heap.
func (v Val) IsDouble() bool {
	return v.IsInlineDouble() || (v.tag() == tagRef && v.Kind() == KindDouble)
}

// IsInt32 returns true if v is a tagged 32-bit integer.
func (v Val) IsInt32() bool {
	return v.tag() == tagInt32
}

// IsNumber returns true if v is an Int32 or a Double.
func (v Val) IsNumber() bool {
	return v.IsInt32() || v.IsDouble()
}

// IsBool returns true if v is true or false.
func (v Val) IsBool() bool {
	return v.tag() == tagBool
}

// IsUndefined returns true if v is the undefined sentinel.
func (v Val) IsUndefined() bool {
	return v == Undefined
}

// IsNull returns true if v is the null sentinel.
func (v Val) IsNull() bool {
	return v == Null
}

// IsDeleted returns true if v is the deleted sentinel.
func (v Val) IsDeleted() bool {
	return v == Deleted
}

// IsNullish returns true if v is null or undefined.
func (v Val) IsNullish() bool {
	return v == Null || v == Undefined
}

// IsRef returns true if v refers to a heap entity, sentinels included.
func (v Val) IsRef() bool {
	return v.tag() >= tagBool && v.tag() <= tagRef
}

// Kind returns the kind of heap entity v refers to, or KindInvalid if v is
// an inline double or an Int32.
func (v Val) Kind() Kind {
	if !v.IsRef() {
		return KindInvalid
	}
	return Kind((uint64(v) >> handleKindShift) & handleKindMask)
}

// Handle returns the heap slot index of a reference.
func (v Val) Handle() uint32 {
	return uint32(uint64(v) & handleIndexMask)
}

func (v Val) generation() uint8 {
	return uint8((uint64(v) >> handleGenShift) & handleGenMask)
}

// IsString returns true if v refers to a String.
func (v Val) IsString() bool {
	return v.tag() == tagRef && v.Kind() == KindString
}

// IsSymbol returns true if v refers to a Symbol.
func (v Val) IsSymbol() bool {
	return v.tag() == tagRef && v.Kind() == KindSymbol
}

// IsPropIndex returns true if v can be used as a property key.
func (v Val) IsPropIndex() bool {
	return v.IsString() || v.IsSymbol()
}

// IsObject returns true if v refers to a plain Object.
func (v Val) IsObject() bool {
	return v.tag() == tagRef && v.Kind() == KindObject
}

// IsFunction returns true if v refers to a Function.
func (v Val) IsFunction() bool {
	return v.tag() == tagRef && v.Kind() == KindFunction
}

// IsPropertyBag returns true if v carries properties and a prototype,
// which is true of Objects and Functions.
func (v Val) IsPropertyBag() bool {
	return v.IsObject() || v.IsFunction()
}

// IsCell returns true if v refers to an internal Cell.
func (v Val) IsCell() bool {
	return v.tag() == tagRef && v.Kind() == KindCell
}

// ---------------------------------------------------------------------------
// Construction and narrowing
// ---------------------------------------------------------------------------

// FromFloat64 encodes d inline. It returns false when d's bit pattern lies in
// the reserved region; such doubles must go through Engine.NewDouble.
func FromFloat64(d float64) (Val, bool) {
	bits := math.Float64bits(d)
	if isReserved(bits) {
		return Undefined, false
	}
	return Val(bits), true
}

// Int32 creates a Val from a 32-bit integer.
func Int32(n int32) Val {
	return Val(reservedBits | tagInt32 | uint64(uint32(n)))
}

// Bool creates a Val from a bool.
func Bool(b bool) Val {
	if b {
		return True
	}
	return False
}

// AsInt32 returns the integer payload. v must satisfy IsInt32.
func (v Val) AsInt32() int32 {
	if debugChecks && !v.IsInt32() {
		fatal("Val.AsInt32", "not an int32: %#x", uint64(v))
	}
	return int32(uint32(uint64(v) & payloadMask))
}

// AsInlineDouble returns the stored double. v must satisfy IsInlineDouble.
func (v Val) AsInlineDouble() float64 {
	if debugChecks && !v.IsInlineDouble() {
		fatal("Val.AsInlineDouble", "not an inline double: %#x", uint64(v))
	}
	return math.Float64frombits(uint64(v))
}

// AsBool returns the boolean. v must satisfy IsBool.
func (v Val) AsBool() bool {
	if debugChecks && !v.IsBool() {
		fatal("Val.AsBool", "not a boolean: %#x", uint64(v))
	}
	return v == True
}
