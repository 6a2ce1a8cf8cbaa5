package vm

// Kind identifies the variant of a heap entity. The set is closed: every
// GCThing in this package reports one of these.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUndefined
	KindNull
	KindDeleted
	KindBoolean
	KindDouble // boxed double whose bits collide with the reserved region
	KindString
	KindSymbol
	KindObject
	KindFunction
	KindCell
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindDeleted:
		return "deleted"
	case KindBoolean:
		return "boolean"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	case KindCell:
		return "cell"
	default:
		return "invalid"
	}
}

// IsSentinel reports whether entities of this kind are preallocated singletons.
func (k Kind) IsSentinel() bool {
	return k >= KindUndefined && k <= KindBoolean
}
