package vm

// GCThing is a collectible heap entity. Every GCThing is registered with its
// Engine's heap at construction and lives there until a collection finds it
// unreachable or the Engine is closed.
//
// The method set is unexported on purpose: the variants are fixed to the
// types in this package.
type GCThing interface {
	// Kind reports the entity's variant.
	Kind() Kind

	header() *thingHeader

	// eachRef calls fn for every Val the entity directly references.
	eachRef(fn func(Val))
}

// thingHeader carries the mark bit. It is false outside of a collection.
type thingHeader struct {
	marked bool
}

func (h *thingHeader) header() *thingHeader {
	return h
}

// sentinel is the preallocated box behind undefined, null, deleted, true
// and false.
type sentinel struct {
	thingHeader
	kind  Kind
	value bool
}

func (s *sentinel) Kind() Kind           { return s.kind }
func (s *sentinel) eachRef(fn func(Val)) {}

// boxedDouble holds a double whose bits collide with the reserved region.
type boxedDouble struct {
	thingHeader
	d float64
}

func (b *boxedDouble) Kind() Kind           { return KindDouble }
func (b *boxedDouble) eachRef(fn func(Val)) {}
