package vm

import (
	"sort"
)

// ---------------------------------------------------------------------------
// String and Symbol: the two valid property key types
// ---------------------------------------------------------------------------

// String is immutable character data. Two distinct Strings with the same
// content compare equal (see Engine.Equal).
type String struct {
	thingHeader
	data string
}

func (s *String) Kind() Kind           { return KindString }
func (s *String) eachRef(fn func(Val)) {}

// Str returns the character data.
func (s *String) Str() string {
	return s.data
}

// Len returns the length in bytes.
func (s *String) Len() int {
	return len(s.data)
}

// Symbol is a unique property key. Its name is for debugging only; two
// Symbols are equal only if they are the same entity.
type Symbol struct {
	thingHeader
	name string
}

func (s *Symbol) Kind() Kind           { return KindSymbol }
func (s *Symbol) eachRef(fn func(Val)) {}

// Name returns the debug name.
func (s *Symbol) Name() string {
	return s.name
}

// NewString allocates a String and roots it in the current region.
func (e *Engine) NewString(s string) Local {
	return e.registerLocal("NewString", &String{data: s})
}

// NewSymbol allocates a Symbol and roots it in the current region.
func (e *Engine) NewSymbol(name string) Local {
	return e.registerLocal("NewSymbol", &Symbol{name: name})
}

// Concat allocates the concatenation of two Strings.
func (e *Engine) Concat(a, b Val) Local {
	s := e.AsString(a).data + e.AsString(b).data
	return e.NewString(s)
}

// ---------------------------------------------------------------------------
// Object
// ---------------------------------------------------------------------------

// propKey normalizes a PropIndex: Strings key by content, Symbols by
// identity. A zero sym marks a string key, since 0 is never a Symbol.
type propKey struct {
	sym Val
	str string
}

// property keeps the key Val alongside the value so both stay reachable
// and the key can be reported back.
type property struct {
	key Val
	val Val
}

// Object is a prototype-delegating property bag.
//
// Lookups walk the prototype chain; assignment always writes the object's
// own map. No getters, setters, numeric index fast path or enumeration
// order. Prototype cycles are not detected and make lookups of missing
// keys loop forever.
type Object struct {
	thingHeader
	proto Val // Null or an Object/Function
	props map[propKey]property
}

func newObject(proto Val) *Object {
	return &Object{
		proto: proto,
		props: make(map[propKey]property),
	}
}

func (o *Object) Kind() Kind { return KindObject }

func (o *Object) eachRef(fn func(Val)) {
	fn(o.proto)
	for _, p := range o.props {
		fn(p.key)
		fn(p.val)
	}
}

// NumProps returns the number of own properties.
func (o *Object) NumProps() int {
	return len(o.props)
}

// NewObject allocates an Object with the given prototype, which must be
// Null or a rooted Object/Function.
func (e *Engine) NewObject(proto Val) Local {
	e.checkProto("NewObject", proto)
	return e.registerLocal("NewObject", newObject(proto))
}

func (e *Engine) checkProto(op string, proto Val) {
	if proto.IsNull() {
		return
	}
	if !proto.IsPropertyBag() {
		fatal(op, "prototype must be null or an object, got %s", e.describeKind(proto))
	}
	e.heap.lookup(op, proto)
}

func (e *Engine) keyOf(op string, key Val) propKey {
	switch {
	case key.IsString():
		return propKey{str: e.AsString(key).data}
	case key.IsSymbol():
		e.heap.lookup(op, key)
		return propKey{sym: key}
	}
	fatal(op, "property key must be a string or symbol, got %s", e.describeKind(key))
	return propKey{}
}

// GetProp looks key up on obj and then along its prototype chain, returning
// Undefined when no object on the chain has it.
func (e *Engine) GetProp(obj, key Val) Val {
	return e.lookupProp(e.AsObject(obj), e.keyOf("GetProp", key))
}

// GetNamed is GetProp with a Go string key; it does not allocate.
func (e *Engine) GetNamed(obj Val, name string) Val {
	return e.lookupProp(e.AsObject(obj), propKey{str: name})
}

func (e *Engine) lookupProp(o *Object, k propKey) Val {
	for {
		if p, ok := o.props[k]; ok {
			return p.val
		}
		if o.proto.IsNull() {
			return Undefined
		}
		o = e.AsObject(o.proto)
	}
}

// SetProp writes val into obj's own map, shadowing any prototype entry.
func (e *Engine) SetProp(obj, key, val Val) {
	o := e.AsObject(obj)
	k := e.keyOf("SetProp", key)
	if p, ok := o.props[k]; ok {
		p.val = val
		o.props[k] = p
		return
	}
	o.props[k] = property{key: key, val: val}
}

// SetNamed is SetProp with a Go string key. A new key allocates a String,
// so obj and val must be rooted.
func (e *Engine) SetNamed(obj Val, name string, val Val) {
	o := e.AsObject(obj)
	k := propKey{str: name}
	if p, ok := o.props[k]; ok {
		p.val = val
		o.props[k] = p
		return
	}
	s := e.OpenScope()
	defer s.Close()
	key := e.NewString(name)
	o.props[k] = property{key: key.Get(), val: val}
}

// HasOwnProp reports whether obj itself has key.
func (e *Engine) HasOwnProp(obj, key Val) bool {
	_, ok := e.AsObject(obj).props[e.keyOf("HasOwnProp", key)]
	return ok
}

// DeleteProp removes key from obj's own map, uncovering any prototype
// entry. It reports whether the key was present.
func (e *Engine) DeleteProp(obj, key Val) bool {
	o := e.AsObject(obj)
	k := e.keyOf("DeleteProp", key)
	if _, ok := o.props[k]; !ok {
		return false
	}
	delete(o.props, k)
	return true
}

// OwnKeys returns obj's own keys ordered by their dump rendering. The
// returned Vals are only as rooted as obj.
func (e *Engine) OwnKeys(obj Val) []Val {
	o := e.AsObject(obj)
	keys := make([]Val, 0, len(o.props))
	for _, p := range o.props {
		keys = append(keys, p.key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := e.DumpValue(keys[i]), e.DumpValue(keys[j])
		if a != b {
			return a < b
		}
		return keys[i].Handle() < keys[j].Handle()
	})
	return keys
}

// Prototype returns obj's prototype, Null at the end of the chain.
func (e *Engine) Prototype(obj Val) Val {
	return e.AsObject(obj).proto
}

// SetPrototype replaces obj's prototype with Null or an Object/Function.
func (e *Engine) SetPrototype(obj, proto Val) {
	o := e.AsObject(obj)
	e.checkProto("SetPrototype", proto)
	o.proto = proto
}
