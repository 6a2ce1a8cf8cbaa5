package vm

import "github.com/tliron/commonlog"

// ---------------------------------------------------------------------------
// Shadow stack
// ---------------------------------------------------------------------------

// shadowStack is the explicit stack of rooted Val slots. Compiled code keeps
// its values in registers and native frames the collector cannot read, so
// anything that must survive an allocation lives in one of these slots.
//
// Slots are handed out by Local and released only by truncating a region
// (Scope, EscapeScope or ArgList) back to its entry height. Regions nest and
// must be released in strict LIFO order.
type shadowStack struct {
	slots   []Val
	top     int
	regions []int // entry height of each open region, innermost last
}

func (s *shadowStack) init(size int) {
	s.slots = make([]Val, size)
	for i := range s.slots {
		s.slots[i] = Undefined
	}
	s.top = 0
	s.regions = s.regions[:0]
}

func (s *shadowStack) reset() {
	s.slots = nil
	s.top = 0
	s.regions = nil
}

func (e *Engine) push(op string, v Val) int {
	s := &e.stack
	if s.top >= len(s.slots) {
		fatal(op, "shadow stack overflow (%d slots)", len(s.slots))
	}
	s.slots[s.top] = v
	s.top++
	return s.top - 1
}

func (e *Engine) openRegion() (height, depth int) {
	s := &e.stack
	s.regions = append(s.regions, s.top)
	return s.top, len(s.regions)
}

func (e *Engine) closeRegion(op string, height, depth int) {
	s := &e.stack
	if len(s.regions) != depth || s.regions[depth-1] != height {
		fatal(op, "out-of-order release: region %d closed while %d regions are open", depth, len(s.regions))
	}
	for i := height; i < s.top; i++ {
		s.slots[i] = Undefined
	}
	s.top = height
	s.regions = s.regions[:depth-1]
}

// StackHeight returns the number of occupied shadow stack slots.
func (e *Engine) StackHeight() int {
	return e.stack.top
}

// ScopeDepth returns the number of open regions.
func (e *Engine) ScopeDepth() int {
	return len(e.stack.regions)
}

// ---------------------------------------------------------------------------
// Local
// ---------------------------------------------------------------------------

// Local is a handle to one shadow stack slot. The value it holds is a GC
// root until the enclosing region is closed. Do not keep a Local past that
// point or store it in the heap.
type Local struct {
	e    *Engine
	slot int
}

// NewLocal pushes v onto the shadow stack in the current region.
func (e *Engine) NewLocal(v Val) Local {
	return Local{e: e, slot: e.push("NewLocal", v)}
}

// Get returns the rooted value.
func (l Local) Get() Val {
	if debugChecks {
		l.check("Local.Get")
	}
	return l.e.stack.slots[l.slot]
}

// Set replaces the rooted value.
func (l Local) Set(v Val) {
	if debugChecks {
		l.check("Local.Set")
	}
	l.e.stack.slots[l.slot] = v
}

// Call calls the function held by l.
func (l Local) Call(this Val, args ...Val) Local {
	return l.e.Call(l.Get(), this, args...)
}

// Engine returns the Engine owning the slot.
func (l Local) Engine() *Engine {
	return l.e
}

func (l Local) check(op string) {
	if l.e == nil {
		fatal(op, "zero Local")
	}
	if l.slot >= l.e.stack.top {
		fatal(op, "slot %d used after release (stack height %d)", l.slot, l.e.stack.top)
	}
}

// ---------------------------------------------------------------------------
// Scope
// ---------------------------------------------------------------------------

// Scope records the shadow stack height at entry and truncates back to it
// on Close. Native function bodies that allocate open exactly one Scope
// before their first Local and close it with defer:
//
//	s := e.OpenScope()
//	defer s.Close()
type Scope struct {
	e      *Engine
	height int
	depth  int
	closed bool
}

// OpenScope opens a new region on the shadow stack.
func (e *Engine) OpenScope() *Scope {
	h, d := e.openRegion()
	return &Scope{e: e, height: h, depth: d}
}

// Close unroots every Local acquired since the Scope was opened. Closing
// twice is a no-op; closing out of LIFO order is a defect.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.e.closeRegion("Scope.Close", s.height, s.depth)
	s.closed = true
}

// Height returns the shadow stack height recorded at entry.
func (s *Scope) Height() int {
	return s.height
}

// EscapeScope is a Scope whose return slot was reserved in the parent
// region before the Scope itself was opened. Functions that hand a heap
// reference back to their caller open one of these instead of a Scope:
//
//	s := e.OpenEscapeScope()
//	defer s.Close()
//	...
//	return s.Escape(result.Get())
//
// Close only truncates down to the child's entry height, which lies above
// the reserved slot, so the escaped value stays rooted.
type EscapeScope struct {
	Scope
	ret Local
}

// OpenEscapeScope reserves a return slot in the current region and opens a
// child region above it.
func (e *Engine) OpenEscapeScope() *EscapeScope {
	ret := e.NewLocal(Undefined)
	h, d := e.openRegion()
	return &EscapeScope{
		Scope: Scope{e: e, height: h, depth: d},
		ret:   ret,
	}
}

// Escape copies v into the reserved parent slot and returns that slot.
func (s *EscapeScope) Escape(v Val) Local {
	if s.e.log.AllowLevel(commonlog.Debug) {
		s.e.log.Debugf("escaping %s", s.e.DumpValue(v))
	}
	s.ret.Set(v)
	return s.ret
}

// ---------------------------------------------------------------------------
// ArgList
// ---------------------------------------------------------------------------

// ArgList is the shadow stack region holding one call's actual arguments,
// padded with Undefined up to the callee's arity. Arguments beyond the
// arity are kept but only reachable through At.
type ArgList struct {
	e        *Engine
	base     int
	depth    int
	n        int
	size     int
	released bool
}

// OpenArgList opens a region holding args padded to arity. Engine.Call
// opens and releases one around every call.
func (e *Engine) OpenArgList(arity int, args ...Val) *ArgList {
	h, d := e.openRegion()
	size := len(args)
	if arity > size {
		size = arity
	}
	for i := 0; i < size; i++ {
		v := Undefined
		if i < len(args) {
			v = args[i]
		}
		e.push("OpenArgList", v)
	}
	return &ArgList{e: e, base: h, depth: d, n: len(args), size: size}
}

// Len returns the number of arguments actually supplied.
func (a *ArgList) Len() int {
	return a.n
}

// Size returns the number of slots, which is max(Len, arity).
func (a *ArgList) Size() int {
	return a.size
}

// At returns the slot for argument i.
func (a *ArgList) At(i int) Local {
	if i < 0 || i >= a.size {
		fatal("ArgList.At", "argument %d outside %d slots", i, a.size)
	}
	return Local{e: a.e, slot: a.base + i}
}

// Values copies the supplied arguments.
func (a *ArgList) Values() []Val {
	out := make([]Val, a.n)
	copy(out, a.e.stack.slots[a.base:a.base+a.n])
	return out
}

// Release pops the region. Like Scope.Close it is idempotent and must
// respect LIFO order.
func (a *ArgList) Release() {
	if a.released {
		return
	}
	a.e.closeRegion("ArgList.Release", a.base, a.depth)
	a.released = true
}
