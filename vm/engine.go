package vm

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Engine: one JS world
// ---------------------------------------------------------------------------

// Engine owns a heap, a shadow stack, the frame chain and the global root
// object. Garbage collection runs when Collect is called, opportunistically
// on allocation, or not at all; everything is released by Close.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	id   string
	opts Options
	log  commonlog.Logger

	heap  heap
	stack shadowStack
	frame *Frame

	// Global root object.
	root Val

	// ready stays false until the sentinels and the root object exist;
	// marking compares against them, so no collection may run before.
	ready  bool
	closed bool

	allocs      int
	collections uint64
	lastStats   *GCStats
}

// NewEngine creates and bootstraps a new Engine.
func NewEngine(opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		id:   uuid.NewString(),
		opts: opts,
		log:  commonlog.GetLogger("aotjs.vm"),
	}
	e.stack.init(opts.StackSize)
	e.bootstrap()
	e.log.Infof("engine %s ready: stack %d slots, gc threshold %d, force gc %t",
		e.id, opts.StackSize, opts.GCThreshold, opts.ForceGC)
	return e
}

// bootstrap allocates the sentinel boxes at their fixed handles, then the
// root object. Nothing here may trigger a collection.
func (e *Engine) bootstrap() {
	for i, want := range sentinelVals {
		got := e.heap.alloc(&sentinel{
			kind:  want.Kind(),
			value: uint32(i) == trueIndex,
		})
		if got != want {
			fatal("bootstrap", "sentinel %s landed at handle %d", want.Kind(), got.Handle())
		}
	}
	e.root = e.heap.alloc(newObject(Null))
	e.ready = true
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default returns a process-wide Engine created on first use with
// DefaultOptions. Embedders that manage their own Engine never need it.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = NewEngine(DefaultOptions())
	})
	return defaultEngine
}

// ID returns the unique identifier assigned to this Engine.
func (e *Engine) ID() string {
	return e.id
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// Root returns the global root object.
func (e *Engine) Root() Val {
	return e.root
}

// SetRoot replaces the global root object. v must be an Object or Function.
func (e *Engine) SetRoot(v Val) {
	e.AsObject(v)
	e.root = v
}

// Now returns the wall clock in milliseconds since the Unix epoch.
func (e *Engine) Now() Val {
	v, _ := FromFloat64(float64(time.Now().UnixNano()) / 1e6)
	return v
}

// Close releases every heap entity and resets the shadow stack. The Engine
// must not be used afterwards.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.log.Infof("engine %s closing with %d live entities", e.id, e.heap.live)
	e.heap.reset()
	e.stack.reset()
	e.frame = nil
	e.root = Undefined
	e.ready = false
	e.closed = true
}

// register adds a freshly built entity to the live set. A collection may
// run first, so everything t references must already be rooted.
func (e *Engine) register(op string, t GCThing) Val {
	if e.closed {
		fatal(op, "engine %s is closed", e.id)
	}
	e.maybeCollect()
	e.allocs++
	return e.heap.alloc(t)
}

// registerLocal registers t and roots it in the current region.
func (e *Engine) registerLocal(op string, t GCThing) Local {
	return e.NewLocal(e.register(op, t))
}

// ---------------------------------------------------------------------------
// Narrowing accessors
// ---------------------------------------------------------------------------

func deref[T GCThing](e *Engine, op string, v Val, want Kind) T {
	if v.Kind() != want {
		fatal(op, "expected %s, got %s", want, e.describeKind(v))
	}
	t, ok := e.heap.lookup(op, v).(T)
	if !ok {
		fatal(op, "handle %d does not hold a %s", v.Handle(), want)
	}
	return t
}

// AsString returns the String behind v. v must satisfy IsString.
func (e *Engine) AsString(v Val) *String {
	return deref[*String](e, "AsString", v, KindString)
}

// AsSymbol returns the Symbol behind v. v must satisfy IsSymbol.
func (e *Engine) AsSymbol(v Val) *Symbol {
	return deref[*Symbol](e, "AsSymbol", v, KindSymbol)
}

// AsFunction returns the Function behind v. v must satisfy IsFunction.
func (e *Engine) AsFunction(v Val) *Function {
	return deref[*Function](e, "AsFunction", v, KindFunction)
}

// AsCell returns the Cell behind v. v must satisfy IsCell.
func (e *Engine) AsCell(v Val) *Cell {
	return deref[*Cell](e, "AsCell", v, KindCell)
}

// AsObject returns the property bag behind v. v must satisfy
// IsPropertyBag; a Function yields its embedded Object.
func (e *Engine) AsObject(v Val) *Object {
	if v.IsFunction() {
		return &e.AsFunction(v).Object
	}
	return deref[*Object](e, "AsObject", v, KindObject)
}

// AsDouble returns the double stored inline or boxed. v must satisfy IsDouble.
func (e *Engine) AsDouble(v Val) float64 {
	if v.IsInlineDouble() {
		return v.AsInlineDouble()
	}
	return deref[*boxedDouble](e, "AsDouble", v, KindDouble).d
}

func (e *Engine) describeKind(v Val) string {
	switch {
	case v.IsInlineDouble():
		return "double"
	case v.IsInt32():
		return "int32"
	case v.IsRef():
		return v.Kind().String()
	default:
		return "malformed value"
	}
}

// ---------------------------------------------------------------------------
// Heap introspection
// ---------------------------------------------------------------------------

// LiveCount returns the number of registered entities, sentinels included.
func (e *Engine) LiveCount() int {
	return e.heap.live
}

// IsLive reports whether v refers to a currently registered entity.
func (e *Engine) IsLive(v Val) bool {
	return e.heap.get(v) != nil
}

// EachLive calls fn for every registered entity in handle order.
func (e *Engine) EachLive(fn func(v Val)) {
	e.heap.each(func(v Val, _ GCThing) {
		fn(v)
	})
}

// EachRef calls fn for every Val the entity behind v directly references.
// Non-reference values have no outgoing references.
func (e *Engine) EachRef(v Val, fn func(ref Val)) {
	if !v.IsRef() {
		return
	}
	e.heap.lookup("EachRef", v).eachRef(fn)
}
