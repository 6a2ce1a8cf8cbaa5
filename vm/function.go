package vm

// ---------------------------------------------------------------------------
// Cells (mutable boxes for captured variables)
// ---------------------------------------------------------------------------

// Cell is a heap-allocated mutable container for a single Val. A variable
// captured by a closure lives in a Cell so its storage outlives the
// activation that declared it; writes through the declaring scope and
// through any closure sharing the Cell are mutually visible.
type Cell struct {
	thingHeader
	val Val
}

func (c *Cell) Kind() Kind { return KindCell }

func (c *Cell) eachRef(fn func(Val)) {
	fn(c.val)
}

// Get returns the value stored in the cell.
func (c *Cell) Get() Val {
	return c.val
}

// Set stores a value in the cell.
func (c *Cell) Set(v Val) {
	c.val = v
}

// NewCell allocates a Cell holding initial, which must be rooted.
func (e *Engine) NewCell(initial Val) Local {
	return e.registerLocal("NewCell", &Cell{val: initial})
}

// ---------------------------------------------------------------------------
// Function
// ---------------------------------------------------------------------------

// NativeFunc is the entry point ABI shared with the code generator: it
// receives the function being called and its activation, and returns the
// result. A body that allocates opens one Scope before its first Local.
type NativeFunc func(e *Engine, fn *Function, frame *Frame) Val

// Function is a callable Object. Besides its properties and prototype it
// holds a debug name, the declared arity, the Cells it captured (fixed at
// creation) and its native entry point.
type Function struct {
	Object
	name     string
	arity    int
	captures []Val
	cells    []*Cell
	body     NativeFunc
}

func (f *Function) Kind() Kind { return KindFunction }

func (f *Function) eachRef(fn func(Val)) {
	f.Object.eachRef(fn)
	for _, c := range f.captures {
		fn(c)
	}
}

// Name returns the debug name.
func (f *Function) Name() string {
	return f.name
}

// Arity returns the number of declared parameters.
func (f *Function) Arity() int {
	return f.arity
}

// NumCaptures returns the length of the capture list.
func (f *Function) NumCaptures() int {
	return len(f.cells)
}

// Capture returns captured Cell i.
func (f *Function) Capture(i int) *Cell {
	if i < 0 || i >= len(f.cells) {
		fatal("Function.Capture", "%s has %d captures, asked for %d", f.name, len(f.cells), i)
	}
	return f.cells[i]
}

// NewFunction allocates a Function. Every capture must be a rooted Cell;
// the list is copied and never changes length afterwards.
func (e *Engine) NewFunction(name string, arity int, captures []Val, body NativeFunc) Local {
	if body == nil {
		fatal("NewFunction", "%s has no entry point", name)
	}
	if arity < 0 {
		fatal("NewFunction", "%s has negative arity %d", name, arity)
	}
	f := &Function{
		Object:   *newObject(Null),
		name:     name,
		arity:    arity,
		captures: make([]Val, len(captures)),
		cells:    make([]*Cell, len(captures)),
		body:     body,
	}
	for i, c := range captures {
		if !c.IsCell() {
			fatal("NewFunction", "%s capture %d is a %s, not a cell", name, i, e.describeKind(c))
		}
		f.captures[i] = c
		f.cells[i] = e.AsCell(c)
	}
	return e.registerLocal("NewFunction", f)
}
