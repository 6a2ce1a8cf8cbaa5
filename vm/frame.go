package vm

import "github.com/tliron/commonlog"

// Frame is the activation record of one in-progress call. Frames form a
// parent-linked chain that is part of the root set, so a function and its
// this value cannot be collected while the call runs. Arguments live in
// the call's ArgList on the shadow stack.
type Frame struct {
	parent *Frame
	callee Val
	fn     *Function
	this   Val
	args   *ArgList
	depth  int
}

// Parent returns the caller's frame, or nil for the outermost call.
func (f *Frame) Parent() *Frame {
	return f.parent
}

// Callee returns the function value being executed.
func (f *Frame) Callee() Val {
	return f.callee
}

// Function returns the Function being executed.
func (f *Frame) Function() *Function {
	return f.fn
}

// This returns the receiver.
func (f *Frame) This() Val {
	return f.this
}

// Depth returns the number of frames below this one.
func (f *Frame) Depth() int {
	return f.depth
}

// NumArgs returns the number of arguments the caller supplied.
func (f *Frame) NumArgs() int {
	return f.args.Len()
}

// Args returns the ArgList, including arguments beyond the arity.
func (f *Frame) Args() *ArgList {
	return f.args
}

// Arg returns argument i. Missing arguments read as Undefined.
func (f *Frame) Arg(i int) Val {
	if i < 0 || i >= f.args.Size() {
		return Undefined
	}
	return f.args.At(i).Get()
}

// SetArg assigns parameter i, which must be below max(NumArgs, arity).
func (f *Frame) SetArg(i int, v Val) {
	f.args.At(i).Set(v)
}

// CurrentFrame returns the innermost active frame, or nil.
func (e *Engine) CurrentFrame() *Frame {
	return e.frame
}

// Call invokes callee with the given receiver and arguments and returns
// the result rooted in the caller's current region.
//
// The result slot is reserved before the ArgList is opened, so releasing
// the arguments on return leaves it in place. Arguments are padded with
// Undefined up to the callee's arity. Calls are synchronous and may nest.
// Calling anything but a Function is a defect.
func (e *Engine) Call(callee, this Val, args ...Val) Local {
	if !callee.IsFunction() {
		fatal("Call", "%s is not a function", e.describeKind(callee))
	}
	fn := e.AsFunction(callee)

	result := e.NewLocal(Undefined)
	al := e.OpenArgList(fn.arity, args...)
	frame := &Frame{
		parent: e.frame,
		callee: callee,
		fn:     fn,
		this:   this,
		args:   al,
	}
	if frame.parent != nil {
		frame.depth = frame.parent.depth + 1
	}
	e.frame = frame
	defer func() {
		e.frame = frame.parent
		al.Release()
	}()

	if e.log.AllowLevel(commonlog.Debug) {
		e.log.Debugf("call %s depth %d with %d args", fn.name, frame.depth, len(args))
	}
	result.Set(fn.body(e, fn, frame))
	return result
}
