package vm

import (
	"testing"
)

// ---------------------------------------------------------------------------
// Shadow stack discipline
// ---------------------------------------------------------------------------

func TestScopeRestoresHeight(t *testing.T) {
	e := newTestEngine(t)

	s := e.OpenScope()
	if s.Height() != 0 || e.ScopeDepth() != 1 {
		t.Fatalf("scope height %d depth %d, want 0/1", s.Height(), e.ScopeDepth())
	}
	e.NewLocal(Int32(1))
	e.NewLocal(Int32(2))

	inner := e.OpenScope()
	e.NewLocal(Int32(3))
	if e.StackHeight() != 3 {
		t.Errorf("StackHeight() = %d, want 3", e.StackHeight())
	}
	inner.Close()
	if e.StackHeight() != 2 {
		t.Errorf("after inner close StackHeight() = %d, want 2", e.StackHeight())
	}

	s.Close()
	s.Close() // no-op
	if e.StackHeight() != 0 || e.ScopeDepth() != 0 {
		t.Errorf("after close height %d depth %d, want 0/0", e.StackHeight(), e.ScopeDepth())
	}
	if e.stack.slots[0] != Undefined || e.stack.slots[2] != Undefined {
		t.Error("released slots were not cleared")
	}
}

func TestOutOfOrderReleaseIsDefect(t *testing.T) {
	e := newTestEngine(t)

	outer := e.OpenScope()
	inner := e.OpenScope()
	expectDefect(t, "Scope.Close", func() { outer.Close() })

	// The stack is untouched by the failed release.
	inner.Close()
	if e.ScopeDepth() != 1 {
		t.Errorf("ScopeDepth() = %d, want 1", e.ScopeDepth())
	}
}

func TestArgListOutOfOrderReleaseIsDefect(t *testing.T) {
	e := newTestEngine(t)
	s := e.OpenScope()
	defer s.Close()

	args := e.OpenArgList(1)
	inner := e.OpenScope()
	expectDefect(t, "ArgList.Release", func() { args.Release() })
	inner.Close()
	args.Release()
}

func TestScopeClosesOnPanic(t *testing.T) {
	e := newTestEngine(t)

	func() {
		defer func() { recover() }()
		s := e.OpenScope()
		defer s.Close()
		e.NewLocal(Int32(1))
		panic("unwind")
	}()

	if e.StackHeight() != 0 || e.ScopeDepth() != 0 {
		t.Errorf("after panic height %d depth %d, want 0/0", e.StackHeight(), e.ScopeDepth())
	}
}

func TestStackOverflowIsDefect(t *testing.T) {
	e := NewEngine(Options{StackSize: 4, GCThreshold: -1})
	defer e.Close()

	s := e.OpenScope()
	for i := 0; i < 4; i++ {
		e.NewLocal(Int32(int32(i)))
	}
	expectDefect(t, "NewLocal", func() { e.NewLocal(Int32(4)) })
	s.Close()
}

func TestLocalGetSet(t *testing.T) {
	e := newTestEngine(t)
	s := e.OpenScope()
	defer s.Close()

	l := e.NewLocal(Int32(1))
	l.Set(Int32(2))
	if l.Get() != Int32(2) {
		t.Errorf("Get() = %s, want 2", e.DumpValue(l.Get()))
	}
	if l.Engine() != e {
		t.Error("Engine() mismatch")
	}
}

func TestLocalUseAfterRelease(t *testing.T) {
	if !debugChecks {
		t.Skip("requires the aotjs_debug build tag")
	}
	e := newTestEngine(t)

	s := e.OpenScope()
	l := e.NewLocal(Int32(1))
	s.Close()

	expectDefect(t, "Local.Get", func() { l.Get() })
	expectDefect(t, "Local.Set", func() { l.Set(Null) })
}

func TestEscapeScope(t *testing.T) {
	e := newTestEngine(t)
	s := e.OpenScope()
	defer s.Close()

	es := e.OpenEscapeScope()
	if es.Height() != 1 {
		t.Fatalf("escape scope entered at %d, want 1 (above the return slot)", es.Height())
	}
	str := e.NewString("out")
	e.NewLocal(Int32(9))
	ret := es.Escape(str.Get())
	es.Close()

	if e.StackHeight() != 1 {
		t.Errorf("StackHeight() = %d, want 1", e.StackHeight())
	}
	if !ret.Get().IsString() || e.AsString(ret.Get()).Str() != "out" {
		t.Errorf("escaped value = %s", e.DumpValue(ret.Get()))
	}
}

func TestArgListPadding(t *testing.T) {
	e := newTestEngine(t)
	s := e.OpenScope()
	defer s.Close()

	tests := []struct {
		name  string
		arity int
		args  []Val
		size  int
	}{
		{"under-supplied", 3, []Val{Int32(1)}, 3},
		{"exact", 2, []Val{Int32(1), Int32(2)}, 2},
		{"over-supplied", 1, []Val{Int32(1), Int32(2), Int32(3)}, 3},
		{"none", 0, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := e.StackHeight()
			a := e.OpenArgList(tt.arity, tt.args...)
			if a.Len() != len(tt.args) {
				t.Errorf("Len() = %d, want %d", a.Len(), len(tt.args))
			}
			if a.Size() != tt.size {
				t.Errorf("Size() = %d, want %d", a.Size(), tt.size)
			}
			for i := 0; i < a.Size(); i++ {
				want := Undefined
				if i < len(tt.args) {
					want = tt.args[i]
				}
				if got := a.At(i).Get(); got != want {
					t.Errorf("At(%d) = %s, want %s", i, e.DumpValue(got), e.DumpValue(want))
				}
			}
			if got := a.Values(); len(got) != len(tt.args) {
				t.Errorf("Values() has %d entries, want %d", len(got), len(tt.args))
			}
			expectDefect(t, "ArgList.At", func() { a.At(a.Size()) })

			a.Release()
			a.Release()
			if e.StackHeight() != before {
				t.Errorf("StackHeight() after Release = %d, want %d", e.StackHeight(), before)
			}
		})
	}
}
