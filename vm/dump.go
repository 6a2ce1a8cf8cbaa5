package vm

import (
	"sort"
	"strconv"
	"strings"
)

// DumpValue renders v for logs and tests. The format is stable:
//
//	1  1.5  NaN  undefined  null  true
//	"text"
//	Symbol("name")
//	Object({"a": 1, Symbol("s"): null})
//	Function("name")  Cell(42)
//
// Object keys are sorted by their own rendering. A container that is
// already being rendered further up the same path prints as [Circular].
// DumpValue never allocates on the JS heap, so it is safe during Collect.
func (e *Engine) DumpValue(v Val) string {
	var sb strings.Builder
	e.dump(&sb, v, make(map[uint32]bool))
	return sb.String()
}

func (e *Engine) dump(sb *strings.Builder, v Val, path map[uint32]bool) {
	if !v.IsRef() {
		sb.WriteString(e.stringOf(v))
		return
	}
	t := e.heap.get(v)
	if t == nil {
		sb.WriteString("<dangling ")
		sb.WriteString(v.Kind().String())
		sb.WriteString(" #")
		sb.WriteString(strconv.FormatUint(uint64(v.Handle()), 10))
		sb.WriteString(">")
		return
	}

	switch t := t.(type) {
	case *sentinel, *boxedDouble:
		sb.WriteString(e.stringOf(v))
	case *String:
		sb.WriteString(strconv.Quote(t.data))
	case *Symbol:
		sb.WriteString("Symbol(")
		sb.WriteString(strconv.Quote(t.name))
		sb.WriteString(")")
	case *Function:
		sb.WriteString("Function(")
		sb.WriteString(strconv.Quote(t.name))
		sb.WriteString(")")
	case *Cell:
		if path[v.Handle()] {
			sb.WriteString("[Circular]")
			return
		}
		path[v.Handle()] = true
		sb.WriteString("Cell(")
		e.dump(sb, t.val, path)
		sb.WriteString(")")
		delete(path, v.Handle())
	case *Object:
		if path[v.Handle()] {
			sb.WriteString("[Circular]")
			return
		}
		path[v.Handle()] = true
		sb.WriteString("Object({")
		e.dumpProps(sb, t, path)
		sb.WriteString("})")
		delete(path, v.Handle())
	default:
		sb.WriteString(t.Kind().String())
	}
}

func (e *Engine) dumpProps(sb *strings.Builder, o *Object, path map[uint32]bool) {
	type entry struct {
		key    string
		handle uint32
		val    Val
	}
	entries := make([]entry, 0, len(o.props))
	for _, p := range o.props {
		entries = append(entries, entry{key: e.DumpValue(p.key), handle: p.key.Handle(), val: p.val})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].handle < entries[j].handle
	})
	for i, en := range entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(en.key)
		sb.WriteString(": ")
		e.dump(sb, en.val, path)
	}
}

// Dump renders every live entity in handle order, sentinels included:
//
//	Engine([undefined, null, deleted, false, true, Object({}), ...])
func (e *Engine) Dump() string {
	var sb strings.Builder
	sb.WriteString("Engine([")
	first := true
	e.heap.each(func(v Val, _ GCThing) {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		e.dump(&sb, v, make(map[uint32]bool))
	})
	sb.WriteString("])")
	return sb.String()
}
