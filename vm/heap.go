package vm

// ---------------------------------------------------------------------------
// heap: handle table of every registered GCThing
// ---------------------------------------------------------------------------

// heapSlot is one entry of the handle table. A free slot has a nil thing;
// its generation is bumped on every release so stale handles are caught.
type heapSlot struct {
	thing GCThing
	gen   uint8
}

// heap is the live set. Entity identity is the slot index, never a Go
// pointer, so sweeping only has to drop the slot.
type heap struct {
	slots []heapSlot
	free  []uint32
	live  int
}

// alloc registers t and returns its handle.
func (h *heap) alloc(t GCThing) Val {
	var idx uint32
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
	} else {
		if uint64(len(h.slots)) > handleIndexMask {
			fatal("heap.alloc", "handle table exhausted")
		}
		idx = uint32(len(h.slots))
		h.slots = append(h.slots, heapSlot{})
	}
	s := &h.slots[idx]
	s.thing = t
	h.live++
	return makeRef(t.Kind(), s.gen, idx)
}

// get returns the entity behind v, or nil if v is not a reference to a
// currently registered entity.
func (h *heap) get(v Val) GCThing {
	if !v.IsRef() {
		return nil
	}
	idx := v.Handle()
	if int(idx) >= len(h.slots) {
		return nil
	}
	s := h.slots[idx]
	if s.thing == nil || s.gen != v.generation() || s.thing.Kind() != v.Kind() {
		return nil
	}
	return s.thing
}

// lookup is get for callers that treat a dangling handle as a defect.
func (h *heap) lookup(op string, v Val) GCThing {
	t := h.get(v)
	if t == nil {
		if !v.IsRef() {
			fatal(op, "not a heap reference: %#x", uint64(v))
		}
		fatal(op, "dangling %s handle %d (generation %d)", v.Kind(), v.Handle(), v.generation())
	}
	return t
}

// release frees slot idx and makes outstanding handles to it stale.
func (h *heap) release(idx uint32) {
	s := &h.slots[idx]
	s.thing = nil
	s.gen++
	h.free = append(h.free, idx)
	h.live--
}

// each calls fn for every registered entity in handle order.
func (h *heap) each(fn func(v Val, t GCThing)) {
	for i := range h.slots {
		s := &h.slots[i]
		if s.thing == nil {
			continue
		}
		fn(makeRef(s.thing.Kind(), s.gen, uint32(i)), s.thing)
	}
}

func (h *heap) reset() {
	h.slots = nil
	h.free = nil
	h.live = 0
}
