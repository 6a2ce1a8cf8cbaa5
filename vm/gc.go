package vm

import (
	"time"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Garbage Collection
// ---------------------------------------------------------------------------

// GCStats holds statistics from a single collection.
type GCStats struct {
	Cycle     uint64
	Roots     int
	Marked    int
	Swept     int
	Live      int
	Duration  time.Duration
	Timestamp time.Time
}

// maybeCollect runs a collection if the allocation policy asks for one.
func (e *Engine) maybeCollect() {
	if !e.ready {
		return
	}
	if e.opts.ForceGC || (e.opts.GCThreshold > 0 && e.allocs >= e.opts.GCThreshold) {
		e.Collect()
	}
}

// Collect performs a full stop-the-world mark-sweep collection.
//
// Roots are the sentinels, the global root object, the callee and this
// value of every frame on the chain, and every shadow stack slot below the
// top. Marking is idempotent, so reference cycles terminate without any
// extra bookkeeping. Every unmarked entity is released; every marked one
// has its bit cleared for the next cycle.
//
// Collect returns nil if the Engine has not finished bootstrapping.
func (e *Engine) Collect() *GCStats {
	if !e.ready {
		return nil
	}
	start := time.Now()
	stats := &GCStats{Timestamp: start}
	debug := e.log.AllowLevel(commonlog.Debug)

	// Mark phase: explicit work stack instead of recursion, so long
	// prototype chains or lists cannot blow the Go stack.
	var work []GCThing
	mark := func(v Val) {
		if !v.IsRef() {
			return
		}
		t := e.heap.get(v)
		if t == nil {
			fatal("Collect", "reference to unregistered %s handle %d", v.Kind(), v.Handle())
		}
		h := t.header()
		if h.marked {
			return
		}
		h.marked = true
		stats.Marked++
		if debug {
			e.log.Debugf("marking live %s", e.DumpValue(v))
		}
		work = append(work, t)
	}

	e.EachRoot(func(v Val) {
		stats.Roots++
		mark(v)
	})
	for len(work) > 0 {
		t := work[len(work)-1]
		work = work[:len(work)-1]
		t.eachRef(mark)
	}

	// Sweep phase
	for i := range e.heap.slots {
		s := &e.heap.slots[i]
		if s.thing == nil {
			continue
		}
		h := s.thing.header()
		if h.marked {
			h.marked = false
			continue
		}
		e.heap.release(uint32(i))
		stats.Swept++
	}

	e.allocs = 0
	e.collections++
	stats.Cycle = e.collections
	stats.Live = e.heap.live
	stats.Duration = time.Since(start)
	e.lastStats = stats

	e.log.Infof("gc #%d: %d roots, %d marked, %d swept, %d live in %s",
		stats.Cycle, stats.Roots, stats.Marked, stats.Swept, stats.Live, stats.Duration)
	return stats
}

// EachRoot calls fn for every member of the root set.
func (e *Engine) EachRoot(fn func(v Val)) {
	for _, v := range sentinelVals {
		fn(v)
	}
	fn(e.root)
	for f := e.frame; f != nil; f = f.parent {
		fn(f.callee)
		fn(f.this)
	}
	for _, v := range e.stack.slots[:e.stack.top] {
		fn(v)
	}
}

// Collections returns the number of completed collections.
func (e *Engine) Collections() uint64 {
	return e.collections
}

// LastGCStats returns statistics from the most recent collection, or nil if
// none has run yet.
func (e *Engine) LastGCStats() *GCStats {
	return e.lastStats
}
