// Package heapdump captures the live heap of a vm.Engine as a plain data
// snapshot that can be encoded as CBOR, written out by tooling, and
// inspected without the Engine that produced it.
package heapdump

import (
	"sort"
	"strconv"
	"time"

	"github.com/chazu/aotjs/vm"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("aotjs.heapdump")

// Entity is one registered heap entity.
type Entity struct {
	Handle uint32   `cbor:"1,keyasint"`
	Kind   string   `cbor:"2,keyasint"`
	Desc   string   `cbor:"3,keyasint"`           // short rendering
	Refs   []uint32 `cbor:"4,keyasint,omitempty"` // handles referenced directly
}

// Snapshot is the live set of an Engine at one point in time.
type Snapshot struct {
	ID          string   `cbor:"1,keyasint"`
	EngineID    string   `cbor:"2,keyasint"`
	TakenAt     int64    `cbor:"3,keyasint"` // Unix milliseconds
	Collections uint64   `cbor:"4,keyasint"`
	Roots       []uint32 `cbor:"5,keyasint"`
	Entities    []Entity `cbor:"6,keyasint"`
}

// Capture records every live entity of e, in handle order, together with
// the handles of the current root set. It does not allocate on e's heap
// and does not collect.
func Capture(e *vm.Engine) *Snapshot {
	s := &Snapshot{
		ID:          uuid.NewString(),
		EngineID:    e.ID(),
		TakenAt:     time.Now().UnixMilli(),
		Collections: e.Collections(),
	}

	roots := map[uint32]bool{}
	e.EachRoot(func(v vm.Val) {
		if v.IsRef() {
			roots[v.Handle()] = true
		}
	})
	s.Roots = sortedHandles(roots)

	e.EachLive(func(v vm.Val) {
		ent := Entity{
			Handle: v.Handle(),
			Kind:   v.Kind().String(),
			Desc:   describe(e, v),
		}
		seen := map[uint32]bool{}
		e.EachRef(v, func(ref vm.Val) {
			if ref.IsRef() && !ref.Kind().IsSentinel() {
				seen[ref.Handle()] = true
			}
		})
		ent.Refs = sortedHandles(seen)
		s.Entities = append(s.Entities, ent)
	})

	log.Debugf("snapshot %s of engine %s: %d entities, %d roots", s.ID, s.EngineID, len(s.Entities), len(s.Roots))
	return s
}

// describe renders leaves in full and containers by size only, so a
// snapshot stays linear in the number of entities.
func describe(e *vm.Engine, v vm.Val) string {
	switch {
	case v.IsObject():
		return "Object(" + strconv.Itoa(e.AsObject(v).NumProps()) + " props)"
	case v.IsFunction():
		f := e.AsFunction(v)
		return "Function(" + strconv.Quote(f.Name()) + ", " + strconv.Itoa(f.NumCaptures()) + " captures)"
	case v.IsCell():
		return "Cell"
	}
	return e.DumpValue(v)
}

func sortedHandles(set map[uint32]bool) []uint32 {
	if len(set) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(set))
	for h := range set {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Find returns the entity with the given handle.
func (s *Snapshot) Find(handle uint32) (*Entity, bool) {
	i := sort.Search(len(s.Entities), func(i int) bool { return s.Entities[i].Handle >= handle })
	if i < len(s.Entities) && s.Entities[i].Handle == handle {
		return &s.Entities[i], true
	}
	return nil, false
}

// Reachable returns the handles reachable from the snapshot's roots. It is
// the set a collection at capture time would have kept.
func (s *Snapshot) Reachable() map[uint32]bool {
	reached := make(map[uint32]bool, len(s.Entities))
	work := append([]uint32(nil), s.Roots...)
	for len(work) > 0 {
		h := work[len(work)-1]
		work = work[:len(work)-1]
		if reached[h] {
			continue
		}
		reached[h] = true
		if ent, ok := s.Find(h); ok {
			work = append(work, ent.Refs...)
		}
	}
	return reached
}

// Garbage returns, in handle order, the entities a collection at capture
// time would have swept.
func (s *Snapshot) Garbage() []uint32 {
	reached := s.Reachable()
	var out []uint32
	for _, ent := range s.Entities {
		if !reached[ent.Handle] {
			out = append(out, ent.Handle)
		}
	}
	return out
}

// CountByKind tallies entities per kind name.
func (s *Snapshot) CountByKind() map[string]int {
	counts := map[string]int{}
	for _, ent := range s.Entities {
		counts[ent.Kind]++
	}
	return counts
}
