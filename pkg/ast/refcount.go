package ast

import (
	"sync/atomic"

	"purplegc/pkg/gc"
)

// Retain increments v's reference count. A nil or Nil value is a no-op —
// the empty pair is never reference-counted.
func Retain(v *Value) {
	if v == nil || v == Nil {
		return
	}
	atomic.AddInt32(&v.rc, 1)
}

// Release decrements v's reference count and, if it drops to zero, frees v
// and cascades the release to every value v owned outgoing references to.
// This is the "normal RC cascade" spec.md's invariant I6 depends on: the
// collector never frees memory itself, it only zeroes a TAtom's slot via
// Clear, and that zeroing is what makes the freed value's own Release fire.
func Release(v *Value) {
	if v == nil || v == Nil {
		return
	}
	if atomic.AddInt32(&v.rc, -1) > 0 {
		return
	}
	switch v.Tag {
	case TPair:
		Release(v.Car)
		Release(v.Cdr)
	case TArray:
		for _, e := range v.Elems {
			Release(e)
		}
	case TAtom:
		Release(v.slot)
		v.slot = nil
	}
}

// Load reads a TAtom's current slot value under the collector's global
// lock, so it never races a mark pass or a Clear. Panics if v is not a
// TAtom — this mirrors the host's refusal to treat typeOf mismatches as
// recoverable (spec §7).
func (v *Value) Load() *Value {
	if v.Tag != TAtom {
		panic("ast: Load on non-atomic value")
	}
	gc.Lock()
	defer gc.Unlock()
	return v.slot
}

// Store replaces a TAtom's slot value. It takes the collector's global
// write-lock for the duration of the mutation (spec §5's "the lock is the
// graph's write-lock" — every atomic-cell write is routed through it so a
// mark pass never observes a torn graph).
func (v *Value) Store(next *Value) {
	if v.Tag != TAtom {
		panic("ast: Store on non-atomic value")
	}
	gc.Lock()
	defer gc.Unlock()
	Retain(next)
	old := v.slot
	v.slot = next
	Release(old)
}

// clearSlot zeroes a TAtom's slot without retaining a replacement, releasing
// whatever was there. This is the collector's `zeroSlot` collaborator
// (spec §6): it is the only mutation the collector itself ever performs,
// and it never frees v — it only drops v's ownership of its old target,
// letting that target's own refcount cascade (spec invariant I6).
func (v *Value) clearSlot() {
	if v.Tag != TAtom {
		panic("ast: clearSlot on non-atomic value")
	}
	old := v.slot
	v.slot = nil
	Release(old)
}
