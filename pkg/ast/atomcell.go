package ast

import "purplegc/pkg/gc"

// IsAtomicCell reports whether v is an atomic reference cell — the only
// heap object kind whose reference-bearing slot can change after
// construction, and therefore the only place a reclaimable cycle can form.
// This is the collector's typeOf collaborator (spec §6).
func (v *Value) IsAtomicCell() bool {
	return v != nil && v.Tag == TAtom
}

// Slots enumerates v's outgoing reference-bearing locations, binding
// gc.Cell's collaborator contract to the tagged union's per-tag layout.
func (v *Value) Slots() []gc.Slot {
	switch v.Tag {
	case TPair:
		return []gc.Slot{pairCarSlot{v}, pairCdrSlot{v}}
	case TArray:
		slots := make([]gc.Slot, len(v.Elems))
		for i := range v.Elems {
			slots[i] = arrayElemSlot{v, i}
		}
		return slots
	case TAtom:
		return []gc.Slot{atomSlot{v}}
	default:
		return nil
	}
}

// wrapCell adapts a *Value into a gc.Cell, returning a true nil interface
// (not a non-nil interface wrapping a nil pointer) for values that carry no
// edge for the marker to follow.
func wrapCell(v *Value) gc.Cell {
	if v == nil || v == Nil {
		return nil
	}
	return v
}

type pairCarSlot struct{ v *Value }

func (s pairCarSlot) Get() gc.Cell { return wrapCell(s.v.Car) }
func (s pairCarSlot) Clear() {
	panic("ast: pair slots are frozen and never clearable")
}

type pairCdrSlot struct{ v *Value }

func (s pairCdrSlot) Get() gc.Cell { return wrapCell(s.v.Cdr) }
func (s pairCdrSlot) Clear() {
	panic("ast: pair slots are frozen and never clearable")
}

type arrayElemSlot struct {
	v *Value
	i int
}

func (s arrayElemSlot) Get() gc.Cell { return wrapCell(s.v.Elems[s.i]) }
func (s arrayElemSlot) Clear() {
	panic("ast: array slots are frozen and never clearable")
}

type atomSlot struct{ v *Value }

func (s atomSlot) Get() gc.Cell { return wrapCell(s.v.slot) }

// Clear is the collector's zeroSlot collaborator: it is the only mutation
// the collector itself ever performs on the heap, and it never frees the
// atom — it only drops the atom's ownership of its old target, letting
// that target's own refcount cascade (invariant I6).
func (s atomSlot) Clear() { s.v.clearSlot() }
