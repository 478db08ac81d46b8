package ast

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Tag represents the type of a Value.
type Tag int

const (
	TInt  Tag = iota
	TSym      // interned-by-string symbol
	TPair     // cons cell: Car/Cdr, frozen after construction
	TArray    // fixed-size reference array, frozen after construction
	TAtom     // atomic reference cell: the only mutable-after-construction slot
)

// Value is the runtime's heap object: a flat tagged union, refcounted,
// mutable only through its TAtom slot.
type Value struct {
	Tag Tag

	Int int64  // TInt
	Str string // TSym

	Car *Value // TPair
	Cdr *Value // TPair

	Elems []*Value // TArray, frozen length and contents after NewArray returns

	slot *Value // TAtom, the single mutable reference slot

	rc int32 // atomic refcount, starts at 1 on construction
}

// Nil is the singleton empty value. It is never reference-counted: Retain
// and Release both treat it as a no-op, the way the teacher's cons lists
// treat '() as immortal.
var Nil = &Value{Tag: TPair, rc: 1 << 30}

// NewInt creates an integer value with refcount 1.
func NewInt(i int64) *Value {
	return &Value{Tag: TInt, Int: i, rc: 1}
}

// NewSym creates a symbol value with refcount 1.
func NewSym(s string) *Value {
	return &Value{Tag: TSym, Str: s, rc: 1}
}

// NewPair creates a cons cell with refcount 1. Car and Cdr are retained;
// the pair is frozen from this point on — Car/Cdr never change again.
func NewPair(car, cdr *Value) *Value {
	Retain(car)
	Retain(cdr)
	return &Value{Tag: TPair, Car: car, Cdr: cdr, rc: 1}
}

// NewArray creates a frozen reference array with refcount 1. Every element
// is retained; the slice is never mutated after construction.
func NewArray(elems []*Value) *Value {
	owned := make([]*Value, len(elems))
	for i, e := range elems {
		Retain(e)
		owned[i] = e
	}
	return &Value{Tag: TArray, Elems: owned, rc: 1}
}

// NewAtom creates an atomic reference cell with refcount 1. Its slot is the
// only reference-bearing location in the heap that can change after
// publication, and is therefore the only place a reclaimable cycle can
// form.
func NewAtom(initial *Value) *Value {
	Retain(initial)
	return &Value{Tag: TAtom, slot: initial, rc: 1}
}

func (v *Value) String() string {
	if v == nil {
		return "nil"
	}
	switch v.Tag {
	case TInt:
		return strconv.FormatInt(v.Int, 10)
	case TSym:
		return v.Str
	case TPair:
		if v == Nil {
			return "()"
		}
		return pairToString(v)
	case TArray:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.Elems {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(e.String())
		}
		sb.WriteByte(']')
		return sb.String()
	case TAtom:
		return fmt.Sprintf("#<atom %s>", v.Load().String())
	default:
		return "?"
	}
}

func pairToString(v *Value) string {
	var sb strings.Builder
	sb.WriteByte('(')
	first := true
	for v != Nil && v.Tag == TPair {
		if !first {
			sb.WriteByte(' ')
		}
		first = false
		sb.WriteString(v.Car.String())
		v = v.Cdr
	}
	if v != Nil {
		sb.WriteString(" . ")
		sb.WriteString(v.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// IsNil reports whether v is the empty pair.
func IsNil(v *Value) bool { return v == nil || v == Nil }

// RefCount reads the current atomic refcount. It is the binding for the
// collector's `refCount(obj)` collaborator.
func (v *Value) RefCount() int32 {
	return atomic.LoadInt32(&v.rc)
}

// TagName returns the name of a tag, used only in diagnostics.
func TagName(t Tag) string {
	switch t {
	case TInt:
		return "INT"
	case TSym:
		return "SYM"
	case TPair:
		return "PAIR"
	case TArray:
		return "ARRAY"
	case TAtom:
		return "ATOM"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", t)
	}
}
