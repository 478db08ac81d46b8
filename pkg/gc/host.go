package gc

// WorkerID identifies a registered mutator thread. The runtime is free to
// pick any stable, comparable value — purplegc's own mutator package uses a
// monotonic counter.
type WorkerID uint64

// Cell is the collector's view of a heap object: opaque except for the
// three things spec'd as the host's minimal collaborator surface — whether
// it is an atomic reference cell, its current refcount, and its outgoing
// reference-bearing slots.
type Cell interface {
	// IsAtomicCell reports whether this object is a member of the atomic
	// rootset's object kind. Membership in RootRegistry is tracked
	// separately (AddAtomicRoot/RemoveAtomicRoot); this flag only tells the
	// marker whether a discovered target should be tallied in InnerCount.
	IsAtomicCell() bool

	// RefCount returns the object's current reference count as maintained
	// by the host's underlying refcounting runtime.
	RefCount() int32

	// Slots enumerates this object's outgoing reference-bearing locations.
	// For a structured object this is its reference-typed fields; for an
	// array, one Slot per element; for an atomic cell, its single mutable
	// slot.
	Slots() []Slot
}

// Slot is a single reference-bearing location inside a Cell.
type Slot interface {
	// Get returns the slot's current target, or nil if empty.
	Get() Cell

	// Clear zeroes the slot through the host's write-barrier-aware
	// primitive, releasing its previous target through the underlying
	// refcount's normal cascade. Only ever called by the collector on
	// slots it has just judged collectible, and only for atomic cells —
	// calling Clear on a non-atomic cell's slot is a programmer error.
	Clear()
}

// StackWalker is the host's stack-reference collaborator: it enumerates
// every atomic cell reachable from a given worker's stack.
type StackWalker interface {
	// WalkStack invokes visit once for every atomic cell referenced from
	// worker's stack at the moment of the call. It must be safe to call
	// from the worker's own goroutine while the collector's global lock is
	// held by the caller of WalkStack.
	WalkStack(worker WorkerID, visit func(Cell))
}
