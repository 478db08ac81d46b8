// Package gc implements an incremental cyclic garbage collector for a
// reference-counting host runtime whose only post-construction-mutable
// objects are atomic reference cells.
//
// The host runtime owns object layout, the underlying refcount, and the
// stack walker; gc treats every object as an opaque Cell reachable through
// a handful of Slots, per the interfaces in host.go. A single process-wide
// Collector (collector.go) runs a dedicated background goroutine that
// periodically walks the transitive closure of the live atomic rootset
// (marker.go), tallies how many of each atomic cell's inbound references
// originate from inside that closure versus from mutator stacks, and
// enqueues the reference slots of cells whose count cannot be explained by
// anything outside the closure. Those slots are zeroed by mutators at their
// next rendezvous (gate.go), never by the collector itself — the underlying
// refcount reclaims memory through its ordinary cascade.
package gc
