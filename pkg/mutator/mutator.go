// Package mutator is a minimal host-runtime harness: it plays the role of
// "the larger runtime" the collector is embedded in (spec §6), giving each
// simulated OS thread a stack of held cells and wiring that stack into
// gc.StackWalker.
package mutator

import (
	"sync"

	"purplegc/pkg/ast"
	"purplegc/pkg/gc"
)

// Registry tracks every live Worker and answers the collector's WalkStack
// collaborator call.
type Registry struct {
	mu      sync.Mutex
	workers map[gc.WorkerID]*Worker
	nextID  uint64
}

// NewRegistry creates an empty worker registry. It does not itself call
// gc.Init — callers wire the two together explicitly, since a Registry can
// outlive any one collector generation in tests.
func NewRegistry() *Registry {
	return &Registry{workers: make(map[gc.WorkerID]*Worker)}
}

// WalkStack implements gc.StackWalker: it visits every atomic cell
// currently held on the named worker's simulated stack.
func (r *Registry) WalkStack(id gc.WorkerID, visit func(gc.Cell)) {
	r.mu.Lock()
	w := r.workers[id]
	r.mu.Unlock()
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, v := range w.stack {
		if v != nil && v.IsAtomicCell() {
			visit(v)
		}
	}
}

// Worker is one simulated mutator thread: a goroutine that holds cells on
// a stack, calls Rendezvous at its own safe points, and Detaches when it
// exits.
type Worker struct {
	id    gc.WorkerID
	reg   *Registry
	mu    sync.Mutex
	stack []*ast.Value
}

// Spawn registers a new worker with both the registry and the collector.
// It is the mutator.Registry binding of the runtime's thread-attach event
// (spec's Lifecycles: "Worker: registered at thread attach").
func (r *Registry) Spawn() *Worker {
	r.mu.Lock()
	r.nextID++
	id := gc.WorkerID(r.nextID)
	w := &Worker{id: id, reg: r}
	r.workers[id] = w
	r.mu.Unlock()

	if err := gc.AddWorker(id); err != nil {
		// nextID only ever hands out ids starting at 1, so this would mean
		// the counter wrapped or was corrupted, not a caller mistake.
		panic(err)
	}
	return w
}

// ID returns the worker's collector-facing identity.
func (w *Worker) ID() gc.WorkerID { return w.id }

// Push places v on the worker's simulated stack, standing in for a local
// variable or register holding a reference. Push does not retain v — a
// stack slot is not itself a refcounted owner, exactly like a native
// runtime's register or C stack frame.
func (w *Worker) Push(v *ast.Value) {
	w.mu.Lock()
	w.stack = append(w.stack, v)
	w.mu.Unlock()
}

// Pop discards the most recently pushed stack reference.
func (w *Worker) Pop() {
	w.mu.Lock()
	if n := len(w.stack); n > 0 {
		w.stack = w.stack[:n-1]
	}
	w.mu.Unlock()
}

// Rendezvous reaches this worker's collector safe point.
func (w *Worker) Rendezvous() {
	gc.Rendezvous(w.id)
}

// Detach deregisters the worker. Per the runtime's Lifecycles contract,
// gc.RemoveWorker forces one final collection before the worker's alive-
// count actually drops, so a cycle it was the last contributor for cannot
// stall waiting on a contribution that will never arrive.
func (w *Worker) Detach() {
	w.reg.mu.Lock()
	delete(w.reg.workers, w.id)
	w.reg.mu.Unlock()
	if err := gc.RemoveWorker(w.id); err != nil {
		panic(err)
	}
}
