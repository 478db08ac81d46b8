package gc_test

import (
	"testing"

	"purplegc/pkg/ast"
	"purplegc/pkg/gc"
	"purplegc/pkg/mutator"
)

func setup(t *testing.T) *mutator.Registry {
	t.Helper()
	reg := mutator.NewRegistry()
	gc.Init(reg)
	t.Cleanup(gc.Shutdown)
	return reg
}

// forceCollect drives one synchronous mark pass (via a worker's forced
// Detach collection) and one rendezvous to drain the resulting
// ReleaseQueue, without depending on the background CollectorThread's
// timing.
func forceCollect(t *testing.T, reg *mutator.Registry, driver *mutator.Worker) {
	t.Helper()
	driver.Detach()
	drainer := reg.Spawn()
	drainer.Rendezvous()
	drainer.Detach()
}

func addRoot(t *testing.T, cell gc.Cell) {
	t.Helper()
	if err := gc.AddAtomicRoot(cell); err != nil {
		t.Fatalf("AddAtomicRoot: %v", err)
	}
}

func removeRoot(t *testing.T, cell gc.Cell) {
	t.Helper()
	if err := gc.RemoveAtomicRoot(cell); err != nil {
		t.Fatalf("RemoveAtomicRoot: %v", err)
	}
}

// S1: pure cycle of two atoms, no external references.
func TestPureCycleCollected(t *testing.T) {
	reg := setup(t)
	w := reg.Spawn()

	a := ast.NewAtom(ast.Nil)
	b := ast.NewAtom(ast.Nil)
	addRoot(t, a)
	addRoot(t, b)

	a.Store(b)
	b.Store(a)
	// drop the construction-time external references; only the mutual
	// atom-to-atom edges keep them alive now.
	ast.Release(a)
	ast.Release(b)

	forceCollect(t, reg, w)

	if got := a.RefCount(); got != 0 {
		t.Fatalf("a.RefCount() = %d, want 0", got)
	}
	if got := b.RefCount(); got != 0 {
		t.Fatalf("b.RefCount() = %d, want 0", got)
	}

	removeRoot(t, a)
	removeRoot(t, b)
}

// S2: cycle with one retained external reference to A.
func TestCycleWithExternalRefNotCollected(t *testing.T) {
	reg := setup(t)
	w := reg.Spawn()

	a := ast.NewAtom(ast.Nil)
	b := ast.NewAtom(ast.Nil)
	addRoot(t, a)
	addRoot(t, b)

	a.Store(b)
	b.Store(a)
	// keep the external reference to a; only drop the one to b.
	ast.Release(b)

	forceCollect(t, reg, w)

	if got := a.RefCount(); got == 0 {
		t.Fatalf("a.RefCount() = %d, want > 0 (external reference retained)", got)
	}
	if a.Load() != b {
		t.Fatalf("a's slot was cleared despite a live external reference")
	}

	ast.Release(a)
	removeRoot(t, a)
	removeRoot(t, b)
}

// S3: cycle through a frozen intermediary pair.
func TestCycleThroughFrozenIntermediary(t *testing.T) {
	reg := setup(t)
	w := reg.Spawn()

	a := ast.NewAtom(ast.Nil)
	b := ast.NewAtom(ast.Nil)
	addRoot(t, a)
	addRoot(t, b)

	o := ast.NewPair(b, ast.Nil) // O references B
	a.Store(o)
	ast.Release(o) // a now owns the only strong reference to o
	b.Store(a)

	ast.Release(a)
	ast.Release(b)

	forceCollect(t, reg, w)

	if got := a.RefCount(); got != 0 {
		t.Fatalf("a.RefCount() = %d, want 0", got)
	}
	if got := b.RefCount(); got != 0 {
		t.Fatalf("b.RefCount() = %d, want 0", got)
	}

	removeRoot(t, a)
	removeRoot(t, b)
}

// S4: a stack reference to A holds the cycle live.
func TestStackReferenceHoldsCycle(t *testing.T) {
	reg := setup(t)
	w := reg.Spawn()

	a := ast.NewAtom(ast.Nil)
	b := ast.NewAtom(ast.Nil)
	addRoot(t, a)
	addRoot(t, b)

	a.Store(b)
	b.Store(a)
	ast.Release(a)
	ast.Release(b)

	// w's stack holds a reference to a: contribute it before dropping w.
	ast.Retain(a)
	w.Push(a)
	gc.RequestCollection()
	w.Rendezvous() // contributes -1 to InnerCount[a], does not itself collect

	forceCollect(t, reg, w)

	if got := a.RefCount(); got == 0 {
		t.Fatalf("a.RefCount() = %d, want > 0 (stack reference retained)", got)
	}

	w.Pop()
	ast.Release(a)
	removeRoot(t, a)
	removeRoot(t, b)
}

// S6: a chain, not a cycle — neither cell should ever be judged
// collectible even though nothing external references B.
func TestChainNotCollected(t *testing.T) {
	reg := setup(t)
	w := reg.Spawn()

	a := ast.NewAtom(ast.Nil)
	b := ast.NewAtom(ast.Nil)
	addRoot(t, a)
	addRoot(t, b)

	a.Store(b)
	ast.Release(b) // a now owns the only strong reference to b

	forceCollect(t, reg, w)

	// a is never collectible (InnerCount[a]=0 != refCount(a)=1: the only
	// reference to a is this test's own external one, not a rootset
	// edge), so its slot is never queued and the chain stays intact.
	if got := a.RefCount(); got == 0 {
		t.Fatalf("a.RefCount() = %d, want > 0 (still externally referenced)", got)
	}
	if a.Load() != b {
		t.Fatalf("a's slot was cleared even though a was never collectible")
	}

	ast.Release(a)
	removeRoot(t, a)
	removeRoot(t, b)
}

// Invariant 5: addAtomicRoot;removeAtomicRoot is a no-op on the registry.
func TestAddRemoveAtomicRootRoundTrip(t *testing.T) {
	setup(t)
	a := ast.NewAtom(ast.Nil)
	addRoot(t, a)
	removeRoot(t, a)
	// A second Add must succeed — if the first Remove had not taken
	// effect this would panic on the duplicate-registration check.
	addRoot(t, a)
	removeRoot(t, a)
}

// Invariant 3: |ContributedWorkers| <= |WorkerRegistry| at all times,
// observed through the public Snapshot diagnostic.
func TestContributedNeverExceedsRegistered(t *testing.T) {
	reg := setup(t)
	w1 := reg.Spawn()
	w2 := reg.Spawn()

	w1.Rendezvous()
	stats := gc.Snapshot()
	if stats.ContributedWorkers > stats.Workers {
		t.Fatalf("ContributedWorkers %d > Workers %d", stats.ContributedWorkers, stats.Workers)
	}

	w2.Rendezvous()
	stats = gc.Snapshot()
	if stats.ContributedWorkers > stats.Workers {
		t.Fatalf("ContributedWorkers %d > Workers %d", stats.ContributedWorkers, stats.Workers)
	}

	w1.Detach()
	w2.Detach()
}

// Invariant 7: rendezvous invoked twice in a row by the same worker in one
// cycle has the same effect as once.
func TestRendezvousIdempotentWithinCycle(t *testing.T) {
	reg := setup(t)
	w := reg.Spawn()

	gc.RequestCollection()
	w.Rendezvous()
	statsAfterFirst := gc.Snapshot()

	w.Rendezvous()
	statsAfterSecond := gc.Snapshot()

	if statsAfterFirst.ContributedWorkers != statsAfterSecond.ContributedWorkers {
		t.Fatalf("second rendezvous changed ContributedWorkers: %d -> %d",
			statsAfterFirst.ContributedWorkers, statsAfterSecond.ContributedWorkers)
	}

	w.Detach()
}

// Idempotence 6: two successive requestCollection calls followed by a
// rendezvous complete without panicking. The number of collection cycles
// that result is not observed here.
func TestRepeatedRequestCollectionIsSafe(t *testing.T) {
	reg := setup(t)
	w := reg.Spawn()

	gc.RequestCollection()
	gc.RequestCollection()
	w.Rendezvous()

	w.Detach()
}

// S5: a worker that registers mid-cycle must contribute before the gate
// completes. w2 joins after RequestCollection but before either worker has
// rendezvoused, so WorkerRegistry grows to 2 while ContributedWorkers is
// still 0; w1 alone rendezvousing must not be mistaken for a complete gate.
func TestLateJoiningWorkerRequiredForGate(t *testing.T) {
	reg := setup(t)
	w1 := reg.Spawn()

	gc.RequestCollection()
	w2 := reg.Spawn()

	w1.Rendezvous()
	stats := gc.Snapshot()
	if stats.Workers != 2 {
		t.Fatalf("Workers = %d, want 2", stats.Workers)
	}
	if stats.ContributedWorkers != 1 {
		t.Fatalf("ContributedWorkers = %d, want 1: the late joiner must not be counted as having contributed", stats.ContributedWorkers)
	}

	w2.Rendezvous()
	stats = gc.Snapshot()
	if stats.ContributedWorkers > stats.Workers {
		t.Fatalf("ContributedWorkers %d > Workers %d", stats.ContributedWorkers, stats.Workers)
	}

	w1.Detach()
	w2.Detach()
}

// AddAtomicRoot/AddWorker treat a nil cell or a zero worker id as a
// malformed, recoverable argument (spec §7's "recoverable construction
// errors"), not a programmer error worth panicking over.
func TestMalformedArgumentsReturnErrors(t *testing.T) {
	setup(t)

	if err := gc.AddAtomicRoot(nil); err == nil {
		t.Fatal("AddAtomicRoot(nil) = nil error, want non-nil")
	}
	if err := gc.RemoveAtomicRoot(nil); err == nil {
		t.Fatal("RemoveAtomicRoot(nil) = nil error, want non-nil")
	}
	if err := gc.AddWorker(0); err == nil {
		t.Fatal("AddWorker(0) = nil error, want non-nil")
	}
	if err := gc.RemoveWorker(0); err == nil {
		t.Fatal("RemoveWorker(0) = nil error, want non-nil")
	}
}
