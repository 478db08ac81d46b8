package gc

// mark implements the transitive closure walk (spec §4.5). Called with
// c.mu held, for the whole traversal — the design forbids incrementing any
// walked object's refcount (that would perturb the very counts being
// measured), so the lock is what keeps the graph stable instead (spec §9).
func (c *Collector) mark() {
	roots := c.snapshotRoots()
	c.logf("mark: starting pass over %d root(s)", len(roots))

	// Prepopulate any root not already carrying a contribution, without
	// stomping one: a stack reference contributed at a rendezvous that
	// happened before this mark was scheduled must not be lost (spec
	// §4.5 step 2).
	for _, r := range roots {
		if _, ok := c.innerCount[r]; !ok {
			c.innerCount[r] = 0
		}
	}

	visited := make(map[Cell]struct{}, len(roots))
	work := make([]Cell, 0, len(roots))
	for _, r := range roots {
		visited[r] = struct{}{}
		work = append(work, r)
	}

	for len(work) > 0 {
		cell := work[0]
		work = work[1:]

		for _, slot := range cell.Slots() {
			target := slot.Get()
			if target == nil {
				continue
			}
			if target.IsAtomicCell() {
				c.innerCount[target]++
			}
			if _, seen := visited[target]; seen {
				continue
			}
			visited[target] = struct{}{}
			work = append(work, target)
		}
	}

	// InnerCount going negative means a worker's stack contribution
	// (Rendezvous decrementing for a cell it holds live) outnumbered every
	// closure edge the walk just found pointing at that cell. That can only
	// happen if the host reported a stack reference to a cell that is not
	// actually reachable through the object graph this pass just walked —
	// host-runtime corruption, not a condition this collector can recover
	// from (spec §7).
	for _, count := range c.innerCount {
		if count < 0 {
			panic("gc: InnerCount negative for a cell")
		}
	}

	// A cell whose InnerCount matches its refcount has every inbound
	// reference explained by the closure — but only if nothing else in
	// the closure is itself externally kept alive and pointing at it. A
	// cell reachable from a kept (externally-referenced) cell is kept
	// too, even if its own tally happens to match: otherwise a live
	// external reference on one member of a would-be cycle leaves the
	// members it points to looking spuriously collectible (see the
	// "cycle with external ref" testable scenario, where the equality
	// test alone is not enough).
	kept := make(map[Cell]struct{})
	var keptQueue []Cell
	for _, r := range roots {
		if c.innerCount[r] != r.RefCount() {
			kept[r] = struct{}{}
			keptQueue = append(keptQueue, r)
		}
	}
	for len(keptQueue) > 0 {
		cell := keptQueue[0]
		keptQueue = keptQueue[1:]
		for _, slot := range cell.Slots() {
			target := slot.Get()
			if target == nil || !target.IsAtomicCell() {
				continue
			}
			if _, already := kept[target]; already {
				continue
			}
			kept[target] = struct{}{}
			keptQueue = append(keptQueue, target)
		}
	}

	collected := 0
	for _, r := range roots {
		if _, isKept := kept[r]; isKept {
			continue
		}
		if c.innerCount[r] != r.RefCount() {
			continue
		}
		for _, slot := range r.Slots() {
			c.releaseQueue = append(c.releaseQueue, slot)
		}
		collected++
	}
	c.lastCycleCollected = collected
	c.logf("mark: collected %d of %d root(s)", collected, len(roots))

	for k := range c.innerCount {
		delete(c.innerCount, k)
	}
	c.contributed = make(map[WorkerID]struct{})
	c.collectRequested = false
	c.wantCollect = false
}

// collectLocked is the RemoveWorker-triggered final collection: it runs the
// same mark pass directly on the caller's goroutine rather than waking the
// CollectorThread, mirroring the original CyclicCollector::removeWorker's
// synchronous collectLocked() call. Callers must hold c.mu.
func (c *Collector) collectLocked() {
	c.running.Store(true)
	c.mark()
	c.running.Store(false)
}
