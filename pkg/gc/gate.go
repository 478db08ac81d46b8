package gc

// Rendezvous is the mutator safe-point entry point (spec §4.4). It is cheap
// to call when no collection is due: the running flag is checked without
// the lock, and if the scheduler heuristic doesn't trip, the whole call
// costs one lock acquisition and a handful of map lookups.
//
// Calling Rendezvous for a worker id that was never registered with
// AddWorker is a programmer error.
func Rendezvous(id WorkerID) {
	c := current()

	// Step 1: a mark phase in progress must not block on this lock — the
	// mark itself may need worker state — so mutators skip rendezvous
	// entirely while running is set. Stack counts gathered mid-cycle would
	// be stale; this is tolerated because ContributedWorkers is filled
	// before marking starts (spec §9's first open question).
	if c.running.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Draining is unconditional and cheap when the queue is empty: a
	// cell judged collectible by a previous cycle (or by a worker's
	// forced Detach collection) must not wait on the tick/wallclock
	// heuristic tripping again before its slots are actually zeroed.
	c.drainReleaseQueueLocked()

	if !c.checkShouldCollectLocked() {
		return
	}

	if _, ok := c.contributed[id]; ok {
		return
	}
	if _, ok := c.workers[id]; !ok {
		panic("gc: rendezvous from an unregistered worker")
	}

	c.host.WalkStack(id, func(cell Cell) {
		if cell == nil || !cell.IsAtomicCell() {
			return
		}
		c.innerCount[cell]--
	})
	c.contributed[id] = struct{}{}

	if len(c.contributed) == len(c.workers) {
		c.logf("rendezvous: gate complete, %d worker(s) contributed", len(c.contributed))
		c.wantCollect = true
		c.cond.Broadcast()
	}
}
