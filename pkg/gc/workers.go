package gc

import "fmt"

// AddWorker registers a mutator thread. WorkerID zero is never issued by
// mutator.Registry.Spawn, so a caller passing it is treated as a malformed
// argument and reported as an error rather than a panic. The first
// successful AddWorker after Init (or after the primary worker has been
// removed) records the primary worker: a designation kept for a host scheduler
// that wants to avoid hanging expensive work on the thread that typically
// runs a UI/event loop. This collector's own scheduling heuristic
// (checkShouldCollectLocked) does not distinguish the primary from any
// other worker; it is exposed so a host is free to. Registering an
// already-registered id is a programmer error.
func AddWorker(id WorkerID) error {
	if id == 0 {
		return fmt.Errorf("gc: AddWorker: id 0 is never a valid worker id")
	}
	c := current()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.workers[id]; ok {
		panic("gc: AddWorker on an already-registered worker")
	}
	if !c.hasPrimary {
		c.primary = id
		c.hasPrimary = true
	}
	c.workers[id] = struct{}{}
	return nil
}

// RemoveWorker deregisters a mutator thread. WorkerID zero is reported as
// an error for the same reason as AddWorker. Per spec's Lifecycles note and
// the original CyclicCollector::removeWorker, detaching a worker forces one
// final collection pass first, so its in-flight rendezvous contribution
// (if any) does not strand ContributedWorkers short of WorkerRegistry.
// Removing an id that was never registered is a programmer error.
func RemoveWorker(id WorkerID) error {
	if id == 0 {
		return fmt.Errorf("gc: RemoveWorker: id 0 is never a valid worker id")
	}
	c := current()
	c.mu.Lock()
	if _, ok := c.workers[id]; !ok {
		c.mu.Unlock()
		panic("gc: RemoveWorker on an unregistered worker")
	}
	c.collectLocked()
	delete(c.workers, id)
	delete(c.contributed, id)
	if id == c.primary {
		c.hasPrimary = false
		c.primary = 0
	}
	c.mu.Unlock()
	return nil
}

func (c *Collector) aliveWorkers() int {
	return len(c.workers)
}
