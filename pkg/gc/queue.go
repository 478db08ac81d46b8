package gc

// drainReleaseQueueLocked zeroes every queued slot through the host's
// write-barrier-aware Clear, then empties the queue. Called with c.mu held,
// from whichever mutator reaches the next rendezvous after a mark pass
// enqueued work — ownership of "who may write to that slot" transfers from
// the collector to that mutator (spec §5).
func (c *Collector) drainReleaseQueueLocked() {
	if len(c.releaseQueue) == 0 {
		return
	}
	for _, slot := range c.releaseQueue {
		slot.Clear()
	}
	c.releaseQueue = c.releaseQueue[:0]
}
