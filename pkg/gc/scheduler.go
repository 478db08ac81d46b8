package gc

import (
	"sync/atomic"
	"time"
)

// RequestCollection forces the scheduler's collect-requested flag. The
// explicit flag dominates the tick/wallclock heuristic and, once set,
// survives until a cycle completes (spec §4.3's tie-break policy).
func RequestCollection() {
	c := current()
	c.mu.Lock()
	c.collectRequested = true
	c.mu.Unlock()
}

// checkShouldCollectLocked is the scheduler's decision function, called from
// every rendezvous. It bumps the tick counter and, absent an explicit
// request, applies the tick-delta-plus-wallclock heuristic. Must be called
// with c.mu held: the final decision is always re-checked under the lock
// even though the tick itself is also visible to atomic readers outside it
// (spec §5's "final decision is re-checked under the lock to avoid
// double-scheduling").
func (c *Collector) checkShouldCollectLocked() bool {
	tick := atomic.AddUint32(&c.tick, 1)
	if c.collectRequested {
		return true
	}
	delta := tick - c.lastTick
	if delta > tickThreshold {
		if c.lastCollection.IsZero() || time.Since(c.lastCollection) >= wallclockFloor {
			c.lastTick = tick
			c.collectRequested = true
			return true
		}
	}
	return false
}
