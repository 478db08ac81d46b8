package gc

import "time"

// loop is the CollectorThread: a dedicated background goroutine cycling
// between Idle (waiting on cond) and Marking (running mark under the
// lock), until Shutdown sets terminating.
func (c *Collector) loop() {
	defer close(c.terminated)

	c.mu.Lock()
	defer c.mu.Unlock()

	for {
		for !c.wantCollect && !c.terminating {
			c.cond.Wait()
		}
		if c.terminating {
			c.logf("loop: terminating")
			return
		}

		c.logf("loop: entering Marking state")
		c.running.Store(true)
		c.mark()
		c.running.Store(false)
		c.lastCollection = time.Now()
	}
}
