package copyright

import "time"

// SetClock pins the checker's notion of "now" for deterministic year spans.
func (c *Checker) SetClock(now func() time.Time) {
	c.now = now
}
