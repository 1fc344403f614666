package engine

import "sync/atomic"

// Clock is the monotonic logical clock that stamps applied actions.
//
// Every action the Runner applies gets a strictly increasing seq number, so
// the persisted provenance trail has an explicit total order independent of
// wall-clock time.
//
// Thread-safety: safe for concurrent use, though the Runner's serialized
// apply phase means only the coordinating goroutine calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
