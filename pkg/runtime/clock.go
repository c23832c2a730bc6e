package runtime

import (
	"sync"
	"time"
)

// Clock supplies the unix timestamp reported by the clock sysvar.
type Clock interface {
	UnixTimestamp() int64
}

type wallClock struct{}

// NewWallClock returns a Clock backed by the system time.
func NewWallClock() Clock {
	return wallClock{}
}

func (wallClock) UnixTimestamp() int64 {
	return time.Now().Unix()
}

// ManualClock is a Clock that only moves when told to.
type ManualClock struct {
	mu sync.Mutex
	ts int64
}

func NewManualClock(ts int64) *ManualClock {
	return &ManualClock{ts: ts}
}

func (c *ManualClock) UnixTimestamp() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.ts
}

func (c *ManualClock) Set(ts int64) {
	c.mu.Lock()
	c.ts = ts
	c.mu.Unlock()
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.ts += int64(d / time.Second)
	c.mu.Unlock()
}
