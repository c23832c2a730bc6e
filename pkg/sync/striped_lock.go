package sync

import (
	"fmt"
	"sort"
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space to a set of locks. This provides concurrent data access while also
// limiting the total memory footprint.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	ringEntries := make(map[string]interface{})
	for i := 0; i < int(stripes); i++ {
		ringEntries[fmt.Sprintf("lock%d", i)] = i
	}

	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(ringEntries, hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.stripe(key)]
}

// AcquireAll locks every stripe covering the provided keys and returns a
// function that releases them. A stripe is write locked if any writable key
// maps to it, otherwise it is read locked.
//
// Stripes are always acquired in ascending order, so concurrent callers with
// overlapping key sets cannot deadlock.
func (l *StripedLock) AcquireAll(writable, readonly [][]byte) (unlock func()) {
	modes := make(map[int]bool)
	for _, key := range readonly {
		stripe := l.stripe(key)
		if _, ok := modes[stripe]; !ok {
			modes[stripe] = false
		}
	}
	for _, key := range writable {
		modes[l.stripe(key)] = true
	}

	stripes := make([]int, 0, len(modes))
	for stripe := range modes {
		stripes = append(stripes, stripe)
	}
	sort.Ints(stripes)

	for _, stripe := range stripes {
		if modes[stripe] {
			l.locks[stripe].Lock()
		} else {
			l.locks[stripe].RLock()
		}
	}

	var once base.Once
	return func() {
		once.Do(func() {
			for i := len(stripes) - 1; i >= 0; i-- {
				if modes[stripes[i]] {
					l.locks[stripes[i]].Unlock()
				} else {
					l.locks[stripes[i]].RUnlock()
				}
			}
		})
	}
}

func (l *StripedLock) stripe(key []byte) int {
	return l.hashRing.shard(key).(int)
}
