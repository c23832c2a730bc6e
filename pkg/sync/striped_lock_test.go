package sync

import (
	"fmt"
	"sync"
	base "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripedLock_HappyPath(t *testing.T) {
	workerCount := 256
	operationCount := 100000

	l := NewStripedLock(4)

	var workerWg base.WaitGroup
	startChan := make(chan struct{}, 0)
	data := make([]int, workerCount)

	for i := 0; i < workerCount; i++ {
		workerWg.Add(1)

		go func(workerID int) {
			defer workerWg.Done()

			var opWg sync.WaitGroup
			key := []byte(fmt.Sprintf("worker%d", workerID))
			for j := 0; j < operationCount; j++ {
				opWg.Add(1)

				go func() {
					defer opWg.Done()

					select {
					case <-startChan:
					}

					mu := l.Get([]byte(key))
					mu.Lock()
					data[workerID]++
					mu.Unlock()
				}()
			}
			opWg.Wait()
		}(i)
	}

	close(startChan)
	workerWg.Wait()

	for _, val := range data {
		assert.EqualValues(t, operationCount, val)
	}
}

func TestStripedLock_AcquireAll(t *testing.T) {
	l := NewStripedLock(16)

	keys := make([][]byte, 64)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("account%d", i))
	}

	workerCount := 64
	operationCount := 500
	counters := make([]int, len(keys))

	var wg base.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)

		go func(workerID int) {
			defer wg.Done()

			for j := 0; j < operationCount; j++ {
				// Overlapping writable sets in varying order, plus readonly keys
				// that are also written by other workers.
				a := (workerID + j) % len(keys)
				b := (workerID*7 + j*3) % len(keys)
				c := (workerID*13 + j) % len(keys)

				writable := [][]byte{keys[a], keys[b]}
				readonly := [][]byte{keys[c]}
				if a == b {
					writable = writable[:1]
				}

				unlock := l.AcquireAll(writable, readonly)
				counters[a]++
				if a != b {
					counters[b]++
				}
				unlock()
			}
		}(i)
	}
	wg.Wait()

	var total int
	for _, count := range counters {
		total += count
	}

	var expected int
	for i := 0; i < workerCount; i++ {
		for j := 0; j < operationCount; j++ {
			a := (i + j) % len(keys)
			b := (i*7 + j*3) % len(keys)
			expected++
			if a != b {
				expected++
			}
		}
	}
	assert.Equal(t, expected, total)
}

func TestStripedLock_AcquireAllReaders(t *testing.T) {
	l := NewStripedLock(4)
	key := []byte("vault")

	unlockFirst := l.AcquireAll(nil, [][]byte{key})
	unlockSecond := l.AcquireAll(nil, [][]byte{key, key})

	acquired := make(chan struct{})
	go func() {
		unlock := l.AcquireAll([][]byte{key}, [][]byte{key})
		close(acquired)
		unlock()
	}()

	select {
	case <-acquired:
		t.Fatal("writer acquired lock held by readers")
	case <-time.After(50 * time.Millisecond):
	}

	unlockFirst()
	unlockSecond()
	unlockSecond()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		require.Fail(t, "writer never acquired lock")
	}
}
