package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceNext(t *testing.T) {
	var seq Sequence
	assert.Equal(t, int64(0), seq.Last())

	id, at := seq.Next()
	assert.Equal(t, int64(1), id)
	assert.Equal(t, BaseTime, at)

	id, at = seq.Next()
	assert.Equal(t, int64(2), id)
	assert.Equal(t, BaseTime.Add(EventSpacing), at)
	assert.Equal(t, int64(2), seq.Last())
	assert.Equal(t, at, TimeOf(2))
}

func TestSequenceConcurrentIDsAreUnique(t *testing.T) {
	var seq Sequence
	ids := make(chan int64, 100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := seq.Next()
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, int64(100), seq.Last())
}
