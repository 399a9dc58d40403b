package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLockSerializesSameKey(t *testing.T) {
	kl := NewKeyedLock()

	const goroutines = 50
	const iterations = 20

	counter := 0
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_ = kl.WithLock("user-1", func() error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*iterations, counter)
}

func TestTryLock(t *testing.T) {
	kl := NewKeyedLock()

	require.True(t, kl.TryLock("user-1"))
	assert.False(t, kl.TryLock("user-1"), "second acquisition must fail while held")
	assert.True(t, kl.TryLock("user-2"), "different keys are independent")

	kl.Unlock("user-1")
	assert.True(t, kl.TryLock("user-1"))

	kl.Unlock("user-1")
	kl.Unlock("user-2")
}

func TestEntriesAreCleanedUp(t *testing.T) {
	kl := NewKeyedLock()

	kl.Lock("user-1")
	kl.Unlock("user-1")

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.Empty(t, kl.locks, "released keys must not leak")
}
