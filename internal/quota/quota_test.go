package quota

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBudget_AllowWithinLimit(t *testing.T) {
	b := NewBudget(3, time.Hour)

	for i := 0; i < 3; i++ {
		assert.True(t, b.Allow(), "call %d should fit in the budget", i+1)
	}
	assert.False(t, b.Allow(), "fourth call should be denied")
	assert.False(t, b.Allow())

	stats := b.Stats()
	assert.Equal(t, 3, stats.Used)
	assert.Equal(t, int64(2), stats.Denied)
}

func TestBudget_Unlimited(t *testing.T) {
	b := NewBudget(0, time.Hour)

	for i := 0; i < 1000; i++ {
		assert.True(t, b.Allow())
	}
}

func TestBudget_WindowRollover(t *testing.T) {
	b := NewBudget(2, 40*time.Millisecond)

	assert.True(t, b.Allow())
	assert.True(t, b.Allow())
	assert.False(t, b.Allow())

	time.Sleep(60 * time.Millisecond)

	assert.True(t, b.Allow(), "new window should reset the counter")
	stats := b.Stats()
	assert.Equal(t, 1, stats.Used)
}

func TestBudget_Reset(t *testing.T) {
	b := NewBudget(1, time.Hour)

	assert.True(t, b.Allow())
	assert.False(t, b.Allow())

	b.Reset()

	assert.True(t, b.Allow())
	stats := b.Stats()
	assert.Equal(t, 1, stats.Used)
	assert.Equal(t, int64(0), stats.Denied)
}

func TestBudget_ConcurrentAllow(t *testing.T) {
	const limit = 50
	b := NewBudget(limit, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				if b.Allow() {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, limit, allowed, "exactly the budget should be granted")
}
