package quiz_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/cineverse/internal/quiz"
)

func TestCountdown_RestartCancelsPrevious(t *testing.T) {
	var mu sync.Mutex
	c := quiz.NewCountdown(5 * time.Millisecond)
	fired := map[uint64]int{}
	handler := func(gen uint64) {
		mu.Lock()
		defer mu.Unlock()
		if c.Active(gen) {
			fired[gen]++
		}
	}

	mu.Lock()
	first := c.Start(handler)
	mu.Unlock()
	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	second := c.Start(handler)
	assert.False(t, c.Active(first))
	assert.True(t, c.Active(second))
	before := fired[first]
	mu.Unlock()

	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	c.Stop()
	assert.False(t, c.Active(second))
	assert.Equal(t, before, fired[first], "stale ticker must not be counted after restart")
	assert.Positive(t, fired[second])
	mu.Unlock()
}

func TestCountdown_StopIsIdempotent(t *testing.T) {
	c := quiz.NewCountdown(0)
	c.Stop()
	c.Stop()
	assert.False(t, c.Active(0))
}
