package staging

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestStore(ttl time.Duration) (*Store[string], *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore[string](ttl)
	s.now = c.now
	return s, c
}

func TestStoreTakeOnce(t *testing.T) {
	s, _ := newTestStore(time.Minute)
	s.Stage("sess", "req-1")

	v, ok := s.Peek("sess")
	require.True(t, ok)
	assert.Equal(t, "req-1", v)

	v, ok = s.TakeOnce("sess")
	require.True(t, ok)
	assert.Equal(t, "req-1", v)

	_, ok = s.TakeOnce("sess")
	assert.False(t, ok)
	_, ok = s.Peek("sess")
	assert.False(t, ok)
}

func TestStoreExpiry(t *testing.T) {
	s, c := newTestStore(time.Minute)
	s.Stage("a", "1")
	s.Stage("b", "2")

	c.t = c.t.Add(30 * time.Second)
	s.Stage("b", "3")

	c.t = c.t.Add(31 * time.Second)
	_, ok := s.Peek("a")
	assert.False(t, ok)
	v, ok := s.Peek("b")
	require.True(t, ok)
	assert.Equal(t, "3", v)

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStoreConcurrentTakeOnceReturnsValueOnce(t *testing.T) {
	s := NewStore[int](time.Minute)
	s.Stage("sess", 42)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		hits int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.TakeOnce("sess"); ok {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, hits)
}

func TestSweeperRunOnce(t *testing.T) {
	s, c := newTestStore(time.Second)
	s.Stage("a", "1")
	c.t = c.t.Add(2 * time.Second)

	sw := NewSweeper(time.Hour, zap.NewNop())
	sw.Register("requests", s)
	var swept int
	sw.OnSwept(func(n int) { swept += n })

	assert.Equal(t, 1, sw.RunOnce())
	assert.Equal(t, 1, swept)

	ctx, cancel := context.WithCancel(context.Background())
	stop := sw.Start(ctx)
	close(stop)
	cancel()
}
