package memo

import (
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(calls *atomic.Int64) func(int) int {
	return func(k int) int {
		calls.Add(1)
		return k * k
	}
}

func TestNewRejectsCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		_, err := New(capacity, func(k int) int { return k })
		require.ErrorIs(t, err, ErrCapacity)
	}
}

func TestCallComputesOnce(t *testing.T) {
	var calls atomic.Int64
	m, err := New(4, square(&calls))
	require.NoError(t, err)

	assert.Equal(t, 9, m.Call(3))
	assert.Equal(t, 9, m.Call(3))
	assert.Equal(t, int64(1), calls.Load())

	s := m.Stats()
	assert.Equal(t, int64(1), s.Hits)
	assert.Equal(t, int64(1), s.Misses)
	assert.Equal(t, 1, s.Len)
}

func TestEvictionRecomputes(t *testing.T) {
	var calls atomic.Int64
	m, err := New(2, square(&calls))
	require.NoError(t, err)

	m.Call(1)
	m.Call(2)
	m.Call(3) // evicts 1

	assert.False(t, m.Contains(1))
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, int64(1), m.Stats().Evictions)

	assert.Equal(t, 1, m.Call(1))
	assert.Equal(t, int64(4), calls.Load())
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	var calls atomic.Int64
	m, err := New(2, square(&calls))
	require.NoError(t, err)

	m.Call(1)
	m.Call(2)
	m.Call(1) // 2 is now the oldest
	m.Call(3)

	assert.True(t, m.Contains(1))
	assert.False(t, m.Contains(2))
	assert.True(t, m.Contains(3))
}

func TestRecursiveCall(t *testing.T) {
	var m *Memoizer[int, int]
	var calls atomic.Int64
	m, err := New(8, func(n int) int {
		calls.Add(1)
		if n < 2 {
			return n
		}
		return m.Call(n-1) + m.Call(n-2)
	})
	require.NoError(t, err)

	assert.Equal(t, 6765, m.Call(20))
	// 0..20 computed once each.
	assert.Equal(t, int64(21), calls.Load())
}

func TestPurge(t *testing.T) {
	var calls atomic.Int64
	m, err := New(4, square(&calls))
	require.NoError(t, err)

	m.Call(1)
	m.Call(2)
	m.Purge()
	assert.Equal(t, 0, m.Len())

	m.Call(1)
	assert.Equal(t, int64(3), calls.Load())
}

func TestEvictionIsTraced(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.TraceLevel)

	m, err := New(1, func(k int) int { return k }, WithLogger(log))
	require.NoError(t, err)

	m.Call(1)
	m.Call(2)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "memo: evicted", hook.LastEntry().Message)
	assert.Equal(t, 1, hook.LastEntry().Data["key"])
}

func TestConcurrentCalls(t *testing.T) {
	var calls atomic.Int64
	m, err := New(64, square(&calls))
	require.NoError(t, err)

	wg := sync.WaitGroup{}
	for i := 0; i < 256; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			k := rand.Intn(32)
			if got := m.Call(k); got != k*k {
				t.Errorf("Call(%d) = %d", k, got)
			}
		}()
	}
	wg.Wait()

	// Nothing was evicted, so every key was computed at most once.
	assert.LessOrEqual(t, calls.Load(), int64(32))
}

type pair struct {
	a, b string
}

func TestStructKeysDoNotShareFlights(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m, err := New(8, func(p pair) string {
		if p == (pair{"x y", ""}) {
			close(started)
			<-release
		}
		return p.a + "|" + p.b
	})
	require.NoError(t, err)

	slow := make(chan string)
	go func() {
		slow <- m.Call(pair{"x y", ""})
	}()
	<-started

	// Prints the same as the blocked key but must not wait on it.
	assert.Equal(t, "x|y ", m.Call(pair{"x", "y "}))

	close(release)
	assert.Equal(t, "x y|", <-slow)
}

func TestNilInterfaceValue(t *testing.T) {
	var calls atomic.Int64
	m, err := New(8, func(int) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	assert.NoError(t, m.Call(1))
	assert.NoError(t, m.Call(1))
	assert.Equal(t, int64(1), calls.Load())
}

func TestWaitersShareOneComputation(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int64
	m, err := New(8, func(k int) int {
		calls.Add(1)
		<-release
		return k * 2
	})
	require.NoError(t, err)

	wg := sync.WaitGroup{}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, 42, m.Call(21))
		}()
	}

	// Let the goroutines pile up on the flight before it lands.
	for calls.Load() == 0 {
		runtime.Gosched()
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load())
}

func TestPanicReachesCaller(t *testing.T) {
	m, err := New(8, func(k int) int {
		if k < 0 {
			panic("negative")
		}
		return k
	})
	require.NoError(t, err)

	assert.PanicsWithValue(t, "negative", func() { m.Call(-1) })
	assert.False(t, m.Contains(-1))

	// The failed flight is gone, so the key can be tried again.
	assert.PanicsWithValue(t, "negative", func() { m.Call(-1) })
	assert.Equal(t, 3, m.Call(3))
}

func BenchmarkCall(b *testing.B) {
	for capacity := 1; capacity <= 64; capacity *= 4 {
		b.Run(fmt.Sprintf("capacity-%d", capacity), func(b *testing.B) {
			m, err := New(capacity, func(k int) int { return k * k })
			require.NoError(b, err)

			for i := 0; i < b.N; i++ {
				_ = m.Call(i % 32)
			}
		})
	}
}
