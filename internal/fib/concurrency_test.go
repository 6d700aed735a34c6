package fib

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"lukechampine.com/uint128"
)

var known [MaxIndex + 1]uint128.Uint128

func init() {
	memo := make(map[uint64]uint128.Uint128)
	MemoWith(memo, MaxIndex)
	for n, v := range memo {
		known[n] = v
	}
}

func TestCachedConcurrent(t *testing.T) {
	// Room for every index, so each key must be computed exactly once.
	c := newCached(t, MaxIndex+1)

	// Random indices so goroutines collide on keys.
	wg := sync.WaitGroup{}
	for j := 0; j < 256; j++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := uint64(rand.Intn(MaxIndex + 1))
			if got := c.Fib(n); got != known[n] {
				t.Errorf("Fib(%d) = %s, want %s", n, got, known[n])
			}
			if got := c.Dynamic(n); got != known[n] {
				t.Errorf("Dynamic(%d) = %s, want %s", n, got, known[n])
			}
		}()
	}
	wg.Wait()

	fib, _ := c.Stats()
	assert.LessOrEqual(t, fib.Misses, int64(MaxIndex+1))
	assert.Zero(t, fib.Evictions)
}

func BenchmarkCachedConcurrent(b *testing.B) {
	for _, capacity := range []int{MaxIndex + 1, 2 * (MaxIndex + 1)} {
		c := newCached(b, capacity)

		b.Run(fmt.Sprintf("reads, capacity:%d, concurrency:256", capacity), func(b *testing.B) {
			wg := sync.WaitGroup{}
			for i := 0; i < b.N; i++ {
				for j := 0; j < 256; j++ {
					wg.Add(1)
					go func() {
						_ = c.Fib(uint64(rand.Intn(MaxIndex + 1)))
						wg.Done()
					}()
				}
				wg.Wait()
			}
		})
	}
}
