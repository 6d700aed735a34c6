package fib

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"lukechampine.com/uint128"

	"github.com/jculverhouse/fibonacci-race/internal/memo"
)

// Cached holds the long-lived caches behind Fib and Dynamic. A Cached is
// safe for concurrent use, and its caches live as long as it does.
type Cached struct {
	fib *memo.Memoizer[uint64, uint128.Uint128]
	dyn *memo.Memoizer[uint64, uint128.Uint128]
}

// NewCached returns a Cached whose caches each hold capacity results and
// evict the least recently used one when full.
func NewCached(capacity int, log logrus.FieldLogger) (*Cached, error) {
	c := &Cached{}

	var err error
	c.fib, err = memo.New(capacity, c.fibOf, memo.WithLogger(log.WithField("cache", "fib")))
	if err != nil {
		return nil, fmt.Errorf("fib cache: %w", err)
	}

	c.dyn, err = memo.New(capacity, c.dynamicOf, memo.WithLogger(log.WithField("cache", "dynamic")))
	if err != nil {
		return nil, fmt.Errorf("dynamic cache: %w", err)
	}

	return c, nil
}

// Fib is the naive recursion with every call going through the shared cache.
func (c *Cached) Fib(n uint64) uint128.Uint128 {
	return c.fib.Call(n)
}

// Dynamic warms the Fib cache for 2..n in ascending order and then answers
// from it. It returns the same value as Fib.
func (c *Cached) Dynamic(n uint64) uint128.Uint128 {
	return c.dyn.Call(n)
}

// Stats returns the counters of the Fib and Dynamic caches.
func (c *Cached) Stats() (fib, dynamic memo.Stats) {
	return c.fib.Stats(), c.dyn.Stats()
}

// Purge empties both caches.
func (c *Cached) Purge() {
	c.fib.Purge()
	c.dyn.Purge()
}

func (c *Cached) fibOf(n uint64) uint128.Uint128 {
	if n < 2 {
		return base(n)
	}

	return c.Fib(n - 1).Add(c.Fib(n - 2))
}

func (c *Cached) dynamicOf(n uint64) uint128.Uint128 {
	if n < 2 {
		return base(n)
	}

	for i := uint64(2); i <= n; i++ {
		c.Fib(i)
	}

	return c.Fib(n - 1).Add(c.Fib(n - 2))
}
