package fib

import "lukechampine.com/uint128"

// Strategy is one way of computing F(n), as listed by the harness.
type Strategy struct {
	Description string
	Solve       func(n uint64) uint128.Uint128
}

// Strategies returns the five strategies in the order they are timed.
// The last two share the caches of c.
func Strategies(c *Cached) []Strategy {
	return []Strategy{
		{"simple backtracing/recursion", Naive},
		{"backtracing/recursion with memoization", Memo},
		{"dynamic programming with memoization", Dynamic},
		{"cached function", c.Fib},
		{"cached dynamic function", c.Dynamic},
	}
}
