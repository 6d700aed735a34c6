// Package fib computes Fibonacci numbers five different ways so their
// running times can be compared.
//
// Values are unsigned 128-bit integers. F(MaxIndex) is the largest Fibonacci
// number that fits; every strategy panics on overflow rather than wrapping.
package fib

import (
	"errors"
	"fmt"

	"lukechampine.com/uint128"
)

// MaxIndex is the largest n for which F(n) fits in 128 bits.
const MaxIndex = 186

// ErrOverflow is returned by CheckIndex when F(n) does not fit in 128 bits.
var ErrOverflow = errors.New("fib: result overflows 128 bits")

// CheckIndex reports whether F(n) can be computed without overflow.
func CheckIndex(n uint64) error {
	if n > MaxIndex {
		return fmt.Errorf("%w: index %d exceeds %d", ErrOverflow, n, MaxIndex)
	}
	return nil
}

// base returns F(n) for n < 2.
func base(n uint64) uint128.Uint128 {
	return uint128.From64(n)
}

// Naive is plain exponential recursion.
func Naive(n uint64) uint128.Uint128 {
	if n < 2 {
		return base(n)
	}

	return Naive(n - 1).Add(Naive(n - 2))
}
