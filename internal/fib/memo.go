package fib

import "lukechampine.com/uint128"

// Memo is recursion over a memo table that lives for one call.
func Memo(n uint64) uint128.Uint128 {
	return MemoWith(make(map[uint64]uint128.Uint128), n)
}

// MemoWith is recursion over a caller-owned memo table. Every value it
// computes is left in memo.
func MemoWith(memo map[uint64]uint128.Uint128, n uint64) uint128.Uint128 {
	if v, ok := memo[n]; ok {
		return v
	}

	v := base(n)
	if n >= 2 {
		v = MemoWith(memo, n-1).Add(MemoWith(memo, n-2))
	}
	memo[n] = v

	return v
}

// Dynamic fills a table bottom-up from F(0) and F(1). The whole table is
// kept for the duration of the call.
func Dynamic(n uint64) uint128.Uint128 {
	table := make(map[uint64]uint128.Uint128, n+1)
	table[0] = base(0)
	table[1] = base(1)

	for i := uint64(2); i <= n; i++ {
		table[i] = table[i-1].Add(table[i-2])
	}

	return table[n]
}
