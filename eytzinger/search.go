// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package eytzinger

import (
	"cmp"

	"github.com/flatsearch/flatsearch/vec"
)

// The bound predicates report whether the node value v is a candidate
// answer for target t. Descent goes left on a candidate and right otherwise.
func atLeast[T cmp.Ordered](v, t T) bool { return v >= t }
func above[T cmp.Ordered](v, t T) bool   { return v > t }

// LowerBound returns the layout index of the first value >= target in
// sorted order, or false if every value is smaller.
func LowerBound[T cmp.Ordered](layout []T, target T) (int, bool) {
	return descend(layout, target, atLeast[T])
}

// UpperBound returns the layout index of the first value > target in sorted
// order, or false if no value is larger.
func UpperBound[T cmp.Ordered](layout []T, target T) (int, bool) {
	return descend(layout, target, above[T])
}

// LowerBoundPrefetched is LowerBound with a prefetch of a node several levels
// down issued on every step.
func LowerBoundPrefetched[T cmp.Ordered](layout []T, target T) (int, bool) {
	return descendPrefetched(layout, target, atLeast[T])
}

// UpperBoundPrefetched is UpperBound with prefetching.
func UpperBoundPrefetched[T cmp.Ordered](layout []T, target T) (int, bool) {
	return descendPrefetched(layout, target, above[T])
}

// LowerBoundBranchless is LowerBoundPrefetched with the descent direction
// computed arithmetically from the comparison instead of branching on it.
func LowerBoundBranchless[T cmp.Ordered](layout []T, target T) (int, bool) {
	return descendBranchless(layout, target, atLeast[T])
}

// UpperBoundBranchless is the upper bound flavour of LowerBoundBranchless.
func UpperBoundBranchless[T cmp.Ordered](layout []T, target T) (int, bool) {
	return descendBranchless(layout, target, above[T])
}

func descend[T cmp.Ordered](layout []T, target T, candidate func(v, t T) bool) (int, bool) {
	res, found := 0, false
	for cur := 0; cur < len(layout); {
		if candidate(layout[cur], target) {
			res, found = cur, true
			cur = 2*cur + 1
		} else {
			cur = 2*cur + 2
		}
	}
	return res, found
}

func descendPrefetched[T cmp.Ordered](layout []T, target T, candidate func(v, t T) bool) (int, bool) {
	res, found := 0, false
	for cur := 0; cur < len(layout); {
		vec.PrefetchAt(layout, lookahead(cur))
		if candidate(layout[cur], target) {
			res, found = cur, true
			cur = 2*cur + 1
		} else {
			cur = 2*cur + 2
		}
	}
	return res, found
}

func descendBranchless[T cmp.Ordered](layout []T, target T, candidate func(v, t T) bool) (int, bool) {
	res, found := 0, false
	for cur := 0; cur < len(layout); {
		vec.PrefetchAt(layout, lookahead(cur))
		right := b2i(!candidate(layout[cur], target))
		if right == 0 {
			res, found = cur, true
		}
		cur = 2*cur + 1 + right
	}
	return res, found
}

func lookahead(cur int) int {
	return (2*cur + vec.PrefetchOffset) * prefetchScale
}

func b2i(b bool) int {
	var i int
	if b {
		i = 1
	}
	return i
}
