// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package eytzinger implements the Eytzinger (implicit binary heap) layout
// of a sorted sequence and the search routines over it.
//
// Node k of the layout has its children at 2k+1 and 2k+2, and an in-order
// walk of this implicit tree visits the values in sorted order. The top
// levels of the tree share a handful of cache lines and the children of a
// node are adjacent, which makes the layout friendly to prefetching.
//
// A layout is never modified after Build and may be searched from any
// number of goroutines at once.
package eytzinger

import "iter"

// prefetchScale converts the lookahead node index into the slot that is
// prefetched.
const prefetchScale = 4

// Build returns the Eytzinger layout of sorted. The input must be sorted in
// non-decreasing order; this is not checked. The result has the same length
// as the input and is owned by the caller.
func Build[T any](sorted []T) []T {
	if len(sorted) == 0 {
		return []T{}
	}
	out := make([]T, len(sorted))
	next := 0
	place(sorted, out, 0, &next)
	return out
}

// place fills the subtree rooted at k in-order, consuming source values
// from *next. The recursion depth is the tree height, O(log n).
func place[T any](source, dest []T, k int, next *int) {
	if k >= len(dest) {
		return
	}
	place(source, dest, 2*k+1, next)
	dest[k] = source[*next]
	*next++
	place(source, dest, 2*k+2, next)
}

// All walks the layout in order and yields the layout index and value of
// every node, so the values come out sorted.
func All[T any](layout []T) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		walk(layout, 0, yield)
	}
}

func walk[T any](layout []T, k int, yield func(int, T) bool) bool {
	if k >= len(layout) {
		return true
	}
	return walk(layout, 2*k+1, yield) &&
		yield(k, layout[k]) &&
		walk(layout, 2*k+2, yield)
}
