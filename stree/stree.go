// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package stree implements the S-tree layout: a static 17-ary B-tree whose
// nodes are 16-key blocks, one cache line each, stored in a flat array.
//
// Block idx holds keys [idx*16, idx*16+16) and child i (0..16) of block idx
// is block idx*17+i+1, so no child pointers are stored. Keys inside a block
// are ascending. Keys of child i sort before pivot i and keys of child i+1
// sort at or after it. The layout is padded to a whole number of blocks with
// vec.Sentinel, which is why the key math.MaxInt32 cannot be stored.
//
// A layout is never modified after Build and may be searched from any
// number of goroutines at once.
package stree

import (
	"iter"

	"github.com/flatsearch/flatsearch/vec"
)

// fanout is the number of children of an internal block.
const fanout = vec.BlockSize + 1

// PaddedLen returns the length of the S-tree layout of n keys.
func PaddedLen(n int) int {
	if rem := n % vec.BlockSize; rem != 0 {
		return n + vec.BlockSize - rem
	}
	return n
}

// distributeChildSizes splits the n keys of a subtree into the sizes of up
// to 17 child subtrees. The block itself keeps 16 keys as pivots. The rest is
// handed out level by level: on level L every child, left to right, takes up
// to 16*17^(L-1) keys until nothing is left. This keeps every subtree but the
// rightmost populated one complete, so the populated blocks are exactly
// [0, PaddedLen(n)/16).
func distributeChildSizes(n int) (sizes [fanout]int) {
	if n <= vec.BlockSize {
		return
	}
	n -= vec.BlockSize

	for capacity := vec.BlockSize; n > 0; capacity *= fanout {
		for i := range sizes {
			if n == 0 {
				break
			}
			take := min(n, capacity)
			sizes[i] += take
			n -= take
		}
	}
	return
}

// Build returns the S-tree layout of sorted. The input must be sorted in
// non-decreasing order and must not contain vec.Sentinel; neither is
// checked here. The result is padded with vec.Sentinel to a multiple of 16
// and is owned by the caller.
func Build(sorted []int32) []int32 {
	if len(sorted) == 0 {
		return []int32{}
	}
	out := make([]int32, PaddedLen(len(sorted)))
	for i := range out {
		out[i] = vec.Sentinel
	}
	place(sorted, out, 0)
	return out
}

// place lays out source as the subtree rooted at block idx.
func place(source, dest []int32, idx int) {
	n := len(source)
	if n == 0 {
		return
	}
	base := idx * vec.BlockSize
	if n <= vec.BlockSize {
		// Leaf. Unused trailing slots keep the sentinel.
		copy(dest[base:base+n], source)
		return
	}

	sizes := distributeChildSizes(n)

	// Each pivot follows the keys of the child to its left.
	cur := 0
	for i := 0; i < vec.BlockSize; i++ {
		cur += sizes[i]
		dest[base+i] = source[cur]
		cur++
	}

	start := 0
	for i, size := range sizes {
		if size > 0 {
			child := idx*fanout + i + 1
			if child*vec.BlockSize < len(dest) {
				place(source[start:start+size], dest, child)
			}
		}
		start += size + 1
	}
}

// All walks the layout in order and yields the layout index and key of
// every populated slot, so the keys come out sorted. Padding is skipped.
func All(layout []int32) iter.Seq2[int, int32] {
	return func(yield func(int, int32) bool) {
		walk(layout, 0, yield)
	}
}

func walk(layout []int32, idx int, yield func(int, int32) bool) bool {
	base := idx * vec.BlockSize
	if base >= len(layout) {
		return true
	}
	for i := 0; i < vec.BlockSize; i++ {
		if !walk(layout, idx*fanout+i+1, yield) {
			return false
		}
		if k := layout[base+i]; k != vec.Sentinel && !yield(base+i, k) {
			return false
		}
	}
	return walk(layout, idx*fanout+fanout, yield)
}
