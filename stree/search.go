// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package stree

import (
	"github.com/flatsearch/flatsearch/vec"
)

// LowerBound returns the layout index of the first key >= target in sorted
// order, or false if every key is smaller. The layout must come from Build.
func LowerBound(layout []int32, target int32) (int, bool) {
	return descend(layout, target, vec.CountLess)
}

// UpperBound returns the layout index of the first key > target in sorted
// order, or false if no key is larger. The layout must come from Build.
func UpperBound(layout []int32, target int32) (int, bool) {
	return descend(layout, target, vec.CountLessEqual)
}

// descend walks from the root block to a leaf. In every block, rank counts
// the keys that sort before the answer: that count is both the slot of the
// first candidate key in the block and the child to continue in.
func descend(layout []int32, target int32, rank func(*vec.Block, int32) int) (int, bool) {
	res, found := 0, false
	for cur := 0; cur*vec.BlockSize < len(layout); {
		off := cur * vec.BlockSize
		vec.PrefetchAt(layout, (fanout*cur+vec.PrefetchOffset)*vec.BlockSize)

		block := vec.BlockAt(layout, off)
		i := rank(block, target)
		if i < vec.BlockSize && block[i] != vec.Sentinel {
			res, found = off+i, true
		}
		cur = cur*fanout + i + 1
	}
	return res, found
}
