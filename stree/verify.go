// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package stree

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"github.com/flatsearch/flatsearch/vec"
)

var ErrInvalidLayout = errors.New("invalid S-tree layout")

// Verify checks the structural invariants of an S-tree layout: a whole
// number of blocks, keys ascending inside every block, keys ascending in an
// in-order walk (which is what makes every pivot separate its two children),
// every populated slot reached exactly once by that walk, and padding
// confined to less than one block.
func Verify(layout []int32) error {
	if len(layout)%vec.BlockSize != 0 {
		return fmt.Errorf("%w: length %d is not a multiple of %d", ErrInvalidLayout, len(layout), vec.BlockSize)
	}

	populated := 0
	for off := 0; off < len(layout); off += vec.BlockSize {
		block := vec.BlockAt(layout, off)
		for i := range block {
			if block[i] != vec.Sentinel {
				populated++
			}
			if i > 0 && block[i] < block[i-1] {
				return fmt.Errorf("%w: block %d not sorted at slot %d (%d < %d)",
					ErrInvalidLayout, off/vec.BlockSize, i, block[i], block[i-1])
			}
		}
	}
	if padding := len(layout) - populated; padding >= vec.BlockSize {
		return fmt.Errorf("%w: %d padding slots", ErrInvalidLayout, padding)
	}

	visited := roaring.New()
	var (
		prev    int32
		prevIdx = -1
		err     error
	)
	for idx, k := range All(layout) {
		if !visited.CheckedAdd(uint32(idx)) {
			err = fmt.Errorf("%w: slot %d reached twice", ErrInvalidLayout, idx)
			break
		}
		if prevIdx >= 0 && k < prev {
			err = fmt.Errorf("%w: slot %d (%d) sorts after slot %d (%d)", ErrInvalidLayout, idx, k, prevIdx, prev)
			break
		}
		prev, prevIdx = k, idx
	}
	if err != nil {
		return err
	}
	if got := int(visited.GetCardinality()); got != populated {
		return fmt.Errorf("%w: walk reached %d of %d keys", ErrInvalidLayout, got, populated)
	}
	return nil
}
