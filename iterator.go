// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"iter"
	"slices"
)

// Collect creates a slice of keys out of an in-order traversal.
func Collect(seq iter.Seq2[int, int32]) []int32 {
	return slices.Collect(Values(seq))
}

// Values takes a Seq2 and produces a Seq with the second element of the pair.
func Values[A, B any](seq iter.Seq2[A, B]) iter.Seq[B] {
	return func(yield func(B) bool) {
		for _, x := range seq {
			if !yield(x) {
				break
			}
		}
	}
}

// Indices takes a Seq2 and produces a Seq with the first element of the pair.
func Indices[A, B any](seq iter.Seq2[A, B]) iter.Seq[A] {
	return func(yield func(A) bool) {
		for x := range seq {
			if !yield(x) {
				break
			}
		}
	}
}
