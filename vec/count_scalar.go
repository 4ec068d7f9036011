// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package vec

// countLessScalar compares all 16 lanes and sums the results. There is no
// early exit so the loop has a fixed trip count regardless of the target.
func countLessScalar(b *Block, t int32) int {
	n := 0
	for _, k := range b {
		n += b2i(k < t)
	}
	return n
}

func countLessEqualScalar(b *Block, t int32) int {
	n := 0
	for _, k := range b {
		n += b2i(k <= t)
	}
	return n
}

// b2i compiles to a SETcc.
func b2i(b bool) int {
	var i int
	if b {
		i = 1
	}
	return i
}
