// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

//go:build amd64 && !purego && !goexperiment.simd

package vec

import "golang.org/x/sys/cpu"

var hasAVX2 = cpu.X86.HasAVX2 && cpu.X86.HasPOPCNT

// countGreaterAVX2 returns the number of keys in b that are > t.
//
//go:noescape
func countGreaterAVX2(b *Block, t int32) int

// countLessAVX2 returns the number of keys in b that are < t.
//
//go:noescape
func countLessAVX2(b *Block, t int32) int

func countLess(b *Block, t int32) int {
	if hasAVX2 {
		return countLessAVX2(b, t)
	}
	return countLessScalar(b, t)
}

func countLessEqual(b *Block, t int32) int {
	if hasAVX2 {
		return BlockSize - countGreaterAVX2(b, t)
	}
	return countLessEqualScalar(b, t)
}

func impl() string {
	if hasAVX2 {
		return "avx2"
	}
	return "scalar"
}
