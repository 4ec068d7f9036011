//go:build amd64 && !purego && goexperiment.simd

package vec

import (
	"math/bits"
	"simd/archsimd"
)

var hasAVX2 = archsimd.X86.AVX() && archsimd.X86.AVX2()

func countLess(b *Block, t int32) int {
	if hasAVX2 {
		t8 := archsimd.BroadcastInt32x8(t)
		lo := archsimd.LoadInt32x8((*[8]int32)(b[:8]))
		hi := archsimd.LoadInt32x8((*[8]int32)(b[8:]))
		m := uint16(t8.Greater(lo).ToBits()) | uint16(t8.Greater(hi).ToBits())<<8
		return bits.OnesCount16(m)
	}
	return countLessScalar(b, t)
}

func countLessEqual(b *Block, t int32) int {
	if hasAVX2 {
		t8 := archsimd.BroadcastInt32x8(t)
		lo := archsimd.LoadInt32x8((*[8]int32)(b[:8]))
		hi := archsimd.LoadInt32x8((*[8]int32)(b[8:]))
		m := uint16(lo.Greater(t8).ToBits()) | uint16(hi.Greater(t8).ToBits())<<8
		return BlockSize - bits.OnesCount16(m)
	}
	return countLessEqualScalar(b, t)
}

func impl() string {
	if hasAVX2 {
		return "archsimd"
	}
	return "scalar"
}
