// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package vec holds the architecture-selected primitives shared by the
// search layouts: a cache-line prefetch hint and a 16-lane signed 32-bit
// comparison reduced to a lane count.
//
// The implementation is picked at build time with build tags:
//
//   - amd64: AVX2 assembly, falling back to the scalar code when the CPU
//     lacks AVX2 or POPCNT (checked once at package initialization).
//   - amd64 with GOEXPERIMENT=simd: simd/archsimd.
//   - everything else, or the "purego" tag: portable scalar code.
//
// All implementations return identical results. The hardware paths are an
// optimization only.
package vec

import (
	"math"
	"unsafe"
)

const (
	// BlockSize is the number of keys in one block. 16 int32 keys fill a
	// 64 byte cache line.
	BlockSize = 16

	// Sentinel marks an unused key slot. It never satisfies a bound query.
	Sentinel = math.MaxInt32
)

// Block is one cache line worth of keys.
type Block = [BlockSize]int32

// BlockAt returns the block starting at off. The caller guarantees that
// off+BlockSize <= len(s); the conversion panics otherwise, so the 16-lane
// window can never read past the end of s.
func BlockAt(s []int32, off int) *Block {
	return (*Block)(s[off : off+BlockSize])
}

// PrefetchAt hints that s[i] will be read soon. Out of range indexes are
// ignored.
func PrefetchAt[T any](s []T, i int) {
	if uint(i) < uint(len(s)) {
		Prefetch(unsafe.Pointer(&s[i]))
	}
}

// CountLess returns the number of keys in the block that are strictly less
// than t.
func CountLess(b *Block, t int32) int {
	return countLess(b, t)
}

// CountLessEqual returns the number of keys in the block that are less than
// or equal to t.
func CountLessEqual(b *Block, t int32) int {
	return countLessEqual(b, t)
}

// Impl returns the name of the compare implementation in use.
func Impl() string {
	return impl()
}
