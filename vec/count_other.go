// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

//go:build !amd64 || purego

package vec

func countLess(b *Block, t int32) int {
	return countLessScalar(b, t)
}

func countLessEqual(b *Block, t int32) int {
	return countLessEqualScalar(b, t)
}

func impl() string {
	return "scalar"
}
