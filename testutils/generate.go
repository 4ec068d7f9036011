// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

// Package testutils generates deterministic key sets and query streams for
// tests and for the searchbench harness.
package testutils

import (
	"math/rand/v2"
	"slices"
)

// pcgStream is the second PCG word. Fixed so that a seed alone names a
// data set.
const pcgStream = 0x9e3779b97f4a7c15

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, pcgStream))
}

// SortedInts returns n keys drawn uniformly from [0, hi), sorted ascending.
// Duplicates are possible.
func SortedInts(seed uint64, n int, hi int32) []int32 {
	keys := Targets(seed, n, hi)
	slices.Sort(keys)
	return keys
}

// Targets returns q query keys drawn uniformly from [0, hi).
func Targets(seed uint64, q int, hi int32) []int32 {
	rng := newRand(seed)
	out := make([]int32, q)
	for i := range out {
		out[i] = rng.Int32N(hi)
	}
	return out
}

// WithDuplicates returns n sorted keys drawn from only distinct different
// values, so long runs of equal keys are common.
func WithDuplicates(seed uint64, n, distinct int) []int32 {
	return SortedInts(seed, n, int32(max(distinct, 1)))
}
