// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package eytzinger

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func BenchmarkLowerBound(b *testing.B) {
	rng := rand.New(rand.NewPCG(222, 22))
	data := make([]int32, 1<<20)
	for i := range data {
		data[i] = rng.Int32N(1 << 30)
	}
	slices.Sort(data)
	layout := Build(data)
	targets := make([]int32, 4096)
	for i := range targets {
		targets[i] = rng.Int32N(1 << 30)
	}

	for name, lb := range lowerBounds {
		b.Run(name, func(b *testing.B) {
			sum := 0
			for i := 0; i < b.N; i++ {
				idx, _ := lb(layout, targets[i%len(targets)])
				sum += idx
			}
			b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "queries/sec")
			_ = sum
		})
	}
}
