// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package harness

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/cilium/stream"
	"gonum.org/v1/gonum/stat"

	"github.com/flatsearch/flatsearch"
	"github.com/flatsearch/flatsearch/testutils"
)

// Result is the latency of one layout at one size.
type Result struct {
	Layout  string        `yaml:"layout"`
	Keys    int           `yaml:"keys"`
	Queries int           `yaml:"queries"`
	Rounds  int           `yaml:"rounds"`
	Build   time.Duration `yaml:"build"`

	// Nanoseconds per lower bound query over the rounds.
	NsPerOp float64 `yaml:"nsPerOp"`
	StdDev  float64 `yaml:"stdDev"`
	P50     float64 `yaml:"p50"`

	// Sum of the returned indices. Only comparable between runs of the
	// same layout.
	Checksum uint64 `yaml:"checksum"`
}

// MiB is the size of the keys in mebibytes.
func (r Result) MiB() float64 {
	return float64(r.Keys*4) / 1024 / 1024
}

// Sweep times lower bound queries for every layout and size of the plan.
// Results are emitted as soon as they are measured. The sweep runs in its
// own goroutine once observed and stops when the context is cancelled.
func (h *Harness) Sweep(plan Plan) stream.Observable[Result] {
	return stream.FuncObservable[Result](
		func(ctx context.Context, next func(Result), complete func(error)) {
			go func() {
				complete(h.sweep(ctx, plan, next))
			}()
		})
}

func (h *Harness) sweep(ctx context.Context, plan Plan, next func(Result)) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	plan = plan.withDefaults(h)

	targets := testutils.Targets(h.querySeed(), plan.Queries, math.MaxInt32)
	for _, n := range plan.Sizes {
		h.log.Info("Generating benchmark data",
			"keys", n,
			"queries", plan.Queries)
		t0 := time.Now()
		keys := testutils.SortedInts(h.dataSeed(), n, math.MaxInt32)
		h.log.Debug("Generated benchmark data", "duration", time.Since(t0))

		for _, name := range plan.Layouts {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := h.benchLayout(ctx, name, keys, targets, plan.Rounds)
			if err != nil {
				return err
			}
			h.registry.Metrics().QueryLatency(name, n, res.NsPerOp)
			h.log.Info("Benchmarked layout",
				"layout", name,
				"keys", n,
				"nsPerOp", res.NsPerOp)
			next(res)
		}
	}
	return nil
}

func (h *Harness) benchLayout(ctx context.Context, name string, keys, targets []int32, rounds int) (Result, error) {
	res := Result{
		Layout:  name,
		Keys:    len(keys),
		Queries: len(targets),
		Rounds:  rounds,
	}
	t0 := time.Now()
	s, err := h.registry.Build(name, keys)
	if err != nil {
		return res, err
	}
	res.Build = time.Since(t0)

	samples := make([]float64, 0, rounds)
	for range rounds {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		start := time.Now()
		res.Checksum += lowerBoundSum(s, targets)
		elapsed := time.Since(start)
		if len(targets) > 0 {
			samples = append(samples, float64(elapsed.Nanoseconds())/float64(len(targets)))
		}
	}
	res.NsPerOp, res.StdDev, res.P50 = summarize(samples)
	return res, nil
}

// lowerBoundSum sums the returned indices so the queries are not elided.
func lowerBoundSum(s flatsearch.Searcher, targets []int32) (sum uint64) {
	for _, t := range targets {
		if idx, ok := s.LowerBound(t); ok {
			sum += uint64(idx)
		}
	}
	return
}

func summarize(samples []float64) (mean, stddev, p50 float64) {
	if len(samples) == 0 {
		return 0, 0, 0
	}
	mean = stat.Mean(samples, nil)
	if len(samples) > 1 {
		stddev = stat.StdDev(samples, nil)
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	p50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	return
}
