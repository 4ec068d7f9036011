// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package harness

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/pool"
	"golang.org/x/time/rate"

	"github.com/flatsearch/flatsearch"
	"github.com/flatsearch/flatsearch/testutils"
)

// Targets per pool task. Cancellation is checked between chunks.
const verifyChunk = 1024

type VerifyResult struct {
	Keys    int
	Queries int
	Layouts []LayoutCheck
}

// LayoutCheck describes a layout that passed the integrity check.
type LayoutCheck struct {
	Layout      string
	Fingerprint uint64
	Build       time.Duration
}

// Verify builds every enabled layout from random keys and checks the lower
// and upper bound of random targets against binary search.
func (h *Harness) Verify(ctx context.Context) (VerifyResult, error) {
	keys := testutils.SortedInts(h.dataSeed(), h.cfg.VerifySize, math.MaxInt32)
	targets := testutils.Targets(h.querySeed(), h.cfg.Queries, math.MaxInt32)
	return h.VerifyKeys(ctx, keys, targets)
}

// VerifyKeys is Verify with caller supplied keys and targets. The keys must
// be sorted.
func (h *Harness) VerifyKeys(ctx context.Context, keys, targets []int32) (VerifyResult, error) {
	result := VerifyResult{Keys: len(keys), Queries: len(targets)}
	oracle, err := flatsearch.NewSorted(keys)
	if err != nil {
		return result, err
	}

	var searchers []flatsearch.Searcher
	for _, name := range h.registry.Names() {
		s, check, err := h.buildTwice(name, keys)
		if err != nil {
			return result, err
		}
		searchers = append(searchers, s)
		result.Layouts = append(result.Layouts, check)
	}

	var (
		metrics  = h.registry.Metrics()
		done     atomic.Int64
		progress = rate.Sometimes{Interval: h.cfg.ProgressInterval}
	)
	p := pool.New().
		WithMaxGoroutines(h.workers()).
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError()
	for chunk := range slices.Chunk(targets, verifyChunk) {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, target := range chunk {
				for _, s := range searchers {
					if err := flatsearch.CheckQuery(oracle, s, target); err != nil {
						metrics.Mismatch(s.Name())
						return err
					}
				}
			}
			n := done.Add(int64(len(chunk)))
			progress.Do(func() {
				h.log.Info("Verifying queries", "done", n, "total", len(targets))
			})
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return result, err
	}

	for _, s := range searchers {
		metrics.QueriesVerified(s.Name(), len(targets))
	}
	h.log.Info("Integrity check passed",
		"keys", len(keys),
		"queries", len(targets),
		"layouts", h.registry.Names())
	return result, nil
}

// buildTwice builds the layout twice and requires identical results.
func (h *Harness) buildTwice(name string, keys []int32) (flatsearch.Searcher, LayoutCheck, error) {
	check := LayoutCheck{Layout: name}
	t0 := time.Now()
	s, err := h.registry.Build(name, keys)
	if err != nil {
		return nil, check, err
	}
	check.Build = time.Since(t0)
	again, err := h.registry.Build(name, keys)
	if err != nil {
		return nil, check, err
	}
	check.Fingerprint = flatsearch.Fingerprint(s.Layout())
	if fp := flatsearch.Fingerprint(again.Layout()); fp != check.Fingerprint {
		return nil, check, fmt.Errorf("%s: rebuilding from the same keys changed the layout (%x != %x)",
			name, check.Fingerprint, fp)
	}
	if v, ok := s.(interface{ Verify() error }); ok {
		if err := v.Verify(); err != nil {
			return nil, check, fmt.Errorf("%s: %w", name, err)
		}
	}
	h.log.Debug("Built layout",
		"layout", name,
		"keys", len(keys),
		"duration", check.Build,
		"fingerprint", fmt.Sprintf("%x", check.Fingerprint))
	return s, check, nil
}
