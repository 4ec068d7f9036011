// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"fmt"
	"slices"
	"time"
)

const (
	LayoutSorted              = "sorted"
	LayoutEytzinger           = "eytzinger"
	LayoutEytzingerPrefetched = "eytzinger-prefetched"
	LayoutEytzingerBranchless = "eytzinger-branchless"
	LayoutSTree               = "stree"
)

// DefaultLayouts are the layouts registered by NewRegistry, in order.
var DefaultLayouts = []string{
	LayoutSorted,
	LayoutEytzinger,
	LayoutEytzingerPrefetched,
	LayoutEytzingerBranchless,
	LayoutSTree,
}

// Factory builds a searcher from sorted keys.
type Factory func(sorted []int32, opts ...Option) (Searcher, error)

// Registry maps layout names to factories. It is not safe for concurrent
// registration, but Build may be called concurrently once set up.
type Registry struct {
	names     []string
	factories map[string]Factory
	metrics   Metrics
	opts      []Option
}

// NewRegistry returns a registry holding DefaultLayouts. The options are
// passed to every factory ahead of the factory's own.
func NewRegistry(metrics Metrics, opts ...Option) *Registry {
	if metrics == nil {
		metrics = &NopMetrics{}
	}
	r := &Registry{
		factories: map[string]Factory{},
		metrics:   metrics,
		opts:      opts,
	}
	r.mustRegister(LayoutSorted, func(sorted []int32, opts ...Option) (Searcher, error) {
		return NewSorted(sorted, opts...)
	})
	for _, v := range []Variant{Branchy, Prefetched, Branchless} {
		name := LayoutEytzinger
		if v != Branchy {
			name += "-" + v.String()
		}
		r.mustRegister(name, func(sorted []int32, opts ...Option) (Searcher, error) {
			return NewEytzinger(sorted, append(slices.Clip(opts), WithVariant(v))...)
		})
	}
	r.mustRegister(LayoutSTree, func(sorted []int32, opts ...Option) (Searcher, error) {
		return NewSTree(sorted, opts...)
	})
	return r
}

func (r *Registry) mustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Register adds a layout. Names must be unique.
func (r *Registry) Register(name string, f Factory) error {
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("layout %q already registered", name)
	}
	r.names = append(r.names, name)
	r.factories[name] = f
	return nil
}

// Select restricts the registry to the named layouts, in the given order.
func (r *Registry) Select(names ...string) error {
	for _, name := range names {
		if _, ok := r.factories[name]; !ok {
			return fmt.Errorf("%w %q, expected one of %v", ErrUnknownLayout, name, r.names)
		}
	}
	r.names = slices.Clone(names)
	return nil
}

// Names returns the enabled layouts.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

func (r *Registry) Metrics() Metrics {
	return r.metrics
}

// Build constructs the named layout from sorted keys.
func (r *Registry) Build(name string, sorted []int32) (Searcher, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownLayout, name)
	}
	t0 := time.Now()
	s, err := f(sorted, r.opts...)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	r.metrics.BuildDuration(name, len(sorted), time.Since(t0))
	return s, nil
}
