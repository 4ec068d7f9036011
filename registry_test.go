// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Select(t *testing.T) {
	r := NewRegistry(nil)
	require.Equal(t, DefaultLayouts, r.Names())

	require.NoError(t, r.Select(LayoutSTree, LayoutSorted))
	require.Equal(t, []string{LayoutSTree, LayoutSorted}, r.Names())

	err := r.Select("btree")
	require.ErrorIs(t, err, ErrUnknownLayout)
	require.Equal(t, []string{LayoutSTree, LayoutSorted}, r.Names(), "failed Select leaves names alone")

	// Deselected layouts can still be built by name.
	s, err := r.Build(LayoutEytzinger, []int32{1})
	require.NoError(t, err)
	require.Equal(t, LayoutEytzinger, s.Name())

	_, err = r.Build("btree", nil)
	require.ErrorIs(t, err, ErrUnknownLayout)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Register(LayoutSTree, nil)
	require.ErrorContains(t, err, "already registered")

	require.NoError(t, r.Register("sorted-unchecked", func(sorted []int32, opts ...Option) (Searcher, error) {
		return NewSorted(sorted, append(opts, Unchecked)...)
	}))
	require.Equal(t, "sorted-unchecked", r.Names()[len(r.Names())-1])
	_, err = r.Build("sorted-unchecked", []int32{3, 2, 1})
	require.NoError(t, err)
}

func TestRegistry_Options(t *testing.T) {
	r := NewRegistry(nil, Unchecked)
	for _, name := range r.Names() {
		_, err := r.Build(name, []int32{3, 1})
		require.NoError(t, err, name)
	}
}

func TestRegistry_Metrics(t *testing.T) {
	m := NewExpVarMetrics(false)
	r := NewRegistry(m)
	require.Same(t, m, r.Metrics())

	_, err := r.Build(LayoutSTree, []int32{1, 2, 3})
	require.NoError(t, err)
	_, err = r.Build(LayoutSTree, []int32{3, 2, 1})
	require.Error(t, err)

	out := m.String()
	require.Contains(t, out, "build_duration[stree/3]")
	require.Equal(t, 1, strings.Count(out, "build_duration["), "failed builds are not recorded")
}

func TestExpVarMetrics(t *testing.T) {
	m := NewExpVarMetrics(false)
	m.QueryLatency(LayoutSorted, 100, 12.5)
	m.QueriesVerified(LayoutSorted, 10)
	m.QueriesVerified(LayoutSorted, 5)
	m.Mismatch(LayoutSTree)

	out := m.String()
	require.Contains(t, out, "query_latency[sorted/100]: 12.5\n")
	require.Contains(t, out, "queries_verified[sorted]: 15\n")
	require.Contains(t, out, "mismatch[stree]: 1\n")
}
