// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/flatsearch/flatsearch/testutils"
)

func TestMain(m *testing.M) {
	// Catch any leaks of goroutines from these tests.
	goleak.VerifyTestMain(m)
}

func buildAll(t testing.TB, keys []int32) []Searcher {
	r := NewRegistry(nil)
	var out []Searcher
	for _, name := range r.Names() {
		s, err := r.Build(name, keys)
		require.NoError(t, err, "Build(%s)", name)
		out = append(out, s)
	}
	return out
}

func TestLowerBoundIndex(t *testing.T) {
	sorted := []int{10, 20, 20, 30}
	assert.Equal(t, 0, LowerBoundIndex(sorted, 5))
	assert.Equal(t, 0, LowerBoundIndex(sorted, 10))
	assert.Equal(t, 1, LowerBoundIndex(sorted, 20))
	assert.Equal(t, 3, LowerBoundIndex(sorted, 25))
	assert.Equal(t, 4, LowerBoundIndex(sorted, 31))
	assert.Equal(t, 0, LowerBoundIndex([]int{}, 1))

	assert.Equal(t, 0, UpperBoundIndex(sorted, 5))
	assert.Equal(t, 1, UpperBoundIndex(sorted, 10))
	assert.Equal(t, 3, UpperBoundIndex(sorted, 20))
	assert.Equal(t, 4, UpperBoundIndex(sorted, 30))
	assert.Equal(t, 0, UpperBoundIndex([]int{}, 1))

	for i := range 1000 {
		keys := testutils.SortedInts(uint64(i), i%50, 100)
		for target := -1; target <= 101; target++ {
			want, _ := slices.BinarySearch(keys, int32(target))
			require.Equal(t, want, LowerBoundIndex(keys, int32(target)))
		}
	}
}

func TestSearchers_Names(t *testing.T) {
	var names []string
	for _, s := range buildAll(t, []int32{1, 2, 3}) {
		names = append(names, s.Name())
	}
	require.Equal(t, DefaultLayouts, names)
}

func TestSearchers_Basic(t *testing.T) {
	keys := []int32{10, 20, 30, 40, 50}
	for _, s := range buildAll(t, keys) {
		t.Run(s.Name(), func(t *testing.T) {
			require.Equal(t, len(keys), s.Len())

			idx, ok := s.LowerBound(25)
			require.True(t, ok)
			require.EqualValues(t, 30, s.At(idx))

			idx, ok = s.LowerBound(30)
			require.True(t, ok)
			require.EqualValues(t, 30, s.At(idx))

			idx, ok = s.UpperBound(30)
			require.True(t, ok)
			require.EqualValues(t, 40, s.At(idx))

			idx, ok = s.LowerBound(math.MinInt32)
			require.True(t, ok)
			require.EqualValues(t, 10, s.At(idx))

			_, ok = s.LowerBound(51)
			require.False(t, ok)
			_, ok = s.UpperBound(50)
			require.False(t, ok)

			require.Equal(t, keys, Collect(s.All()))
		})
	}
}

func TestSearchers_Empty(t *testing.T) {
	for _, s := range buildAll(t, nil) {
		require.Zero(t, s.Len(), s.Name())
		_, ok := s.LowerBound(0)
		require.False(t, ok, s.Name())
		_, ok = s.UpperBound(math.MinInt32)
		require.False(t, ok, s.Name())
		require.Empty(t, Collect(s.All()), s.Name())
	}
}

func TestSearchers_AgreeWithOracle(t *testing.T) {
	sizes := []int{1, 2, 15, 16, 17, 100, 272, 273, 1000, 4913, 10000}
	for _, n := range sizes {
		keys := testutils.SortedInts(uint64(n), n, 1<<20)
		oracle, err := NewSorted(keys)
		require.NoError(t, err)
		targets := append(testutils.Targets(uint64(n)+1, 500, 1<<20), -1, 0, 1<<20, math.MaxInt32)
		for _, s := range buildAll(t, keys) {
			for _, target := range targets {
				if err := CheckQuery(oracle, s, target); err != nil {
					t.Fatalf("n=%d: %s", n, err)
				}
			}
		}
	}
}

func TestSearchers_Duplicates(t *testing.T) {
	keys := testutils.WithDuplicates(7, 3000, 20)
	oracle, err := NewSorted(keys)
	require.NoError(t, err)
	for _, s := range buildAll(t, keys) {
		for target := int32(-1); target <= 21; target++ {
			require.NoError(t, CheckQuery(oracle, s, target))
		}
	}
}

func TestNewSearchers_NotSorted(t *testing.T) {
	keys := []int32{1, 3, 2}
	_, err := NewSorted(keys)
	require.ErrorIs(t, err, ErrNotSorted)
	require.ErrorContains(t, err, "index 2")
	_, err = NewEytzinger(keys)
	require.ErrorIs(t, err, ErrNotSorted)
	_, err = NewSTree(keys)
	require.ErrorIs(t, err, ErrNotSorted)

	_, err = NewRegistry(nil).Build(LayoutSTree, keys)
	require.ErrorIs(t, err, ErrNotSorted)

	// Unchecked builds anyway.
	s, err := NewSTree(keys, Unchecked)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
}

func TestNewSTree_Sentinel(t *testing.T) {
	keys := []int32{1, 2, math.MaxInt32, math.MaxInt32}
	_, err := NewSTree(keys)
	require.ErrorIs(t, err, ErrSentinelKey)
	require.ErrorContains(t, err, "index 2")

	// The other layouts accept the full int32 range.
	e, err := NewEytzinger(keys)
	require.NoError(t, err)
	idx, ok := e.LowerBound(3)
	require.True(t, ok)
	require.EqualValues(t, math.MaxInt32, e.At(idx))
}

func TestEytzinger_Variants(t *testing.T) {
	keys := testutils.SortedInts(1, 777, 5000)
	e, err := NewEytzinger(keys)
	require.NoError(t, err)
	require.Equal(t, Branchless, e.Variant())
	require.Equal(t, LayoutEytzingerBranchless, e.Name())

	for v, name := range map[Variant]string{
		Branchy:    LayoutEytzinger,
		Prefetched: LayoutEytzingerPrefetched,
		Branchless: LayoutEytzingerBranchless,
	} {
		ev, err := NewEytzinger(keys, WithVariant(v))
		require.NoError(t, err)
		require.Equal(t, name, ev.Name())
		require.Equal(t, Fingerprint(e.Layout()), Fingerprint(ev.Layout()), "variants share the layout")
	}

	_, err = NewEytzinger(keys, WithVariant(Variant(42)))
	require.Error(t, err)
}

func TestSTree_Verify(t *testing.T) {
	for _, n := range []int{0, 1, 16, 17, 300, 5000} {
		s, err := NewSTree(testutils.SortedInts(uint64(n), n, 1<<16))
		require.NoError(t, err)
		require.NoError(t, s.Verify(), "n=%d", n)
		require.Zero(t, len(s.Layout())%16)
		require.GreaterOrEqual(t, len(s.Layout()), s.Len())
	}
}

func TestCheckQuery_Mismatch(t *testing.T) {
	keys := []int32{10, 20, 30}
	oracle, err := NewSorted(keys)
	require.NoError(t, err)
	// Searching over different keys is a guaranteed mismatch.
	other, err := NewEytzinger([]int32{10, 21, 30}, WithVariant(Branchy))
	require.NoError(t, err)

	err = CheckQuery(oracle, other, 15)
	var mismatch *MismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, LayoutEytzinger, mismatch.Layout)
	require.Equal(t, Lower, mismatch.Bound)
	require.EqualValues(t, 20, mismatch.Expected)
	require.EqualValues(t, 21, mismatch.Got)
	require.Equal(t, "integrity failure: eytzinger lower bound of 15: expected 20, got 21", err.Error())

	err = CheckQuery(oracle, other, 10)
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, Upper, mismatch.Bound)
	require.NoError(t, CheckQuery(oracle, other, 5))

	empty, err := NewSTree(nil)
	require.NoError(t, err)
	err = CheckQuery(oracle, empty, 5)
	require.EqualError(t, err, "integrity failure: stree lower bound of 5: expected 10, got absent")
}

func TestFingerprint(t *testing.T) {
	keys := testutils.SortedInts(3, 1000, 1<<20)
	a, err := NewSTree(keys)
	require.NoError(t, err)
	b, err := NewSTree(slices.Clone(keys))
	require.NoError(t, err)
	require.Equal(t, Fingerprint(a.Layout()), Fingerprint(b.Layout()))

	layout := slices.Clone(a.Layout())
	layout[0]++
	require.NotEqual(t, Fingerprint(a.Layout()), Fingerprint(layout))
	require.Equal(t, Fingerprint(nil), Fingerprint([]int32{}))
}

