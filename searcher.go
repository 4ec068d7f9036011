// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"cmp"
	"fmt"
	"iter"

	"github.com/flatsearch/flatsearch/eytzinger"
	"github.com/flatsearch/flatsearch/stree"
	"github.com/flatsearch/flatsearch/vec"
)

// Searcher answers bound queries over a static set of keys.
//
// The index returned by LowerBound and UpperBound refers to the searcher's
// own layout and is only meaningful when passed back to At of the same
// searcher. A Searcher is immutable once built: any number of goroutines may
// query it at the same time without synchronization.
type Searcher interface {
	// Name of the layout, e.g. "stree".
	Name() string

	// Len is the number of keys. The layout may be longer due to padding.
	Len() int

	// Layout returns the underlying array. It must not be modified.
	Layout() []int32

	// At returns the key at layout index i.
	At(i int) int32

	// LowerBound returns the index of the first key >= target, or false
	// if there is none.
	LowerBound(target int32) (int, bool)

	// UpperBound returns the index of the first key > target, or false
	// if there is none.
	UpperBound(target int32) (int, bool)

	// All yields the layout index and key of every key in sorted order.
	All() iter.Seq2[int, int32]
}

var (
	_ Searcher = &Sorted{}
	_ Searcher = &Eytzinger{}
	_ Searcher = &STree{}
)

// Variant selects the Eytzinger traversal.
type Variant int

const (
	// Branchless prefetches and computes the descent direction without a
	// conditional branch.
	Branchless Variant = iota
	// Prefetched prefetches and branches on the comparison.
	Prefetched
	// Branchy is the textbook descent.
	Branchy
)

func (v Variant) String() string {
	switch v {
	case Branchless:
		return "branchless"
	case Prefetched:
		return "prefetched"
	case Branchy:
		return "branchy"
	default:
		panic(fmt.Sprintf("unknown variant %d", int(v)))
	}
}

type options struct {
	variant   Variant
	unchecked bool
}

type Option func(*options)

// WithVariant selects the Eytzinger traversal. Ignored by other layouts.
func WithVariant(v Variant) Option {
	return func(o *options) { o.variant = v }
}

// Unchecked skips validating the input keys. Building from unsorted keys,
// or an S-tree from keys containing math.MaxInt32, then yields a layout
// that answers queries incorrectly.
func Unchecked(o *options) { o.unchecked = true }

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func checkSorted(keys []int32) error {
	for i := 1; i < len(keys); i++ {
		if keys[i] < keys[i-1] {
			return fmt.Errorf("%w: key %d at index %d is less than its predecessor %d",
				ErrNotSorted, keys[i], i, keys[i-1])
		}
	}
	return nil
}

// LowerBoundIndex returns the position of the first element of sorted that
// is >= target, or len(sorted) if there is none.
func LowerBoundIndex[T cmp.Ordered](sorted []T, target T) int {
	left, right := -1, len(sorted)
	for right > left+1 {
		mid := left + (right-left)/2
		if sorted[mid] >= target {
			right = mid
		} else {
			left = mid
		}
	}
	return right
}

// UpperBoundIndex returns the position of the first element of sorted that
// is > target, or len(sorted) if there is none.
func UpperBoundIndex[T cmp.Ordered](sorted []T, target T) int {
	left, right := -1, len(sorted)
	for right > left+1 {
		mid := left + (right-left)/2
		if sorted[mid] > target {
			right = mid
		} else {
			left = mid
		}
	}
	return right
}

// Sorted is plain binary search over the sorted keys. It is the reference
// the other layouts are checked against.
type Sorted struct {
	keys []int32
}

// NewSorted wraps keys without copying them. The caller must not modify keys
// afterwards.
func NewSorted(keys []int32, opts ...Option) (*Sorted, error) {
	if o := buildOptions(opts); !o.unchecked {
		if err := checkSorted(keys); err != nil {
			return nil, err
		}
	}
	return &Sorted{keys: keys}, nil
}

func (s *Sorted) Name() string    { return LayoutSorted }
func (s *Sorted) Len() int        { return len(s.keys) }
func (s *Sorted) Layout() []int32 { return s.keys }
func (s *Sorted) At(i int) int32  { return s.keys[i] }

func (s *Sorted) LowerBound(target int32) (int, bool) {
	idx := LowerBoundIndex(s.keys, target)
	return idx, idx < len(s.keys)
}

func (s *Sorted) UpperBound(target int32) (int, bool) {
	idx := UpperBoundIndex(s.keys, target)
	return idx, idx < len(s.keys)
}

func (s *Sorted) All() iter.Seq2[int, int32] {
	return func(yield func(int, int32) bool) {
		for i, k := range s.keys {
			if !yield(i, k) {
				return
			}
		}
	}
}

type boundFunc func(layout []int32, target int32) (int, bool)

// Eytzinger searches the Eytzinger layout of the keys.
type Eytzinger struct {
	layout  []int32
	variant Variant
	lower   boundFunc
	upper   boundFunc
}

// NewEytzinger builds the Eytzinger layout of keys. The keys are copied.
func NewEytzinger(keys []int32, opts ...Option) (*Eytzinger, error) {
	o := buildOptions(opts)
	if !o.unchecked {
		if err := checkSorted(keys); err != nil {
			return nil, err
		}
	}
	e := &Eytzinger{
		layout:  eytzinger.Build(keys),
		variant: o.variant,
	}
	switch o.variant {
	case Branchless:
		e.lower, e.upper = eytzinger.LowerBoundBranchless[int32], eytzinger.UpperBoundBranchless[int32]
	case Prefetched:
		e.lower, e.upper = eytzinger.LowerBoundPrefetched[int32], eytzinger.UpperBoundPrefetched[int32]
	case Branchy:
		e.lower, e.upper = eytzinger.LowerBound[int32], eytzinger.UpperBound[int32]
	default:
		return nil, fmt.Errorf("unknown variant %d", int(o.variant))
	}
	return e, nil
}

func (e *Eytzinger) Name() string {
	if e.variant == Branchy {
		return LayoutEytzinger
	}
	return LayoutEytzinger + "-" + e.variant.String()
}

func (e *Eytzinger) Variant() Variant { return e.variant }
func (e *Eytzinger) Len() int         { return len(e.layout) }
func (e *Eytzinger) Layout() []int32  { return e.layout }
func (e *Eytzinger) At(i int) int32   { return e.layout[i] }

func (e *Eytzinger) LowerBound(target int32) (int, bool) {
	return e.lower(e.layout, target)
}

func (e *Eytzinger) UpperBound(target int32) (int, bool) {
	return e.upper(e.layout, target)
}

func (e *Eytzinger) All() iter.Seq2[int, int32] {
	return eytzinger.All(e.layout)
}

// STree searches the S-tree layout of the keys.
type STree struct {
	layout []int32
	n      int
}

// NewSTree builds the S-tree layout of keys. The keys are copied.
// math.MaxInt32 is reserved for padding and is rejected with
// ErrSentinelKey.
func NewSTree(keys []int32, opts ...Option) (*STree, error) {
	if o := buildOptions(opts); !o.unchecked {
		if err := checkSorted(keys); err != nil {
			return nil, err
		}
		// Sorted, so only the tail can hold the sentinel.
		if n := len(keys); n > 0 && keys[n-1] == vec.Sentinel {
			return nil, fmt.Errorf("%w: key at index %d", ErrSentinelKey, LowerBoundIndex(keys, vec.Sentinel))
		}
	}
	return &STree{layout: stree.Build(keys), n: len(keys)}, nil
}

func (s *STree) Name() string    { return LayoutSTree }
func (s *STree) Len() int        { return s.n }
func (s *STree) Layout() []int32 { return s.layout }
func (s *STree) At(i int) int32  { return s.layout[i] }

func (s *STree) LowerBound(target int32) (int, bool) {
	return stree.LowerBound(s.layout, target)
}

func (s *STree) UpperBound(target int32) (int, bool) {
	return stree.UpperBound(s.layout, target)
}

func (s *STree) All() iter.Seq2[int, int32] {
	return stree.All(s.layout)
}

// Verify checks the structural invariants of the layout.
func (s *STree) Verify() error {
	return stree.Verify(s.layout)
}
