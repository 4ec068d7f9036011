// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSorted is returned when building from keys that are not in
	// non-decreasing order.
	ErrNotSorted = errors.New("keys not sorted")

	// ErrSentinelKey is returned when building an S-tree from keys that
	// contain the padding sentinel math.MaxInt32.
	ErrSentinelKey = errors.New("key equals the S-tree sentinel")

	// ErrUnknownLayout is returned for a layout name that is not registered.
	ErrUnknownLayout = errors.New("unknown layout")
)

// Bound names the kind of query.
type Bound string

const (
	Lower Bound = "lower"
	Upper Bound = "upper"
)

// MismatchError reports a query on which a layout disagreed with binary
// search over the sorted keys.
type MismatchError struct {
	Layout string
	Bound  Bound
	Target int32

	Expected, Got     int32
	ExpectedOK, GotOK bool
}

func showResult(v int32, ok bool) string {
	if !ok {
		return "absent"
	}
	return fmt.Sprintf("%d", v)
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("integrity failure: %s %s bound of %d: expected %s, got %s",
		e.Layout, e.Bound, e.Target,
		showResult(e.Expected, e.ExpectedOK), showResult(e.Got, e.GotOK))
}

// CheckQuery compares the lower and upper bound answers of s for target
// against oracle by value, since the two layouts index different arrays.
func CheckQuery(oracle *Sorted, s Searcher, target int32) error {
	for _, b := range []Bound{Lower, Upper} {
		exp, expOK := valueOf(oracle, b, target)
		got, gotOK := valueOf(s, b, target)
		if exp != got || expOK != gotOK {
			return &MismatchError{
				Layout:     s.Name(),
				Bound:      b,
				Target:     target,
				Expected:   exp,
				ExpectedOK: expOK,
				Got:        got,
				GotOK:      gotOK,
			}
		}
	}
	return nil
}

func valueOf(s Searcher, b Bound, target int32) (int32, bool) {
	var (
		idx int
		ok  bool
	)
	switch b {
	case Lower:
		idx, ok = s.LowerBound(target)
	case Upper:
		idx, ok = s.UpperBound(target)
	default:
		panic(fmt.Sprintf("unknown bound %q", string(b)))
	}
	if !ok {
		return 0, false
	}
	return s.At(idx), true
}
