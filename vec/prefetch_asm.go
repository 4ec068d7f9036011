// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

//go:build (amd64 || arm64) && !purego

package vec

import "unsafe"

// Prefetch issues a non-blocking hint to pull the cache line holding p
// into L1. It never faults, even on invalid addresses.
//
//go:noescape
func Prefetch(p unsafe.Pointer)
