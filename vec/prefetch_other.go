// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

//go:build !(amd64 || arm64) || purego

package vec

import "unsafe"

// Prefetch is a no-op on this platform.
func Prefetch(p unsafe.Pointer) {}
