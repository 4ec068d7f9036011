// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the layout in native byte order. Equal fingerprints on
// the same machine mean byte-identical layouts.
func Fingerprint(layout []int32) uint64 {
	if len(layout) == 0 {
		return xxhash.Sum64(nil)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(layout))), len(layout)*4)
	return xxhash.Sum64(b)
}
