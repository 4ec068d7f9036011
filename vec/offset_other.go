// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

//go:build !amd64

package vec

// PrefetchOffset is how far ahead of the current node the layouts prefetch.
const PrefetchOffset = 1
