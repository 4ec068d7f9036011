// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package vec

// PrefetchOffset is how far ahead of the current node the layouts prefetch.
// Tuned on x86, where the lookahead has to cover a deeper miss latency.
const PrefetchOffset = 1 + 8
