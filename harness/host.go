// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package harness

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"

	"github.com/flatsearch/flatsearch/vec"
)

// HostInfo describes the machine the layouts were measured on.
type HostInfo struct {
	CPU            string `yaml:"cpu"`
	Arch           string `yaml:"arch"`
	LogicalCores   int    `yaml:"logicalCores"`
	CacheLine      int    `yaml:"cacheLine"`
	L1D            int    `yaml:"l1d"`
	L2             int    `yaml:"l2"`
	L3             int    `yaml:"l3"`
	AVX2           bool   `yaml:"avx2"`
	BlockCompare   string `yaml:"blockCompare"`
	PrefetchOffset int    `yaml:"prefetchOffset"`
}

func Host() HostInfo {
	return HostInfo{
		CPU:            cpuid.CPU.BrandName,
		Arch:           runtime.GOARCH,
		LogicalCores:   cpuid.CPU.LogicalCores,
		CacheLine:      cpuid.CPU.CacheLine,
		L1D:            cpuid.CPU.Cache.L1D,
		L2:             cpuid.CPU.Cache.L2,
		L3:             cpuid.CPU.Cache.L3,
		AVX2:           cpuid.CPU.Supports(cpuid.AVX2),
		BlockCompare:   vec.Impl(),
		PrefetchOffset: vec.PrefetchOffset,
	}
}
