// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"context"
	"testing"

	"github.com/cilium/hive"
	"github.com/cilium/hive/cell"
	"github.com/cilium/hive/hivetest"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestCell(t *testing.T) {
	var registry *Registry
	h := hive.New(
		Cell,
		cell.Invoke(func(r *Registry) { registry = r }),
	)
	log := hivetest.Logger(t)
	require.NoError(t, h.Start(log, context.TODO()), "Start")
	require.Equal(t, DefaultLayouts, registry.Names())
	require.IsType(t, &ExpVarMetrics{}, registry.Metrics())
	require.NoError(t, h.Stop(log, context.TODO()), "Stop")
}

func TestCell_Config(t *testing.T) {
	metrics := &NopMetrics{}
	var registry *Registry
	h := hive.New(
		Cell,
		cell.Provide(func() Metrics { return metrics }),
		cell.Invoke(func(r *Registry) { registry = r }),
	)
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	h.RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--layouts=stree", "--unchecked"}))
	log := hivetest.Logger(t)
	require.NoError(t, h.Start(log, context.TODO()), "Start")
	require.Equal(t, []string{LayoutSTree}, registry.Names())
	require.Same(t, metrics, registry.Metrics())

	_, err := registry.Build(LayoutSTree, []int32{2, 1})
	require.NoError(t, err, "unchecked build")
	require.NoError(t, h.Stop(log, context.TODO()), "Stop")
}

func TestCell_UnknownLayout(t *testing.T) {
	h := hive.New(
		Cell,
		cell.Invoke(func(*Registry) {}),
	)
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	h.RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--layouts=sorted,btree"}))
	err := h.Start(hivetest.Logger(t), context.TODO())
	require.ErrorContains(t, err, `unknown layout "btree"`)
}
