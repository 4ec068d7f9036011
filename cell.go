// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package flatsearch

import (
	"log/slog"

	"github.com/cilium/hive/cell"
	"github.com/spf13/pflag"
)

// Cell provides the layout *Registry, restricted to the configured layouts.
// A Metrics implementation may be provided from outside, otherwise an
// unpublished ExpVarMetrics is used and is reachable via Registry.Metrics.
var Cell = cell.Module(
	"flatsearch",
	"Cache-efficient static search layouts",

	cell.Config(defaultConfig),
	cell.Provide(
		newHiveRegistry,
	),
)

type Config struct {
	// Layouts to build, in order.
	Layouts []string

	// Unchecked skips input validation when building.
	Unchecked bool
}

var defaultConfig = Config{
	Layouts:   DefaultLayouts,
	Unchecked: false,
}

func (def Config) Flags(flags *pflag.FlagSet) {
	flags.StringSlice("layouts", def.Layouts, "Search layouts to build, in order")
	flags.Bool("unchecked", def.Unchecked, "Skip sortedness and sentinel checks when building layouts")
}

type params struct {
	cell.In

	Config  Config
	Log     *slog.Logger
	Metrics Metrics `optional:"true"`
}

func newHiveRegistry(p params) (*Registry, error) {
	if p.Metrics == nil {
		p.Metrics = NewExpVarMetrics(false)
	}
	var opts []Option
	if p.Config.Unchecked {
		opts = append(opts, Unchecked)
		p.Log.Warn("Building layouts without input validation")
	}
	r := NewRegistry(p.Metrics, opts...)
	if err := r.Select(p.Config.Layouts...); err != nil {
		return nil, err
	}
	p.Log.Debug("Layouts enabled", "layouts", p.Config.Layouts)
	return r, nil
}
