// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package harness

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cilium/hive"
	"github.com/cilium/hive/script"
	"github.com/cilium/stream"
	"github.com/liggitt/tabwriter"
	"github.com/spf13/pflag"
)

func output(out string) script.WaitFunc {
	return func(*script.State) (stdout, stderr string, err error) {
		return out, "", nil
	}
}

func parseKeys(args []string) ([]int32, error) {
	keys := make([]int32, 0, len(args))
	for _, arg := range args {
		for _, field := range strings.Split(arg, ",") {
			if field == "" {
				continue
			}
			k, err := strconv.ParseInt(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("bad key %q: %w", field, err)
			}
			keys = append(keys, int32(k))
		}
	}
	return keys, nil
}

func layoutsCommand(h *Harness) hive.ScriptCmdOut {
	return hive.NewScriptCmd(
		"search/layouts",
		script.Command(
			script.CmdUsage{Summary: "List the enabled search layouts"},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				var b strings.Builder
				for _, name := range h.registry.Names() {
					fmt.Fprintln(&b, name)
				}
				return output(b.String()), nil
			}),
	)
}

func queryCommand(h *Harness) hive.ScriptCmdOut {
	return hive.NewScriptCmd(
		"search/query",
		script.Command(
			script.CmdUsage{
				Summary: "Build a layout from the given keys and show the bounds of a target",
				Args:    "layout target keys...",
			},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				if len(args) < 2 {
					return nil, script.ErrUsage
				}
				target, err := strconv.ParseInt(args[1], 10, 32)
				if err != nil {
					return nil, fmt.Errorf("bad target %q: %w", args[1], err)
				}
				keys, err := parseKeys(args[2:])
				if err != nil {
					return nil, err
				}
				searcher, err := h.registry.Build(args[0], keys)
				if err != nil {
					return nil, err
				}
				show := func(idx int, ok bool) string {
					if !ok {
						return "none"
					}
					return fmt.Sprintf("%d@%d", searcher.At(idx), idx)
				}
				var b strings.Builder
				fmt.Fprintf(&b, "lower %s\n", show(searcher.LowerBound(int32(target))))
				fmt.Fprintf(&b, "upper %s\n", show(searcher.UpperBound(int32(target))))
				return output(b.String()), nil
			}),
	)
}

func verifyCommand(h *Harness) hive.ScriptCmdOut {
	return hive.NewScriptCmd(
		"search/verify",
		script.Command(
			script.CmdUsage{
				Summary: "Check every enabled layout against binary search",
				Args:    "[keys...]",
				Detail: []string{
					"Without arguments random keys and queries are generated from the",
					"configured seed. With keys, every key and its neighbours are queried.",
				},
			},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				var (
					res VerifyResult
					err error
				)
				if len(args) == 0 {
					res, err = h.Verify(s.Context())
				} else {
					var keys []int32
					keys, err = parseKeys(args)
					if err != nil {
						return nil, err
					}
					targets := make([]int32, 0, 3*len(keys))
					for _, k := range keys {
						targets = append(targets, k-1, k, k+1)
					}
					res, err = h.VerifyKeys(s.Context(), keys, targets)
				}
				if err != nil {
					return nil, err
				}
				var b strings.Builder
				tw := tabwriter.NewWriter(&b, 5, 4, 3, ' ', 0)
				fmt.Fprintf(tw, "Layout\tFingerprint\n")
				for _, check := range res.Layouts {
					fmt.Fprintf(tw, "%s\t%016x\n", check.Layout, check.Fingerprint)
				}
				tw.Flush()
				fmt.Fprintf(&b, "Integrity check passed: %d queries over %d keys\n", res.Queries, res.Keys)
				return output(b.String()), nil
			}),
	)
}

func benchCommand(h *Harness) hive.ScriptCmdOut {
	return hive.NewScriptCmd(
		"search/bench",
		script.Command(
			script.CmdUsage{
				Summary: "Measure lower bound latency of the enabled layouts",
				Args:    "[--rounds=N] [--queries=N] [--format=table|yaml] [--out=file] sizes...",
			},
			func(s *script.State, args ...string) (script.WaitFunc, error) {
				flags := pflag.NewFlagSet("search/bench", pflag.ContinueOnError)
				rounds := flags.Int("rounds", 0, "Timed rounds per layout")
				queries := flags.Int("queries", 0, "Queries per round")
				format := flags.String("format", FormatTable, "Output format")
				out := flags.String("out", "", "File to write to instead of stdout")
				if err := flags.Parse(args); err != nil {
					return nil, err
				}
				plan := h.Plan()
				for _, arg := range flags.Args() {
					n, err := strconv.Atoi(arg)
					if err != nil {
						return nil, fmt.Errorf("bad size %q: %w", arg, err)
					}
					plan.Sizes = append(plan.Sizes, n)
				}
				if *rounds > 0 {
					plan.Rounds = *rounds
				}
				if *queries > 0 {
					plan.Queries = *queries
				}

				results, err := stream.ToSlice(s.Context(), h.Sweep(plan))
				if err != nil {
					return nil, err
				}
				report := h.NewReport()
				for _, res := range results {
					report.Add(res)
				}
				var b strings.Builder
				if err := report.Write(&b, *format); err != nil {
					return nil, err
				}
				if *out != "" {
					return nil, os.WriteFile(s.Path(*out), []byte(b.String()), 0644)
				}
				return output(b.String()), nil
			}),
	)
}
