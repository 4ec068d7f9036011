// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cilium/hive"
	"github.com/cilium/hive/cell"
	"github.com/flatsearch/flatsearch"
	"github.com/flatsearch/flatsearch/harness"
)

// searchbench checks the search layouts against binary search and measures
// their lower bound latency.
//
// Check the layouts and then sweep the default sizes:
//
//   $ go run .
//
// Check only, with more queries:
//
//   $ go run . verify --queries=1000000
//
// Sweep chosen sizes and layouts, writing YAML:
//
//   $ go run . bench --sizes=1000000,100000000 --layouts=sorted,stree --format=yaml
//
// Sweep as described by a file:
//
//   $ cat sweep.yaml
//   sizes: [100000000, 1000000000]
//   rounds: 3
//   $ go run . bench --sweep-file=sweep.yaml
//

var (
	metrics = flatsearch.NewExpVarMetrics(true)

	// Populated when the hive starts.
	searchHarness *harness.Harness

	Hive = hive.New(
		flatsearch.Cell,
		harness.Cell,

		cell.Provide(func() flatsearch.Metrics { return metrics }),
		cell.Invoke(func(h *harness.Harness) { searchHarness = h }),
	)
)

type benchFlags struct {
	sizes        []int
	format       string
	out          string
	sweepFile    string
	cpuprofile   string
	printMetrics bool
}

func main() {
	var (
		verbose bool
		bench   benchFlags
	)

	root := &cobra.Command{
		Use:          "searchbench",
		Short:        "Check and measure cache-efficient search layouts",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			level := slog.LevelError
			if verbose {
				level = slog.LevelInfo
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHarness(func(ctx context.Context, h *harness.Harness) error {
				if err := verify(ctx, cmd.OutOrStdout(), h); err != nil {
					return err
				}
				return sweep(ctx, cmd.OutOrStdout(), h, bench)
			})
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress to stderr")
	Hive.RegisterFlags(root.PersistentFlags())
	bench.register(root)

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check every enabled layout against binary search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHarness(func(ctx context.Context, h *harness.Harness) error {
				return verify(ctx, cmd.OutOrStdout(), h)
			})
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure lower bound latency of the enabled layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withHarness(func(ctx context.Context, h *harness.Harness) error {
				return sweep(ctx, cmd.OutOrStdout(), h, bench)
			})
		},
	}
	bench.register(benchCmd)

	// Add the "hive" command for inspecting the object graph:
	//
	//  $ go run . hive
	//
	root.AddCommand(verifyCmd, benchCmd, Hive.Command())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func (f *benchFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntSliceVar(&f.sizes, "sizes", []int{100_000_000, 1_000_000_000}, "Numbers of keys to sweep")
	flags.StringVar(&f.format, "format", harness.FormatTable, "Report format (table or yaml)")
	flags.StringVar(&f.out, "out", "", "Write the report to a file instead of stdout")
	flags.StringVar(&f.sweepFile, "sweep-file", "", "YAML file describing the sweep, overrides --sizes")
	flags.StringVar(&f.cpuprofile, "cpuprofile", "", "Write a CPU profile of the sweep to `file`")
	flags.BoolVar(&f.printMetrics, "print-metrics", false, "Print the collected metrics after the report")
}

func withHarness(fn func(context.Context, *harness.Harness) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log := slog.Default()
	if err := Hive.Start(log, ctx); err != nil {
		return err
	}
	defer func() {
		if err := Hive.Stop(log, context.Background()); err != nil {
			log.Error("Stop failed", "error", err)
		}
	}()
	return fn(ctx, searchHarness)
}

func verify(ctx context.Context, w io.Writer, h *harness.Harness) error {
	cfg := h.Config()
	fmt.Fprintf(w, "Checking %v over %d keys with %d queries\n",
		h.Registry().Names(), cfg.VerifySize, cfg.Queries)
	if _, err := h.Verify(ctx); err != nil {
		return err
	}
	fmt.Fprintln(w, "Integrity check passed: all layouts match.")
	return nil
}

func sweep(ctx context.Context, w io.Writer, h *harness.Harness, f benchFlags) error {
	if f.format != harness.FormatTable && f.format != harness.FormatYAML {
		return fmt.Errorf("%w %q", harness.ErrUnknownFormat, f.format)
	}
	plan := h.Plan(f.sizes...)
	if f.sweepFile != "" {
		var err error
		if plan, err = harness.LoadSweepFile(f.sweepFile); err != nil {
			return err
		}
	}

	if f.cpuprofile != "" {
		pf, err := os.Create(f.cpuprofile)
		if err != nil {
			return fmt.Errorf("create CPU profile: %w", err)
		}
		defer pf.Close()
		if err := pprof.StartCPUProfile(pf); err != nil {
			return fmt.Errorf("start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	report := h.NewReport()
	errs := make(chan error, 1)
	h.Sweep(plan).Observe(ctx,
		func(res harness.Result) {
			report.Add(res)
			fmt.Fprintf(os.Stderr, "  -> %-22s %12d keys: %8.2f ns/op\n", res.Layout, res.Keys, res.NsPerOp)
		},
		func(err error) { errs <- err })
	if err := <-errs; err != nil {
		return err
	}

	out := w
	if f.out != "" {
		of, err := os.Create(f.out)
		if err != nil {
			return err
		}
		defer of.Close()
		out = of
	}
	if err := report.Write(out, f.format); err != nil {
		return err
	}
	if f.printMetrics {
		fmt.Fprint(out, "\n", metrics.String())
	}
	return nil
}
