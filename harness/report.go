// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package harness

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/liggitt/tabwriter"
	"go.yaml.in/yaml/v3"

	"github.com/flatsearch/flatsearch"
)

var ErrUnknownFormat = errors.New("unknown report format")

const (
	FormatTable = "table"
	FormatYAML  = "yaml"
)

// Report collects the results of one sweep.
type Report struct {
	RunID   string    `yaml:"runID"`
	Started time.Time `yaml:"started"`
	Seed    int64     `yaml:"seed"`
	Host    HostInfo  `yaml:"host"`
	Results []Result  `yaml:"results"`
}

func (h *Harness) NewReport() *Report {
	return &Report{
		RunID:   uuid.New().String(),
		Started: time.Now().UTC(),
		Seed:    h.cfg.Seed,
		Host:    Host(),
	}
}

func (r *Report) Add(res Result) {
	r.Results = append(r.Results, res)
}

func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatTable:
		return r.WriteTable(w)
	case FormatYAML:
		return r.WriteYAML(w)
	default:
		return fmt.Errorf("%w %q, expected %q or %q", ErrUnknownFormat, format, FormatTable, FormatYAML)
	}
}

func (r *Report) WriteYAML(w io.Writer) error {
	out, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// WriteTable writes a header describing the host followed by one row per
// result. Speedup is relative to the sorted layout at the same size, when
// it was measured.
func (r *Report) WriteTable(w io.Writer) error {
	h := r.Host
	fmt.Fprintf(w, "Run %s\n", r.RunID)
	fmt.Fprintf(w, "CPU %s (%s, %d threads), cache line %dB, L1d %s, L2 %s, L3 %s, block compare %s\n\n",
		h.CPU, h.Arch, h.LogicalCores, h.CacheLine,
		formatBytes(h.L1D), formatBytes(h.L2), formatBytes(h.L3), h.BlockCompare)

	baseline := map[int]float64{}
	for _, res := range r.Results {
		if res.Layout == flatsearch.LayoutSorted {
			baseline[res.Keys] = res.NsPerOp
		}
	}

	tw := tabwriter.NewWriter(w, 5, 4, 3, ' ', 0)
	fmt.Fprintf(tw, "Layout\tKeys\tSize\tBuild\tns/op\tStdDev\tp50\tSpeedup\tChecksum\n")
	for _, res := range r.Results {
		speedup := "-"
		if base, ok := baseline[res.Keys]; ok && res.NsPerOp > 0 {
			speedup = fmt.Sprintf("%.2fx", base/res.NsPerOp)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2fMiB\t%s\t%.2f\t%.2f\t%.2f\t%s\t%d\n",
			res.Layout, res.Keys, res.MiB(), res.Build.Round(time.Microsecond),
			res.NsPerOp, res.StdDev, res.P50, speedup, res.Checksum)
	}
	return tw.Flush()
}

func formatBytes(n int) string {
	switch {
	case n <= 0:
		return "?"
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMiB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKiB", n>>10)
	default:
		return fmt.Sprintf("%dB", n)
	}
}
