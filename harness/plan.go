// SPDX-License-Identifier: Apache-2.0
// Copyright Authors of Cilium

package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

// Plan describes a latency sweep. Zero Rounds and Queries fall back to the
// harness configuration and empty Layouts means every enabled layout.
type Plan struct {
	Sizes   []int    `yaml:"sizes"`
	Rounds  int      `yaml:"rounds,omitempty"`
	Queries int      `yaml:"queries,omitempty"`
	Layouts []string `yaml:"layouts,omitempty"`
}

// Plan returns a plan over the given sizes using the configured rounds and
// query count.
func (h *Harness) Plan(sizes ...int) Plan {
	return Plan{
		Sizes:   sizes,
		Rounds:  h.cfg.Rounds,
		Queries: h.cfg.BenchQueries,
	}
}

func (p Plan) withDefaults(h *Harness) Plan {
	if p.Rounds == 0 {
		p.Rounds = h.cfg.Rounds
	}
	if p.Queries == 0 {
		p.Queries = h.cfg.BenchQueries
	}
	if len(p.Layouts) == 0 {
		p.Layouts = h.registry.Names()
	}
	return p
}

func (p Plan) Validate() error {
	var errs []error
	if len(p.Sizes) == 0 {
		errs = append(errs, errors.New("no sizes"))
	}
	for _, n := range p.Sizes {
		if n < 0 {
			errs = append(errs, fmt.Errorf("negative size %d", n))
		}
	}
	if p.Rounds < 0 {
		errs = append(errs, fmt.Errorf("negative rounds %d", p.Rounds))
	}
	if p.Queries < 0 {
		errs = append(errs, fmt.Errorf("negative queries %d", p.Queries))
	}
	return errors.Join(errs...)
}

// ParseSweepFile decodes a plan from YAML. Unknown fields are rejected.
func ParseSweepFile(data []byte) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return Plan{}, fmt.Errorf("decode sweep file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, fmt.Errorf("invalid sweep file: %w", err)
	}
	return p, nil
}

func LoadSweepFile(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, err
	}
	return ParseSweepFile(data)
}
