// Copyright 2026 Google LLC. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config holds the test plan format.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/memtest"
	"gopkg.in/yaml.v3"
)

// Plan describes which windows to exercise and how.
type Plan struct {
	// Device identifies the board under test in reports, e.g. a serial number.
	Device string `yaml:"Device"`
	// Seed is the first pattern state. The firmware always starts from 0.
	Seed uint32 `yaml:"Seed"`
	// ProgressInterval is the number of bytes between progress log lines.
	ProgressInterval uint32 `yaml:"ProgressInterval"`
	// MaxFailures caps the failures kept per pass. Zero means no cap.
	MaxFailures int `yaml:"MaxFailures"`
	// AbortOnWriteFailure stops a window's write pass at the first failure.
	AbortOnWriteFailure bool `yaml:"AbortOnWriteFailure"`
	// RetentionDelay is the pause between the write and verify passes.
	RetentionDelay time.Duration `yaml:"RetentionDelay"`
	// Retest, if Attempts is set, re-reads failing words to tell transient
	// faults from persistent ones.
	Retest Retest `yaml:"Retest"`
	// Regions are the windows to exercise. They must not overlap.
	Regions []api.Window `yaml:"Regions"`
}

// Retest controls re-reading of failed words.
type Retest struct {
	Attempts        int           `yaml:"Attempts"`
	InitialInterval time.Duration `yaml:"InitialInterval"`
}

// Validate checks that the plan can be run.
func (p Plan) Validate() error {
	if len(p.Regions) == 0 {
		return errors.New("missing field: Regions")
	}
	if p.MaxFailures < 0 {
		return fmt.Errorf("MaxFailures %d is negative", p.MaxFailures)
	}
	if p.RetentionDelay < 0 {
		return fmt.Errorf("RetentionDelay %v is negative", p.RetentionDelay)
	}
	if p.Retest.Attempts < 0 {
		return fmt.Errorf("Retest.Attempts %d is negative", p.Retest.Attempts)
	}
	names := make(map[string]bool)
	for i, w := range p.Regions {
		if w.Name == "" {
			return fmt.Errorf("region %d: missing field: Name", i)
		}
		if names[w.Name] {
			return fmt.Errorf("region %q: duplicate name", w.Name)
		}
		names[w.Name] = true
		if w.Length%4 != 0 {
			return fmt.Errorf("region %s: %w", w, memtest.ErrLength)
		}
		if w.Base%4 != 0 {
			return fmt.Errorf("region %s: base is not word aligned", w)
		}
		if w.End() < w.Base {
			return fmt.Errorf("region %s: wraps the address space", w)
		}
		for _, o := range p.Regions[:i] {
			if w.Overlaps(o) {
				return fmt.Errorf("region %s overlaps %s", w, o)
			}
		}
	}
	return nil
}

// Options returns the pass options the plan asks for.
func (p Plan) Options() memtest.Options {
	return memtest.Options{
		Seed:                p.Seed,
		ProgressInterval:    p.ProgressInterval,
		MaxFailures:         p.MaxFailures,
		AbortOnWriteFailure: p.AbortOnWriteFailure,
		RetentionDelay:      p.RetentionDelay,
	}
}

// Parse decodes and validates a YAML plan. Unknown fields are an error.
func Parse(b []byte) (Plan, error) {
	var p Plan
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Plan{}, fmt.Errorf("failed to parse plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Plan{}, fmt.Errorf("invalid plan: %w", err)
	}
	return p, nil
}

// Load reads a plan from a file.
func Load(path string) (Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("failed to read plan: %w", err)
	}
	return Parse(b)
}
