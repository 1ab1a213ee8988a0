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

package config

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/memtest"
	"github.com/google/go-cmp/cmp"
)

func TestExamplePlan(t *testing.T) {
	p, err := Load("example_plan.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Plan{
		Device:           "stm32mp135f-dk",
		ProgressInterval: 1 << 20,
		MaxFailures:      1024,
		RetentionDelay:   2 * time.Second,
		Retest:           Retest{Attempts: 5, InitialInterval: 10 * time.Millisecond},
		Regions: []api.Window{
			{Name: "ddr", Base: 0xc0000000, Length: 0x20000000},
			{Name: "sysram", Base: 0x2ffe0000, Length: 0x20000},
		},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("plan diff (-want +got):\n%s", diff)
	}
	wantOpts := memtest.Options{ProgressInterval: 1 << 20, MaxFailures: 1024, RetentionDelay: 2 * time.Second}
	if diff := cmp.Diff(wantOpts, p.Options()); diff != "" {
		t.Errorf("Options() diff (-want +got):\n%s", diff)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load of missing file succeeded")
	}
}

func TestParseErrors(t *testing.T) {
	for _, test := range []struct {
		desc    string
		in      string
		wantErr string
	}{
		{
			desc:    "no regions",
			in:      "Seed: 1\n",
			wantErr: "missing field: Regions",
		}, {
			desc:    "unknown field",
			in:      "Sead: 1\nRegions: [{Name: a, Base: 0, Length: 4}]\n",
			wantErr: "Sead",
		}, {
			desc:    "unnamed region",
			in:      "Regions: [{Base: 0, Length: 4}]\n",
			wantErr: "missing field: Name",
		}, {
			desc:    "duplicate names",
			in:      "Regions: [{Name: a, Base: 0, Length: 4}, {Name: a, Base: 8, Length: 4}]\n",
			wantErr: "duplicate",
		}, {
			desc:    "odd length",
			in:      "Regions: [{Name: a, Base: 0, Length: 6}]\n",
			wantErr: "multiple of 4",
		}, {
			desc:    "unaligned base",
			in:      "Regions: [{Name: a, Base: 2, Length: 4}]\n",
			wantErr: "word aligned",
		}, {
			desc:    "overlap",
			in:      "Regions: [{Name: a, Base: 0x1000, Length: 0x100}, {Name: b, Base: 0x10fc, Length: 8}]\n",
			wantErr: "overlaps",
		}, {
			desc:    "wraps",
			in:      "Regions: [{Name: a, Base: 0xfffffffffffffffc, Length: 8}]\n",
			wantErr: "wraps",
		}, {
			desc:    "negative retest",
			in:      "Retest: {Attempts: -1}\nRegions: [{Name: a, Base: 0, Length: 4}]\n",
			wantErr: "Attempts",
		}, {
			desc:    "bad duration",
			in:      "RetentionDelay: forever\nRegions: [{Name: a, Base: 0, Length: 4}]\n",
			wantErr: "time.Duration",
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			_, err := Parse([]byte(test.in))
			if err == nil {
				t.Fatal("Parse succeeded, want error")
			}
			if !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Parse() = %q, want error containing %q", err, test.wantErr)
			}
		})
	}
}

func TestValidateOddLength(t *testing.T) {
	p := Plan{Regions: []api.Window{{Name: "a", Length: 2}}}
	if err := p.Validate(); !errors.Is(err, memtest.ErrLength) {
		t.Errorf("Validate() = %v, want ErrLength", err)
	}
}

func TestAdjacentRegions(t *testing.T) {
	p := Plan{Regions: []api.Window{
		{Name: "a", Base: 0x1000, Length: 0x100},
		{Name: "b", Base: 0x1100, Length: 0x100},
		{Name: "empty", Base: 0x1080, Length: 0},
	}}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}
