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

package api_test

import (
	"testing"

	"github.com/google/ddrtest/api"
)

func TestWindowOverlaps(t *testing.T) {
	a := api.Window{Name: "a", Base: 0xc0000000, Length: 0x1000}
	for _, test := range []struct {
		desc string
		b    api.Window
		want bool
	}{
		{desc: "identical", b: a, want: true},
		{desc: "adjacent after", b: api.Window{Base: 0xc0001000, Length: 0x1000}},
		{desc: "adjacent before", b: api.Window{Base: 0xbffff000, Length: 0x1000}},
		{desc: "one word inside", b: api.Window{Base: 0xc0000ffc, Length: 4}, want: true},
		{desc: "straddles start", b: api.Window{Base: 0xbffffffc, Length: 8}, want: true},
		{desc: "empty", b: api.Window{Base: 0xc0000000}},
	} {
		t.Run(test.desc, func(t *testing.T) {
			if got := a.Overlaps(test.b); got != test.want {
				t.Errorf("%v.Overlaps(%v) = %t, want %t", a, test.b, got, test.want)
			}
			if got := test.b.Overlaps(a); got != test.want {
				t.Errorf("%v.Overlaps(%v) = %t, want %t", test.b, a, got, test.want)
			}
		})
	}
}

func TestRunReportSummary(t *testing.T) {
	r := api.RunReport{
		Regions: []api.RegionReport{
			{
				Window: api.Window{Name: "ddr", Base: 0xc0000000, Length: 0x20000000},
			}, {
				Window:   api.Window{Name: "sysram", Base: 0x2ffe0000, Length: 0x20000},
				Seed:     7,
				Failures: []api.Failure{{Kind: api.VerifyFailure}},
				Dropped:  2,
			},
		},
	}
	want := "ddr 0xc0000000 0x20000000 0x00000000 ok 0\n" +
		"sysram 0x2ffe0000 0x20000 0x00000007 FAIL 3\n"
	if got := r.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if r.OK() {
		t.Error("OK() = true for a report with failures")
	}
}

func TestFailureString(t *testing.T) {
	f := api.Failure{Region: "ddr", Kind: api.VerifyFailure, Offset: 0x10, Address: 0xc0000010, Expected: 0xf, Observed: 0xffffffff}
	want := "ddr VERIFY_FAILURE at i=0x00000010 (0xc0000010), *p=0xffffffff, sr=0x0000000f"
	if got := f.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
