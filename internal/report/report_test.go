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

package report

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/memtest"
	"github.com/google/ddrtest/memtest/testonly"
	"github.com/google/go-cmp/cmp"
)

func TestBlinkCode(t *testing.T) {
	for _, test := range []struct {
		kind api.Kind
		want int
	}{
		{kind: api.WriteVerifyFailure, want: 1},
		{kind: api.VerifyFailure, want: 2},
		{kind: api.Kind(0), want: InitFailureCode},
	} {
		if got := BlinkCode(test.kind); got != test.want {
			t.Errorf("BlinkCode(%v) = %d, want %d", test.kind, got, test.want)
		}
	}
}

func TestRegion(t *testing.T) {
	w := api.Window{Name: "ddr", Base: 0xc0000000, Length: 64}
	f := testonly.NewFaultyRegion(testonly.NewMemRegion(t, 16))
	f.DropWrites(8)
	f.StuckHigh(20, 0x80000000)
	c := &Collector{}
	opts := memtest.Options{Sink: Tee(LogSink(w), c.Sink(w)), Progress: LogProgress(w), ProgressInterval: 16}
	rep, err := memtest.Run(context.Background(), f, opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := Region(w, 0, rep.Passes(), nil)
	if got.OK() {
		t.Error("OK() = true for a faulty region")
	}
	if diff := cmp.Diff([]api.Pass{api.WritePass, api.VerifyPass}, got.Passes); diff != "" {
		t.Errorf("Passes diff (-want +got):\n%s", diff)
	}
	if got.Words != 32 {
		t.Errorf("Words = %d, want 32", got.Words)
	}
	wantFirst := api.Failure{Region: "ddr", Pass: api.WritePass, Kind: api.WriteVerifyFailure, Offset: 8, Address: 0xc0000008, Expected: 3, Observed: 0}
	if diff := cmp.Diff(wantFirst, got.Failures[0]); diff != "" {
		t.Errorf("first failure diff (-want +got):\n%s", diff)
	}
	// Both faults show up in both passes.
	if got.FailureCount() != 4 {
		t.Errorf("FailureCount() = %d, want 4: %v", got.FailureCount(), got.Failures)
	}
	first, ok := c.First()
	if !ok {
		t.Fatal("First() found nothing")
	}
	if diff := cmp.Diff(wantFirst, first); diff != "" {
		t.Errorf("Collector.First() diff (-want +got):\n%s", diff)
	}

	got = Region(w, 7, nil, errors.New("bus error"))
	if got.OK() || got.Error != "bus error" || got.Seed != 7 {
		t.Errorf("Region with error = %+v", got)
	}
}

func TestCollectorConcurrent(t *testing.T) {
	c := &Collector{}
	if _, ok := c.First(); ok {
		t.Error("First() on empty collector found a failure")
	}
	var wg sync.WaitGroup
	for _, name := range []string{"a", "b", "c"} {
		s := c.Sink(api.Window{Name: name})
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Report(memtest.Failure{Kind: api.VerifyFailure, Offset: uint32(4 * i)})
			}
		}()
	}
	wg.Wait()
	if diff := cmp.Diff(map[string]int{"a": 100, "b": 100, "c": 100}, c.Counts()); diff != "" {
		t.Errorf("Counts() diff (-want +got):\n%s", diff)
	}
}
