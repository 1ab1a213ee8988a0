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

// Package report turns pass results into log lines, blink codes and
// api.RegionReports.
package report

import (
	"sync"

	"github.com/golang/glog"
	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/memtest"
)

const mib = 1 << 20

// InitFailureCode is blinked when the platform cannot be brought up far
// enough to run a test.
const InitFailureCode = 3

// BlinkCode returns the number of LED blinks signalling a failure of kind k.
func BlinkCode(k api.Kind) int {
	switch k {
	case api.WriteVerifyFailure:
		return 1
	case api.VerifyFailure:
		return 2
	}
	return InitFailureCode
}

// LogSink logs every failure in w as it is found.
func LogSink(w api.Window) memtest.Sink {
	return memtest.SinkFunc(func(f memtest.Failure) {
		what := "Verification"
		if f.Kind == api.WriteVerifyFailure {
			what = "Writing"
		}
		glog.Warningf("%s: %s error at i=0x%08x (0x%08x), *p=0x%08x, sr=0x%08x", w.Name, what, f.Offset, w.Base+uint64(f.Offset), f.Observed, f.Expected)
	})
}

// LogProgress returns a progress hook which logs a line for w at every
// interval boundary.
func LogProgress(w api.Window) func(memtest.Progress) {
	return func(p memtest.Progress) {
		verb := "read "
		if p.Pass == api.WritePass {
			verb = "wrote"
		}
		glog.Infof("%s: i=0x%08x / 0x%08x (%03d/%d): %s *p=0x%08x == 0x%08x", w.Name, p.Offset, p.Total, p.Offset/mib, p.Total/mib, verb, p.Observed, p.Expected)
	}
}

// Tee returns a Sink which reports to each of sinks in turn.
func Tee(sinks ...memtest.Sink) memtest.Sink {
	return memtest.SinkFunc(func(f memtest.Failure) {
		for _, s := range sinks {
			s.Report(f)
		}
	})
}

// Collector tallies failures across windows. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	counts map[string]int
	first  *api.Failure
}

// Sink returns a Sink which records failures found in w.
func (c *Collector) Sink(w api.Window) memtest.Sink {
	return memtest.SinkFunc(func(f memtest.Failure) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.counts == nil {
			c.counts = make(map[string]int)
		}
		c.counts[w.Name]++
		if c.first == nil {
			af := convert(w, passOf(f.Kind), f)
			c.first = &af
		}
	})
}

// Counts returns the number of failures seen so far per window name.
func (c *Collector) Counts() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		r[k] = v
	}
	return r
}

// First returns the earliest failure seen, if any.
func (c *Collector) First() (api.Failure, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.first == nil {
		return api.Failure{}, false
	}
	return *c.first, true
}

func passOf(k api.Kind) api.Pass {
	if k == api.WriteVerifyFailure {
		return api.WritePass
	}
	return api.VerifyPass
}

func convert(w api.Window, p api.Pass, f memtest.Failure) api.Failure {
	return api.Failure{
		Region:   w.Name,
		Pass:     p,
		Kind:     f.Kind,
		Offset:   f.Offset,
		Address:  w.Base + uint64(f.Offset),
		Expected: f.Expected,
		Observed: f.Observed,
	}
}

// Region summarises the passes run over w. err is the error, if any, which
// ended the run early.
func Region(w api.Window, seed uint32, results []memtest.Result, err error) api.RegionReport {
	rr := api.RegionReport{Window: w, Seed: seed}
	for _, res := range results {
		rr.Passes = append(rr.Passes, res.Pass)
		rr.Words += uint64(res.Words)
		for _, f := range res.Failures {
			rr.Failures = append(rr.Failures, convert(w, res.Pass, f))
		}
		rr.Dropped += res.Dropped
		rr.Aborted = rr.Aborted || res.Aborted
	}
	if err != nil {
		rr.Error = err.Error()
	}
	return rr
}

// Log writes a one line outcome for rr.
func Log(rr api.RegionReport) {
	if rr.OK() {
		glog.Infof("%s: ok, %d words checked", rr.Window, rr.Words)
		return
	}
	glog.Warningf("%s: FAIL, %d failures in %d words checked (aborted=%t) %s", rr.Window, rr.FailureCount(), rr.Words, rr.Aborted, rr.Error)
}
