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

// Package memtest exercises a memory region with the PRBS-31 pattern.
//
// A test is two passes over the region. The write pass stores consecutive
// generator states into consecutive 32-bit words, reading each one back
// straight away; the verify pass re-reads the whole region and compares it
// against the same sequence. Both passes advance the generator once per word
// whether or not the word matched, so one bad word never desynchronises the
// rest of the comparison.
//
// Mismatches are reported, never acted upon: what to do about them (log,
// blink, halt, retest) is up to the caller.
package memtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/prbs"
)

// DefaultProgressInterval is the number of bytes between progress callbacks.
const DefaultProgressInterval = 1 << 20

// ErrLength is returned for regions whose length is not a whole number of words.
var ErrLength = errors.New("region length is not a multiple of 4")

// Region is a window of memory which can be accessed a word at a time.
// The exerciser owns the region for the duration of a pass; nothing else may
// access it concurrently.
type Region interface {
	// Len returns the size of the region in bytes.
	Len() uint32
	// ReadWord returns the 32-bit word at the given byte offset.
	ReadWord(off uint32) (uint32, error)
	// WriteWord stores v as the 32-bit word at the given byte offset.
	WriteWord(off uint32, v uint32) error
}

// Failure is a mismatching word found during a pass.
type Failure struct {
	Kind     api.Kind
	Offset   uint32
	Expected uint32
	Observed uint32
}

func (f Failure) String() string {
	return fmt.Sprintf("%s at i=0x%08x, *p=0x%08x, sr=0x%08x", f.Kind, f.Offset, f.Observed, f.Expected)
}

// Sink receives failures as soon as they are found.
type Sink interface {
	Report(Failure)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Failure)

// Report calls f(x).
func (f SinkFunc) Report(x Failure) {
	f(x)
}

// Progress is passed to the progress hook at every interval boundary.
type Progress struct {
	Pass api.Pass
	// Offset is the byte offset of the word just processed.
	Offset uint32
	// Total is the length of the region in bytes.
	Total uint32
	// Expected and Observed are the pattern value and the value read back
	// for the word at Offset.
	Expected uint32
	Observed uint32
}

// Options controls a pass.
type Options struct {
	// Seed is the first state of the pattern. The firmware always uses 0.
	Seed uint32
	// Sink, if set, is told about every failure.
	Sink Sink
	// Progress, if set, is called for the first word of every
	// ProgressInterval bytes.
	Progress func(Progress)
	// ProgressInterval defaults to DefaultProgressInterval. It is also how
	// often the context is checked for cancellation.
	ProgressInterval uint32
	// MaxFailures caps the number of failures kept in the Result. Failures
	// beyond the cap are still sent to the Sink and counted in Dropped.
	// Zero means no cap.
	MaxFailures int
	// AbortOnWriteFailure stops the write pass at its first failure.
	// The verify pass always covers the whole region.
	AbortOnWriteFailure bool
	// RetentionDelay is how long Run waits between the write and verify passes.
	RetentionDelay time.Duration
}

func (o Options) interval() uint32 {
	i := o.ProgressInterval
	if i == 0 {
		i = DefaultProgressInterval
	}
	i &^= 3
	if i == 0 {
		i = 4
	}
	return i
}

// Result is the outcome of a single pass.
type Result struct {
	Pass api.Pass
	// Words is the number of words checked.
	Words    uint32
	Failures []Failure
	// Dropped counts failures which were not kept because of MaxFailures.
	Dropped int
	// Aborted is set if the pass stopped at a failure rather than at the
	// end of the region.
	Aborted bool
}

// OK returns true if no failures were seen.
func (r Result) OK() bool {
	return len(r.Failures) == 0 && r.Dropped == 0 && !r.Aborted
}

func (r *Result) record(f Failure, max int) {
	if max > 0 && len(r.Failures) >= max {
		r.Dropped++
		return
	}
	r.Failures = append(r.Failures, f)
}

// checkFunc handles the word at off, which should hold want, and returns the
// value actually found there.
type checkFunc func(off, want uint32) (uint32, error)

// WritePattern fills r with the pattern starting at opts.Seed. Every word is
// read back immediately after being written, and a mismatch is reported as a
// WriteVerifyFailure.
func WritePattern(ctx context.Context, r Region, opts Options) (Result, error) {
	return sweep(ctx, r, api.WritePass, api.WriteVerifyFailure, opts, func(off, want uint32) (uint32, error) {
		if err := r.WriteWord(off, want); err != nil {
			return 0, err
		}
		return r.ReadWord(off)
	})
}

// VerifyPattern checks that r holds the pattern starting at opts.Seed, and
// reports each mismatch as a VerifyFailure. The whole region is always read,
// so a single call maps every faulty word.
func VerifyPattern(ctx context.Context, r Region, opts Options) (Result, error) {
	opts.AbortOnWriteFailure = false
	return sweep(ctx, r, api.VerifyPass, api.VerifyFailure, opts, func(off, _ uint32) (uint32, error) {
		return r.ReadWord(off)
	})
}

func sweep(ctx context.Context, r Region, p api.Pass, k api.Kind, opts Options, check checkFunc) (Result, error) {
	res := Result{Pass: p}
	n := r.Len()
	if n%4 != 0 {
		return res, fmt.Errorf("%w: %d bytes", ErrLength, n)
	}
	interval := opts.interval()
	g := prbs.NewGenerator(opts.Seed)
	for off := uint32(0); off < n; off += 4 {
		want := g.Step()
		got, err := check(off, want)
		if err != nil {
			return res, fmt.Errorf("%s pass at offset 0x%08x: %w", p, off, err)
		}
		res.Words++
		if got != want {
			f := Failure{Kind: k, Offset: off, Expected: want, Observed: got}
			res.record(f, opts.MaxFailures)
			if opts.Sink != nil {
				opts.Sink.Report(f)
			}
			if opts.AbortOnWriteFailure {
				res.Aborted = true
				return res, nil
			}
		}
		if off%interval == 0 {
			if opts.Progress != nil {
				opts.Progress(Progress{Pass: p, Offset: off, Total: n, Expected: want, Observed: got})
			}
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
	}
	return res, nil
}

// Report holds the results of both passes of Run.
type Report struct {
	Write  Result
	Verify Result
}

// OK returns true if both passes completed without failures.
func (r Report) OK() bool {
	return r.Write.OK() && r.Verify.OK()
}

// Passes returns the results of the passes which were started, in order.
func (r Report) Passes() []Result {
	var rs []Result
	for _, res := range []Result{r.Write, r.Verify} {
		if res.Pass != 0 {
			rs = append(rs, res)
		}
	}
	return rs
}

// Run writes the pattern to r and then verifies it, both starting from
// opts.Seed. If the write pass is aborted the verify pass is skipped.
func Run(ctx context.Context, r Region, opts Options) (Report, error) {
	var rep Report
	var err error
	rep.Write, err = WritePattern(ctx, r, opts)
	if err != nil || rep.Write.Aborted {
		return rep, err
	}
	if d := opts.RetentionDelay; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return rep, ctx.Err()
		}
	}
	rep.Verify, err = VerifyPattern(ctx, r, opts)
	return rep, err
}
