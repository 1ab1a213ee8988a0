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

// Package api contains the types shared between the memory exerciser, its
// tooling and the results server.
package api

import (
	"fmt"
	"strings"
	"time"
)

// Window names a contiguous range of physical memory to be exercised.
type Window struct {
	// Name identifies the window in logs and reports, e.g. "ddr".
	Name string `yaml:"Name"`
	// Base is the physical address of the first byte.
	Base uint64 `yaml:"Base"`
	// Length is the size of the window in bytes, which must be a multiple of 4.
	Length uint32 `yaml:"Length"`
}

// End returns the address one past the last byte of the window.
func (w Window) End() uint64 {
	return w.Base + uint64(w.Length)
}

// Overlaps returns true if w and o share at least one byte.
func (w Window) Overlaps(o Window) bool {
	if w.Length == 0 || o.Length == 0 {
		return false
	}
	return w.Base < o.End() && o.Base < w.End()
}

// String returns a compact printable representation of the window.
func (w Window) String() string {
	return fmt.Sprintf("%s[0x%08x+0x%x]", w.Name, w.Base, w.Length)
}

// Pass is one sweep over a window.
type Pass int

const (
	// WritePass fills the window with the pattern, reading back each word.
	WritePass Pass = iota + 1
	// VerifyPass re-reads the window and compares it against the pattern.
	VerifyPass
)

func (p Pass) String() string {
	switch p {
	case WritePass:
		return "write"
	case VerifyPass:
		return "verify"
	}
	return fmt.Sprintf("Pass(%d)", int(p))
}

// Kind identifies the class of a failure.
type Kind int

const (
	// WriteVerifyFailure means that a word read back immediately after being
	// written did not match. This points at the bus, the driver or the memory
	// controller rather than at data retention.
	WriteVerifyFailure Kind = iota + 1
	// VerifyFailure means that a word read during the verify pass did not
	// match the pattern written earlier.
	VerifyFailure
)

func (k Kind) String() string {
	switch k {
	case WriteVerifyFailure:
		return "WRITE_VERIFY_FAILURE"
	case VerifyFailure:
		return "VERIFY_FAILURE"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Class is the result of re-reading a failing word.
type Class int

const (
	// Unclassified failures have not been re-read.
	Unclassified Class = iota
	// Transient failures read back correctly at least once when retested.
	Transient
	// Persistent failures never read back correctly when retested.
	Persistent
)

func (c Class) String() string {
	switch c {
	case Unclassified:
		return "unclassified"
	case Transient:
		return "transient"
	case Persistent:
		return "persistent"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// Failure is a single mismatching word.
type Failure struct {
	Region string
	Pass   Pass
	Kind   Kind
	// Offset is the byte offset of the word from the start of the window.
	Offset uint32
	// Address is the physical address of the word.
	Address  uint64
	Expected uint32
	Observed uint32
	Class    Class
}

// String returns the failure in the same format the firmware logs it.
func (f Failure) String() string {
	return fmt.Sprintf("%s %s at i=0x%08x (0x%08x), *p=0x%08x, sr=0x%08x", f.Region, f.Kind, f.Offset, f.Address, f.Observed, f.Expected)
}

// RegionReport is the outcome of exercising one window.
type RegionReport struct {
	Window Window
	Seed   uint32
	// Passes lists the passes which were run, in order.
	Passes []Pass
	// Words is the total number of words checked across all passes.
	Words uint64
	// Failures holds the recorded failures; Dropped counts any which were
	// seen but not recorded because of a cap.
	Failures []Failure
	Dropped  int
	// Aborted is set if the write pass stopped early on a failure.
	Aborted bool
	// Error holds a transport error which ended the test early, if any.
	Error string `json:",omitempty"`
}

// OK returns true if the window was fully exercised without failures.
func (r RegionReport) OK() bool {
	return len(r.Failures) == 0 && r.Dropped == 0 && !r.Aborted && r.Error == ""
}

// FailureCount returns the number of failures seen, recorded or not.
func (r RegionReport) FailureCount() int {
	return len(r.Failures) + r.Dropped
}

// RunReport collects the results of one invocation of the exerciser.
type RunReport struct {
	// ID is assigned by whoever first stores the report.
	ID string
	// Device identifies the board under test.
	Device   string
	Started  time.Time
	Finished time.Time
	Regions  []RegionReport
}

// OK returns true if all regions passed.
func (r RunReport) OK() bool {
	for _, rr := range r.Regions {
		if !rr.OK() {
			return false
		}
	}
	return true
}

// Summary returns one line per region, suitable for logging and signing.
func (r RunReport) Summary() string {
	b := &strings.Builder{}
	for _, rr := range r.Regions {
		status := "ok"
		if !rr.OK() {
			status = "FAIL"
		}
		fmt.Fprintf(b, "%s 0x%08x 0x%x 0x%08x %s %d\n", rr.Window.Name, rr.Window.Base, rr.Window.Length, rr.Seed, status, rr.FailureCount())
	}
	return b.String()
}
