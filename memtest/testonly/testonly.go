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

// Package testonly provides memory regions for exerciser tests.
package testonly

import (
	"fmt"
	"testing"

	"github.com/google/ddrtest/memtest"
)

// MemRegion is a simple in-memory region.
type MemRegion []uint32

var _ memtest.Region = MemRegion{}

// NewMemRegion creates a zeroed in-memory region of the given number of words.
func NewMemRegion(t *testing.T, words int) MemRegion {
	t.Helper()
	return make(MemRegion, words)
}

// Len returns the region length in bytes.
func (m MemRegion) Len() uint32 {
	return uint32(len(m) * 4)
}

// ReadWord returns the word at byte offset off.
func (m MemRegion) ReadWord(off uint32) (uint32, error) {
	if err := m.check(off); err != nil {
		return 0, err
	}
	return m[off/4], nil
}

// WriteWord stores v at byte offset off.
func (m MemRegion) WriteWord(off uint32, v uint32) error {
	if err := m.check(off); err != nil {
		return err
	}
	m[off/4] = v
	return nil
}

func (m MemRegion) check(off uint32) error {
	if off%4 != 0 {
		return fmt.Errorf("unaligned offset 0x%x", off)
	}
	if off/4 >= uint32(len(m)) {
		return fmt.Errorf("offset 0x%x >= region length 0x%x", off, m.Len())
	}
	return nil
}

// FaultyRegion wraps a region and injects faults into accesses at chosen
// offsets.
type FaultyRegion struct {
	memtest.Region

	stuckHigh map[uint32]uint32
	stuckLow  map[uint32]uint32
	dropped   map[uint32]bool
	flaky     map[uint32]int
	failAt    map[uint32]error

	// Reads counts ReadWord calls per offset.
	Reads map[uint32]int
}

// NewFaultyRegion returns a region which behaves exactly like r until faults
// are added.
func NewFaultyRegion(r memtest.Region) *FaultyRegion {
	return &FaultyRegion{
		Region:    r,
		stuckHigh: make(map[uint32]uint32),
		stuckLow:  make(map[uint32]uint32),
		dropped:   make(map[uint32]bool),
		flaky:     make(map[uint32]int),
		failAt:    make(map[uint32]error),
		Reads:     make(map[uint32]int),
	}
}

// Corrupt overwrites the word at off in the underlying region, as if it had
// decayed.
func (f *FaultyRegion) Corrupt(off, v uint32) error {
	return f.Region.WriteWord(off, v)
}

// StuckHigh makes the bits in mask read as 1 at off.
func (f *FaultyRegion) StuckHigh(off, mask uint32) {
	f.stuckHigh[off] |= mask
}

// StuckLow makes the bits in mask read as 0 at off.
func (f *FaultyRegion) StuckLow(off, mask uint32) {
	f.stuckLow[off] |= mask
}

// DropWrites makes writes to off disappear.
func (f *FaultyRegion) DropWrites(off uint32) {
	f.dropped[off] = true
}

// Flaky makes the next n reads at off return the inverse of the stored word.
func (f *FaultyRegion) Flaky(off uint32, n int) {
	f.flaky[off] = n
}

// FailAt makes any access to off return err.
func (f *FaultyRegion) FailAt(off uint32, err error) {
	f.failAt[off] = err
}

// ReadWord implements memtest.Region.
func (f *FaultyRegion) ReadWord(off uint32) (uint32, error) {
	f.Reads[off]++
	if err := f.failAt[off]; err != nil {
		return 0, err
	}
	v, err := f.Region.ReadWord(off)
	if err != nil {
		return 0, err
	}
	v |= f.stuckHigh[off]
	v &^= f.stuckLow[off]
	if n := f.flaky[off]; n > 0 {
		f.flaky[off] = n - 1
		v = ^v
	}
	return v, nil
}

// WriteWord implements memtest.Region.
func (f *FaultyRegion) WriteWord(off uint32, v uint32) error {
	if err := f.failAt[off]; err != nil {
		return err
	}
	if f.dropped[off] {
		return nil
	}
	return f.Region.WriteWord(off, v)
}
