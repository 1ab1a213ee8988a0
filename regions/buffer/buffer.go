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

// Package buffer provides a memory region backed by an ordinary byte slice.
//
// It stands in for real memory when developing or testing against a
// simulated board, and is handy for checking patterns produced elsewhere.
package buffer

import (
	"encoding/binary"
	"fmt"

	"github.com/google/ddrtest/memtest"
)

// Region is a little-endian word view over a byte slice.
type Region struct {
	b []byte
}

var _ memtest.Region = &Region{}

// New allocates a zeroed region of the given length in bytes.
func New(length uint32) *Region {
	return &Region{b: make([]byte, length)}
}

// Wrap returns a region over b. The region shares b's storage.
func Wrap(b []byte) *Region {
	return &Region{b: b}
}

// Bytes returns the backing slice.
func (r *Region) Bytes() []byte {
	return r.b
}

// Len implements memtest.Region.
func (r *Region) Len() uint32 {
	return uint32(len(r.b))
}

// ReadWord implements memtest.Region.
func (r *Region) ReadWord(off uint32) (uint32, error) {
	if err := r.check(off); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.b[off:]), nil
}

// WriteWord implements memtest.Region.
func (r *Region) WriteWord(off uint32, v uint32) error {
	if err := r.check(off); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(r.b[off:], v)
	return nil
}

// Clear zeroes the whole region.
func (r *Region) Clear() {
	for i := range r.b {
		r.b[i] = 0
	}
}

func (r *Region) check(off uint32) error {
	if off%4 != 0 {
		return fmt.Errorf("unaligned offset 0x%x", off)
	}
	if uint64(off)+4 > uint64(len(r.b)) {
		return fmt.Errorf("offset 0x%x out of range (length 0x%x)", off, len(r.b))
	}
	return nil
}
