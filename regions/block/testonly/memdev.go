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

// Package testonly provides support for block region tests.
package testonly

import (
	"fmt"
	"testing"
)

// MemBlockSize is the block size of a MemDev.
const MemBlockSize = 512

// MemDev is a simple in-memory block device.
type MemDev [][MemBlockSize]byte

// BlockSize returns MemBlockSize.
func (md MemDev) BlockSize() uint {
	return MemBlockSize
}

func (md MemDev) span(lba uint, b []byte) (uint, error) {
	if len(b)%MemBlockSize != 0 {
		return 0, fmt.Errorf("transfer of %d bytes is not whole blocks", len(b))
	}
	n := uint(len(b)) / MemBlockSize
	if lba+n > uint(len(md)) {
		return 0, fmt.Errorf("blocks [%d, %d) beyond device end %d", lba, lba+n, len(md))
	}
	return n, nil
}

// ReadBlocks copies whole blocks starting at lba into b.
func (md MemDev) ReadBlocks(lba uint, b []byte) error {
	n, err := md.span(lba, b)
	if err != nil {
		return err
	}
	for i := uint(0); i < n; i++ {
		copy(b[i*MemBlockSize:], md[lba+i][:])
	}
	return nil
}

// WriteBlocks copies b into whole blocks starting at lba.
func (md MemDev) WriteBlocks(lba uint, b []byte) error {
	n, err := md.span(lba, b)
	if err != nil {
		return err
	}
	for i := uint(0); i < n; i++ {
		copy(md[lba+i][:], b[i*MemBlockSize:])
	}
	return nil
}

// NewMemDev creates a new in-memory block device.
func NewMemDev(t *testing.T, numBlocks uint) MemDev {
	t.Helper()
	return make(MemDev, numBlocks)
}
