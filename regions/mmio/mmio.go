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

// Package mmio accesses mapped physical memory one 32-bit word at a time.
//
// Every access is a single atomic load or store, so the compiler can neither
// merge, reorder nor elide it and each word read or written really reaches
// the memory bus.
package mmio

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/google/ddrtest/memtest"
)

// Window is a word accessor over a mapping.
type Window struct {
	mem []byte
}

var _ memtest.Region = &Window{}

// New returns a Window over mem. The mapping must start on a word boundary
// and be a whole number of words long.
func New(mem []byte) (*Window, error) {
	if len(mem)%4 != 0 {
		return nil, fmt.Errorf("mapping length 0x%x: %w", len(mem), memtest.ErrLength)
	}
	if uint64(len(mem)) > 1<<32-4 {
		return nil, fmt.Errorf("mapping length 0x%x too large", len(mem))
	}
	if len(mem) > 0 && uintptr(unsafe.Pointer(&mem[0]))%4 != 0 {
		return nil, errors.New("mapping is not word aligned")
	}
	return &Window{mem: mem}, nil
}

func (w *Window) word(off uint32) (*uint32, error) {
	if off%4 != 0 {
		return nil, fmt.Errorf("unaligned offset 0x%x", off)
	}
	if uint64(off)+4 > uint64(len(w.mem)) {
		return nil, fmt.Errorf("offset 0x%x out of range (length 0x%x)", off, len(w.mem))
	}
	return (*uint32)(unsafe.Pointer(&w.mem[off])), nil
}

// Len implements memtest.Region.
func (w *Window) Len() uint32 {
	return uint32(len(w.mem))
}

// ReadWord implements memtest.Region.
func (w *Window) ReadWord(off uint32) (uint32, error) {
	p, err := w.word(off)
	if err != nil {
		return 0, err
	}
	return atomic.LoadUint32(p), nil
}

// WriteWord implements memtest.Region.
func (w *Window) WriteWord(off uint32, v uint32) error {
	p, err := w.word(off)
	if err != nil {
		return err
	}
	atomic.StoreUint32(p, v)
	return nil
}
