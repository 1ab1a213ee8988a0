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

//go:build linux

package devmem

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/google/ddrtest/regions/mmio"
	"golang.org/x/sys/unix"
)

// Open maps length bytes of physical memory starting at base.
// base need not be page aligned; the surrounding pages are mapped and the
// returned window starts exactly at base.
func Open(base uint64, length uint32) (*Mapping, error) {
	if base%4 != 0 {
		return nil, fmt.Errorf("base 0x%x is not word aligned", base)
	}
	page := uint64(unix.Getpagesize())
	start := base &^ (page - 1)
	delta := base - start
	size := (delta + uint64(length) + page - 1) &^ (page - 1)
	if size == 0 {
		size = page
	}

	f, err := os.OpenFile(Path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", Path, err)
	}
	// The mapping outlives the descriptor.
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(start), int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("failed to map 0x%x bytes at 0x%x from %s: %w", size, start, Path, err)
	}
	w, err := mmio.New(mem[delta : delta+uint64(length)])
	if err != nil {
		unix.Munmap(mem)
		return nil, err
	}
	glog.V(1).Infof("Mapped %s [0x%x, 0x%x) for window at 0x%x", Path, start, start+size, base)
	return &Mapping{Window: w, mem: mem}, nil
}

// Close unmaps the window. The Mapping must not be used afterwards.
func (m *Mapping) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	m.Window = nil
	return err
}
