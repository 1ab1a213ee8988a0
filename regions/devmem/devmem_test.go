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
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/ddrtest/memtest"
	"golang.org/x/sys/unix"
)

func fakeMem(t *testing.T, size int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "mem")
	if err := os.WriteFile(p, make([]byte, size), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	old := Path
	Path = p
	t.Cleanup(func() { Path = old })
	return p
}

func TestOpenRunsPattern(t *testing.T) {
	page := unix.Getpagesize()
	p := fakeMem(t, 3*page)

	// Start mid-page and spill into the next one.
	base := uint64(page + 64)
	length := uint32(page)
	m, err := Open(base, length)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := m.Len(); got != length {
		t.Errorf("Len() = 0x%x, want 0x%x", got, length)
	}
	rep, err := memtest.Run(context.Background(), m, memtest.Options{Seed: 0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.OK() {
		t.Errorf("Run = %+v, want ok", rep)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	for i, want := range []uint32{0, 1, 3, 7, 0xf} {
		if got := binary.LittleEndian.Uint32(b[base+uint64(4*i):]); got != want {
			t.Errorf("word %d in file = 0x%x, want 0x%x", i, got, want)
		}
	}
	if got := binary.LittleEndian.Uint32(b[base-4:]); got != 0 {
		t.Errorf("word before window = 0x%x, want untouched", got)
	}
}

func TestOpenErrors(t *testing.T) {
	fakeMem(t, unix.Getpagesize())
	if _, err := Open(2, 4); err == nil {
		t.Error("Open at unaligned base succeeded")
	}
	Path = filepath.Join(t.TempDir(), "missing")
	if _, err := Open(0, 4); err == nil {
		t.Error("Open of missing device succeeded")
	}
}
