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

package buffer

import (
	"context"
	"testing"

	"github.com/google/ddrtest/memtest"
	"github.com/google/ddrtest/prbs"
	"github.com/google/go-cmp/cmp"
)

func TestReadWrite(t *testing.T) {
	r := New(8)
	if err := r.WriteWord(4, 0x11223344); err != nil {
		t.Fatalf("WriteWord: %v", err)
	}
	if diff := cmp.Diff([]byte{0, 0, 0, 0, 0x44, 0x33, 0x22, 0x11}, r.Bytes()); diff != "" {
		t.Errorf("backing bytes diff (-want +got):\n%s", diff)
	}
	got, err := r.ReadWord(4)
	if err != nil {
		t.Fatalf("ReadWord: %v", err)
	}
	if got != 0x11223344 {
		t.Errorf("ReadWord(4) = 0x%x, want 0x11223344", got)
	}
	for _, off := range []uint32{2, 8, 0xfffffffc} {
		if _, err := r.ReadWord(off); err == nil {
			t.Errorf("ReadWord(0x%x) succeeded, want error", off)
		}
		if err := r.WriteWord(off, 0); err == nil {
			t.Errorf("WriteWord(0x%x) succeeded, want error", off)
		}
	}
}

func TestPatternMatchesFill(t *testing.T) {
	const size = 4096
	r := New(size)
	rep, err := memtest.Run(context.Background(), r, memtest.Options{Seed: 0})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rep.OK() {
		t.Fatalf("Run = %+v, want ok", rep)
	}
	want := make([]byte, size)
	if _, err := prbs.Fill(want, 0); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	if diff := cmp.Diff(want, r.Bytes()); diff != "" {
		t.Errorf("region differs from prbs.Fill (-want +got):\n%s", diff)
	}

	r.Clear()
	v, err := memtest.VerifyPattern(context.Background(), r, memtest.Options{})
	if err != nil {
		t.Fatalf("VerifyPattern: %v", err)
	}
	if got, want := len(v.Failures), size/4-1; got != want {
		t.Errorf("after Clear got %d failures, want %d", got, want)
	}
}
