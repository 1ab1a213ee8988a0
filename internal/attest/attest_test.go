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

package attest

import (
	"crypto/rand"
	"testing"

	"github.com/google/ddrtest/api"
	"golang.org/x/mod/sumdb/note"
)

func keys(t *testing.T, name string) (note.Signer, note.Verifier) {
	t.Helper()
	skey, vkey, err := note.GenerateKey(rand.Reader, name)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	s, err := note.NewSigner(skey)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	v, err := note.NewVerifier(vkey)
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return s, v
}

func testRun() api.RunReport {
	return api.RunReport{
		ID:     "abc123",
		Device: "stm32mp135f-dk",
		Regions: []api.RegionReport{
			{Window: api.Window{Name: "ddr", Base: 0xc0000000, Length: 0x20000000}},
			{Window: api.Window{Name: "sysram", Base: 0x2ffe0000, Length: 0x20000}, Seed: 7, Dropped: 3},
		},
	}
}

func TestText(t *testing.T) {
	want := "ddrtest run v0\nabc123\nstm32mp135f-dk\n" +
		"ddr 0xc0000000 0x20000000 0x00000000 ok 0\n" +
		"sysram 0x2ffe0000 0x20000 0x00000007 FAIL 3\n"
	if got := Text(testRun()); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestSignVerify(t *testing.T) {
	s, v := keys(t, "station-1")
	_, other := keys(t, "station-2")
	r := testRun()

	msg, err := Sign(r, s)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := Verify(msg, r, v); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if err := Verify(msg, r, other); err == nil {
		t.Error("Verify with another station's key succeeded")
	}

	changed := testRun()
	changed.Regions[0].Dropped = 1
	if err := Verify(msg, changed, v); err == nil {
		t.Error("Verify of a different report succeeded")
	}

	r.ID = ""
	if _, err := Sign(r, s); err == nil {
		t.Error("Sign of a run without ID succeeded")
	}
}

func TestOpenRejectsOtherNotes(t *testing.T) {
	s, v := keys(t, "station-1")
	msg, err := note.Sign(&note.Note{Text: "checkpoint\n1\n"}, s)
	if err != nil {
		t.Fatalf("note.Sign: %v", err)
	}
	if _, err := Open(msg, v); err == nil {
		t.Error("Open of a non-attestation note succeeded")
	}
}
