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

// Package attest signs and verifies run summaries as notes, so a stored
// result can be tied to the station that produced it.
package attest

import (
	"fmt"
	"strings"

	"github.com/google/ddrtest/api"
	"golang.org/x/mod/sumdb/note"
)

// Header is the first line of every attestation.
const Header = "ddrtest run v0"

// Text returns the body which is signed for r.
func Text(r api.RunReport) string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "%s\n%s\n%s\n", Header, r.ID, r.Device)
	b.WriteString(r.Summary())
	return b.String()
}

// Sign returns r's summary as a note signed by s.
func Sign(r api.RunReport, s note.Signer) ([]byte, error) {
	if r.ID == "" {
		return nil, fmt.Errorf("run has no ID")
	}
	msg, err := note.Sign(&note.Note{Text: Text(r)}, s)
	if err != nil {
		return nil, fmt.Errorf("failed to sign run %q: %w", r.ID, err)
	}
	return msg, nil
}

// Open verifies msg with v and returns the signed text.
func Open(msg []byte, v note.Verifier) (string, error) {
	n, err := note.Open(msg, note.VerifierList(v))
	if err != nil {
		return "", fmt.Errorf("failed to open attestation: %w", err)
	}
	if !strings.HasPrefix(n.Text, Header+"\n") {
		return "", fmt.Errorf("not a run attestation: %q", firstLine(n.Text))
	}
	return n.Text, nil
}

// Verify checks that msg is signed by v and attests to r.
func Verify(msg []byte, r api.RunReport, v note.Verifier) error {
	text, err := Open(msg, v)
	if err != nil {
		return err
	}
	if want := Text(r); text != want {
		return fmt.Errorf("attestation does not match run %q", r.ID)
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
