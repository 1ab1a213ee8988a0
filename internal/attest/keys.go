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
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/mod/sumdb/note"
)

// KeyName turns a station identity, such as a host name or a board serial,
// into a valid note key name.
func KeyName(station string) string {
	return strings.Map(func(r rune) rune {
		if r == '+' || unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, strings.TrimSpace(station))
}

// GenerateKey returns a new signer key and its verifier key for station.
func GenerateKey(station string) (skey, vkey string, err error) {
	name := KeyName(station)
	if name == "" {
		return "", "", fmt.Errorf("empty key name")
	}
	skey, vkey, err = note.GenerateKey(rand.Reader, name)
	if err != nil {
		return "", "", fmt.Errorf("unable to create key %q: %w", name, err)
	}
	return skey, vkey, nil
}

// LoadSigner reads a signer key written by generate_keys.
func LoadSigner(path string) (note.Signer, error) {
	k, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read signing key: %w", err)
	}
	s, err := note.NewSigner(strings.TrimSpace(string(k)))
	if err != nil {
		return nil, fmt.Errorf("invalid signing key in %q: %w", path, err)
	}
	return s, nil
}

// LoadVerifier reads a verifier key written by generate_keys.
func LoadVerifier(path string) (note.Verifier, error) {
	k, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key: %w", err)
	}
	v, err := note.NewVerifier(strings.TrimSpace(string(k)))
	if err != nil {
		return nil, fmt.Errorf("invalid public key in %q: %w", path, err)
	}
	return v, nil
}
