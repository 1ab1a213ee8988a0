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

// Package impl is the implementation of the generate_keys command.
package impl

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/google/ddrtest/internal/attest"
	"github.com/google/ddrtest/internal/config"
)

// Opts are the options for generating a station key (specified in generate_keys.go).
type Opts struct {
	// KeyName names the station. If empty, the Device of the plan in
	// PlanFile is used, and failing that the host name.
	KeyName  string
	PlanFile string

	// OutPriv receives the key passed to ddrtest --signing_key_file.
	OutPriv string
	// OutPub receives the key passed to ddrtest_server --public_key_file.
	OutPub string
	// Print, if set, receives the signer and verifier keys on two lines.
	Print io.Writer
}

// Main creates a station key pair as opts asks.
func Main(opts Opts) error {
	if opts.Print == nil && (len(opts.OutPriv) == 0 || len(opts.OutPub) == 0) {
		return errors.New("an output for both keys is required")
	}
	station, err := stationName(opts)
	if err != nil {
		return err
	}
	skey, vkey, err := attest.GenerateKey(station)
	if err != nil {
		return err
	}
	if opts.Print != nil {
		fmt.Fprintln(opts.Print, skey)
		fmt.Fprintln(opts.Print, vkey)
	}
	if len(opts.OutPriv) > 0 && len(opts.OutPub) > 0 {
		if err := writeKey(opts.OutPriv, skey, 0o600); err != nil {
			return err
		}
		if err := writeKey(opts.OutPub, vkey, 0o644); err != nil {
			return err
		}
		glog.Infof("Wrote key for station %q to %s and %s", attest.KeyName(station), opts.OutPriv, opts.OutPub)
	}
	return nil
}

func stationName(opts Opts) (string, error) {
	if len(opts.KeyName) > 0 {
		return opts.KeyName, nil
	}
	if len(opts.PlanFile) > 0 {
		p, err := config.Load(opts.PlanFile)
		if err != nil {
			return "", err
		}
		if len(p.Device) > 0 {
			return p.Device, nil
		}
	}
	h, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("no key name given and no host name: %w", err)
	}
	return h, nil
}

// writeKey writes key to a new file. An existing key is never replaced.
func writeKey(path, key string, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("unable to create key file: %w", err)
	}
	if _, err := fmt.Fprintln(f, key); err != nil {
		f.Close()
		return fmt.Errorf("unable to write key file %q: %w", path, err)
	}
	return f.Close()
}
