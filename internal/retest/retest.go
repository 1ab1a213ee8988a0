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

// Package retest re-reads failed words to separate transient faults, such as
// marginal timing or noise, from persistent ones, such as stuck bits.
//
// Retesting only reads; memory is never rewritten.
package retest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/memtest"
)

const (
	// DefaultAttempts is used when Options.Attempts is zero.
	DefaultAttempts = 3
	// DefaultInitialInterval is used when Options.InitialInterval is zero.
	DefaultInitialInterval = 10 * time.Millisecond
)

var errMismatch = errors.New("word still differs")

// Options controls retesting.
type Options struct {
	// Attempts is the number of re-reads of each word.
	Attempts int
	// InitialInterval is the delay before the second re-read. The delay
	// grows exponentially from there.
	InitialInterval time.Duration
}

func (o Options) backOff(ctx context.Context) backoff.BackOff {
	attempts := o.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = o.InitialInterval
	if eb.InitialInterval <= 0 {
		eb.InitialInterval = DefaultInitialInterval
	}
	eb.MaxInterval = 100 * eb.InitialInterval
	eb.MaxElapsedTime = 0
	eb.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)
}

// Classify re-reads the word behind each verify pass failure in fs and sets
// its Class. Offsets are relative to r. A word which reads back as expected
// at least once is Transient; otherwise it is Persistent. Write pass failures
// are left Unclassified, as the readback there races the write itself.
func Classify(ctx context.Context, r memtest.Region, fs []api.Failure, opts Options) error {
	for i := range fs {
		f := &fs[i]
		if f.Pass != api.VerifyPass {
			continue
		}
		op := func() error {
			v, err := r.ReadWord(f.Offset)
			if err != nil {
				return backoff.Permanent(err)
			}
			if v != f.Expected {
				glog.V(2).Infof("Retest %s: read 0x%08x", f, v)
				return errMismatch
			}
			return nil
		}
		switch err := backoff.Retry(op, opts.backOff(ctx)); {
		case err == nil:
			f.Class = api.Transient
		case errors.Is(err, errMismatch):
			f.Class = api.Persistent
		default:
			return fmt.Errorf("retest of %s: %w", f, err)
		}
		glog.V(1).Infof("Retest %s: %s", f, f.Class)
	}
	return nil
}
