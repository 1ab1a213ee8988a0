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

// Package devmem maps physical memory through /dev/mem.
//
// The mapping is shared and uncached (O_SYNC) so accesses go straight to the
// memory under test rather than to a private copy.
package devmem

import (
	"errors"

	"github.com/google/ddrtest/regions/mmio"
)

// ErrUnsupported is returned by Open on platforms without /dev/mem mapping.
var ErrUnsupported = errors.New("physical memory mapping is not supported on this platform")

// Path is the device Open maps. Tests point it at an ordinary file.
var Path = "/dev/mem"

// Mapping is an open window onto physical memory. Call Close when done.
type Mapping struct {
	*mmio.Window
	mem []byte
}
