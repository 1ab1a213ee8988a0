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

//go:build armory
// +build armory

package main

import (
	_ "unsafe"

	"github.com/google/ddrtest/api"
)

// The runtime gets the lower 256MiB of DDR. The upper 256MiB is left alone
// for the exerciser.

//go:linkname ramStart runtime.ramStart
var ramStart uint32 = 0x80000000

//go:linkname ramSize runtime.ramSize
var ramSize uint32 = 0x10000000

const (
	testStart = 0x90000000
	testSize  = 0x10000000
)

// defaultWindow covers the whole test area.
var defaultWindow = api.Window{Name: "ddr", Base: testStart, Length: testSize}
