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

// prbs_hex writes the PRBS-31 pattern a healthy window holds after a write
// pass as an Intel HEX file, for loading with a debugger or comparing
// against a memory capture.
package main

import (
	"flag"
	"math"
	"os"

	"github.com/golang/glog"
	"github.com/google/ddrtest/regions/ihex"
)

var (
	base   = flag.Uint64("base", 0xc0000000, "Address of the first word")
	length = flag.Uint64("length", 1024*1024, "Length of the pattern in bytes")
	seed   = flag.Uint("seed", 0, "First pattern state")
	out    = flag.String("out", "", "Output file, stdout if unset")
)

func main() {
	flag.Parse()
	if *base > math.MaxUint32 || *length > math.MaxUint32 {
		glog.Exit("--base and --length must fit in 32 bits")
	}

	w := os.Stdout
	if len(*out) > 0 {
		f, err := os.Create(*out)
		if err != nil {
			glog.Exitf("Failed to create output: %v", err)
		}
		defer f.Close()
		w = f
	}
	if err := ihex.Export(w, uint32(*base), uint32(*length), uint32(*seed)); err != nil {
		glog.Exitf("Failed to write pattern: %v", err)
	}
	glog.Infof("Wrote 0x%x byte pattern at 0x%08x with seed 0x%08x", *length, *base, *seed)
}
