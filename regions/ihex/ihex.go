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

// Package ihex moves PRBS pattern images in and out of Intel HEX files.
//
// Export produces the image a healthy window holds after a write pass, for
// loading with a debugger or comparing against a capture. Load turns a memory
// dump captured by a debugger back into a region so the verify pass can run
// on a workstation.
package ihex

import (
	"fmt"
	"io"
	"sort"

	"github.com/golang/glog"
	"github.com/google/ddrtest/memtest"
	"github.com/google/ddrtest/prbs"
	"github.com/google/ddrtest/regions/buffer"
	"github.com/marcinbor85/gohex"
)

const (
	lineLength = 16
	padding    = 0xff
)

// Export writes the pattern starting at seed for the window [base,
// base+length) to w as Intel HEX.
func Export(w io.Writer, base, length, seed uint32) error {
	if err := checkWindow(base, length); err != nil {
		return err
	}
	b := make([]byte, length)
	if _, err := prbs.Fill(b, seed); err != nil {
		return err
	}
	return dump(w, &Image{Region: buffer.Wrap(b), Base: base})
}

func dump(w io.Writer, images ...*Image) error {
	mem := gohex.NewMemory()
	for _, i := range images {
		if i.Len() == 0 {
			continue
		}
		if err := mem.AddBinary(i.Base, i.Bytes()); err != nil {
			return fmt.Errorf("failed to add image at 0x%08x: %w", i.Base, err)
		}
	}
	if err := mem.DumpIntelHex(w, lineLength); err != nil {
		return fmt.Errorf("failed to write hex: %w", err)
	}
	return nil
}

func checkWindow(base, length uint32) error {
	if length%4 != 0 {
		return fmt.Errorf("window length 0x%x: %w", length, memtest.ErrLength)
	}
	if uint64(base)+uint64(length) > 1<<32 {
		return fmt.Errorf("window [0x%08x+0x%x] does not fit in 32-bit addresses", base, length)
	}
	return nil
}

// Image is a window of memory held on the host, addressed from Base.
type Image struct {
	*buffer.Region
	Base uint32
}

// NewImage returns a zeroed image of the window [base, base+length).
func NewImage(base, length uint32) (*Image, error) {
	if err := checkWindow(base, length); err != nil {
		return nil, err
	}
	return &Image{Region: buffer.New(length), Base: base}, nil
}

// Load reads Intel HEX from r and returns the window [base, base+length) as
// an Image. Every byte of the window must be present in the input.
func Load(r io.Reader, base, length uint32) (*Image, error) {
	if err := checkWindow(base, length); err != nil {
		return nil, err
	}
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, fmt.Errorf("failed to parse hex: %w", err)
	}
	if err := covered(mem.GetDataSegments(), base, length); err != nil {
		return nil, err
	}
	glog.V(1).Infof("Loaded 0x%x bytes at 0x%08x from hex", length, base)
	return &Image{Region: buffer.Wrap(mem.ToBinary(base, length, padding)), Base: base}, nil
}

// covered returns an error naming the first gap in segs within the window.
func covered(segs []gohex.DataSegment, base, length uint32) error {
	sort.Slice(segs, func(i, j int) bool { return segs[i].Address < segs[j].Address })
	next, end := uint64(base), uint64(base)+uint64(length)
	for _, s := range segs {
		if next >= end {
			break
		}
		lo, hi := uint64(s.Address), uint64(s.Address)+uint64(len(s.Data))
		if lo > next {
			break
		}
		if hi > next {
			next = hi
		}
	}
	if next < end {
		return fmt.Errorf("hex has no data at 0x%08x within window [0x%08x+0x%x]", next, base, length)
	}
	return nil
}

// Save writes the images to w as a single Intel HEX file. The images must
// not overlap.
func Save(w io.Writer, images ...*Image) error {
	return dump(w, images...)
}
