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

package block

import (
	"encoding/binary"
	"fmt"

	"github.com/golang/glog"
	"github.com/google/ddrtest/memtest"
)

// Region presents blocks [start, start+count) of a device as a word region.
//
// Reads are served from a single cached block. By default writes go straight
// through to the device and drop the cache, so the readback that follows each
// write in the write pass comes from the medium rather than from memory. That
// costs one block write per word: a 512 byte block is rewritten 128 times per
// pass, which is slow and wears flash media. A region from NewBufferedRegion
// writes each block once instead.
type Region struct {
	dev   BlockReaderWriter
	start uint
	count uint
	bs    uint

	buf    []byte
	cached uint
	valid  bool

	buffered bool
	dirty    bool
}

var _ memtest.Region = &Region{}

// NewRegion returns a region covering count blocks of dev starting at start.
func NewRegion(dev BlockReaderWriter, start, count uint) (*Region, error) {
	bs := dev.BlockSize()
	if bs == 0 || bs%4 != 0 {
		return nil, fmt.Errorf("block size %d is not a multiple of the word size", bs)
	}
	if uint64(count)*uint64(bs) > 1<<32-4 {
		return nil, fmt.Errorf("%d blocks of %d bytes do not fit a 32-bit region", count, bs)
	}
	glog.V(1).Infof("Block region: %d blocks of %d bytes from lba %d", count, bs, start)
	return &Region{
		dev:   dev,
		start: start,
		count: count,
		bs:    bs,
		buf:   make([]byte, bs),
	}, nil
}

// NewBufferedRegion is like NewRegion, but words are collected in memory and
// a block is written when its last word is written, when another block is
// accessed, or on Flush. Only the readback of a block's last word reaches the
// medium during the write pass; the verify pass still reads every word from
// the device.
func NewBufferedRegion(dev BlockReaderWriter, start, count uint) (*Region, error) {
	r, err := NewRegion(dev, start, count)
	if err != nil {
		return nil, err
	}
	r.buffered = true
	return r, nil
}

// Len implements memtest.Region.
func (r *Region) Len() uint32 {
	return uint32(r.count * r.bs)
}

func (r *Region) load(off uint32) (uint, error) {
	if off%4 != 0 {
		return 0, fmt.Errorf("unaligned offset 0x%x", off)
	}
	if off >= r.Len() {
		return 0, fmt.Errorf("offset 0x%x out of range (length 0x%x)", off, r.Len())
	}
	lba := r.start + uint(off)/r.bs
	if !r.valid || r.cached != lba {
		if err := r.Flush(); err != nil {
			return 0, err
		}
		r.valid = false
		if err := r.dev.ReadBlocks(lba, r.buf); err != nil {
			return 0, fmt.Errorf("failed to read block %d: %w", lba, err)
		}
		r.cached, r.valid = lba, true
	}
	return uint(off) % r.bs, nil
}

// ReadWord implements memtest.Region.
func (r *Region) ReadWord(off uint32) (uint32, error) {
	i, err := r.load(off)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(r.buf[i:]), nil
}

// WriteWord implements memtest.Region. It reads, modifies and writes back
// the whole containing block.
func (r *Region) WriteWord(off uint32, v uint32) error {
	i, err := r.load(off)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(r.buf[i:], v)
	r.dirty = true
	if r.buffered && i+4 < r.bs {
		return nil
	}
	return r.Flush()
}

// Flush writes out a block holding buffered words and drops the cache.
func (r *Region) Flush() error {
	if !r.dirty {
		return nil
	}
	lba := r.cached
	r.dirty, r.valid = false, false
	if err := r.dev.WriteBlocks(lba, r.buf); err != nil {
		return fmt.Errorf("failed to write block %d: %w", lba, err)
	}
	return nil
}
