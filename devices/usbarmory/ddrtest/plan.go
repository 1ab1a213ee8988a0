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
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dsoprea/go-ext4"
	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/internal/config"
	"github.com/google/ddrtest/regions/block"
	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
)

const planPath = "/ddrtest.yaml"

// loadPlan returns the plan stored on the uSD card, or a plan covering the
// whole test area if no partition was configured.
func loadPlan() (config.Plan, error) {
	if len(PlanOffset) == 0 {
		p := config.Plan{Device: "usbarmory", Regions: []api.Window{defaultWindow}}
		return p, p.Validate()
	}
	off, err := strconv.ParseInt(PlanOffset, 10, 64)
	if err != nil {
		return config.Plan{}, fmt.Errorf("invalid plan partition offset: %w", err)
	}
	if err := usbarmory.SD.Detect(); err != nil {
		return config.Plan{}, fmt.Errorf("uSD error: %w", err)
	}
	info := usbarmory.SD.Info()
	p := &partition{
		dev:    &block.Device{Card: usbarmory.SD, Size: info.BlockSize},
		Offset: off,
		end:    int64(info.Blocks) * int64(info.BlockSize),
	}
	b, err := p.ReadAll(planPath)
	if err != nil {
		return config.Plan{}, fmt.Errorf("failed to read %s: %w", planPath, err)
	}
	return config.Parse(b)
}

// partition is a read-only view of an ext4 filesystem starting Offset bytes
// into a card.
type partition struct {
	dev    *block.Device
	Offset int64
	end    int64
	pos    int64
}

func (p *partition) Read(b []byte) (int, error) {
	if p.pos >= p.end {
		return 0, io.EOF
	}
	bs := int64(p.dev.Size)
	first := p.pos / bs
	last := (p.pos + int64(len(b)) + bs - 1) / bs
	if max := p.end / bs; last > max {
		last = max
	}
	buf := make([]byte, (last-first)*bs)
	if err := p.dev.ReadBlocks(uint(first), buf); err != nil {
		return 0, err
	}
	n := copy(b, buf[p.pos-first*bs:])
	p.pos += int64(n)
	return n, nil
}

func (p *partition) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = p.Offset + offset
	case io.SeekCurrent:
		pos = p.pos + offset
	case io.SeekEnd:
		pos = p.end + offset
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	if pos < p.Offset || pos > p.end {
		return 0, fmt.Errorf("invalid offset %d (%d)", pos, offset)
	}
	p.pos = pos
	return pos - p.Offset, nil
}

func (p *partition) blockGroupDescriptor(inode int) (*ext4.BlockGroupDescriptor, error) {
	if _, err := p.Seek(ext4.Superblock0Offset, io.SeekStart); err != nil {
		return nil, err
	}
	sb, err := ext4.NewSuperblockWithReader(p)
	if err != nil {
		return nil, err
	}
	bgdl, err := ext4.NewBlockGroupDescriptorListWithReadSeeker(p, sb)
	if err != nil {
		return nil, err
	}
	return bgdl.GetWithAbsoluteInode(inode)
}

// ReadAll returns the contents of the file at path.
func (p *partition) ReadAll(path string) ([]byte, error) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")

	bgd, err := p.blockGroupDescriptor(ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}
	dw, err := ext4.NewDirectoryWalk(p, bgd, ext4.InodeRootDirectory)
	if err != nil {
		return nil, err
	}

	var depth, inode int
	for {
		name, de, err := dw.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		if name != parts[depth] {
			continue
		}
		n := int(de.Data().Inode)
		if bgd, err = p.blockGroupDescriptor(n); err != nil {
			return nil, err
		}
		if depth == len(parts)-1 {
			inode = n
			break
		}
		if dw, err = ext4.NewDirectoryWalk(p, bgd, n); err != nil {
			return nil, err
		}
		depth++
	}
	if inode == 0 {
		return nil, errors.New("file not found")
	}

	in, err := ext4.NewInodeWithReadSeeker(bgd, p, inode)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(ext4.NewInodeReader(ext4.NewExtentNavigatorWithReadSeeker(p, in)))
}
