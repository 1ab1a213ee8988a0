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

package impl

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/memtest"
	"github.com/google/ddrtest/regions/block"
	"github.com/google/ddrtest/regions/buffer"
	"github.com/google/ddrtest/regions/devmem"
	"github.com/google/ddrtest/regions/ihex"
)

// Targets are the supported kinds of memory under test.
const (
	TargetBuffer = "buffer"
	TargetDevMem = "devmem"
	TargetIHex   = "ihex"
	TargetBlock  = "block"
)

// target hands out a region for each window under test.
type target interface {
	// open returns the region for w and a function releasing it.
	open(w api.Window) (memtest.Region, func() error, error)
	// finish is called once after every window has been released.
	finish() error
}

func nop() error { return nil }

func newTarget(opts Opts) (target, error) {
	switch opts.Target {
	case TargetBuffer, "":
		return bufferTarget{}, nil
	case TargetDevMem:
		return devmemTarget{}, nil
	case TargetIHex:
		return newIHexTarget(opts.HexFile, opts.Mode)
	case TargetBlock:
		return newBlockTarget(opts.BlockDevice, opts.BlockSize, opts.BlockBuffered)
	}
	return nil, fmt.Errorf("unknown target %q", opts.Target)
}

// bufferTarget exercises host memory, mostly useful for trying out plans.
type bufferTarget struct{}

func (bufferTarget) open(w api.Window) (memtest.Region, func() error, error) {
	return buffer.New(w.Length), nop, nil
}

func (bufferTarget) finish() error { return nil }

type devmemTarget struct{}

func (devmemTarget) open(w api.Window) (memtest.Region, func() error, error) {
	m, err := devmem.Open(w.Base, w.Length)
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}

func (devmemTarget) finish() error { return nil }

// ihexTarget verifies windows captured in a hex file, or produces one.
type ihexTarget struct {
	path string
	// data is the input file when verifying.
	data []byte

	mu     sync.Mutex
	images []*ihex.Image
}

func newIHexTarget(path, mode string) (*ihexTarget, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("the %s target needs a hex file", TargetIHex)
	}
	t := &ihexTarget{path: path}
	if mode == ModeVerify {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read hex: %w", err)
		}
		t.data = b
	}
	return t, nil
}

func (t *ihexTarget) open(w api.Window) (memtest.Region, func() error, error) {
	if w.Base > 1<<32-1 {
		return nil, nil, fmt.Errorf("window %s is beyond 32-bit hex addressing", w)
	}
	if t.data != nil {
		img, err := ihex.Load(bytes.NewReader(t.data), uint32(w.Base), w.Length)
		if err != nil {
			return nil, nil, err
		}
		return img, nop, nil
	}
	img, err := ihex.NewImage(uint32(w.Base), w.Length)
	if err != nil {
		return nil, nil, err
	}
	t.mu.Lock()
	t.images = append(t.images, img)
	t.mu.Unlock()
	return img, nop, nil
}

func (t *ihexTarget) finish() error {
	if t.data != nil {
		return nil
	}
	sort.Slice(t.images, func(i, j int) bool { return t.images[i].Base < t.images[j].Base })
	f, err := os.Create(t.path)
	if err != nil {
		return fmt.Errorf("failed to create hex: %w", err)
	}
	if err := ihex.Save(f, t.images...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// blockTarget exercises a range of a block device. Window bases are byte
// offsets on the device.
type blockTarget struct {
	f        *block.File
	dev      *block.Device
	buffered bool
}

func newBlockTarget(path string, size int, buffered bool) (*blockTarget, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("the %s target needs a device", TargetBlock)
	}
	if size <= 0 {
		size = 512
	}
	f, err := block.OpenFile(path, size)
	if err != nil {
		return nil, err
	}
	return &blockTarget{f: f, dev: &block.Device{Card: f, Size: size}, buffered: buffered}, nil
}

func (t *blockTarget) open(w api.Window) (memtest.Region, func() error, error) {
	bs := uint64(t.dev.Size)
	if w.Base%bs != 0 || uint64(w.Length)%bs != 0 {
		return nil, nil, fmt.Errorf("window %s is not aligned to %d byte blocks", w, bs)
	}
	newRegion := block.NewRegion
	if t.buffered {
		newRegion = block.NewBufferedRegion
	}
	r, err := newRegion(t.dev, uint(w.Base/bs), uint(uint64(w.Length)/bs))
	if err != nil {
		return nil, nil, err
	}
	return r, r.Flush, nil
}

func (t *blockTarget) finish() error {
	return t.f.Close()
}
