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

// Package fdt discovers the memory windows described by a flattened device
// tree, so a board's DDR can be tested without hard-coding its address map.
package fdt

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/golang/glog"
	"github.com/google/ddrtest/api"
	"github.com/u-root/u-root/pkg/dt"
)

// MaxWindow is the largest window returned; larger banks are split.
const MaxWindow = 1 << 31

// Root node defaults when the cell counts are not given.
const (
	defaultAddressCells = 2
	defaultSizeCells    = 1
)

// MemoryWindows reads a device tree blob from r and returns a window for
// every range in the reg property of its memory nodes, in tree order.
func MemoryWindows(r io.ReadSeeker) ([]api.Window, error) {
	t, err := dt.ReadFDT(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read device tree: %w", err)
	}
	if t.RootNode == nil {
		return nil, fmt.Errorf("device tree has no root node")
	}
	return memoryWindows(t.RootNode)
}

func memoryWindows(root *dt.Node) ([]api.Window, error) {
	ac, err := cells(root, "#address-cells", defaultAddressCells)
	if err != nil {
		return nil, err
	}
	sc, err := cells(root, "#size-cells", defaultSizeCells)
	if err != nil {
		return nil, err
	}
	if ac < 1 || ac > 2 || sc < 1 || sc > 2 {
		return nil, fmt.Errorf("unsupported cell counts: #address-cells=%d #size-cells=%d", ac, sc)
	}

	var ws []api.Window
	for _, n := range root.Children {
		if !isMemory(n) {
			continue
		}
		reg, ok := property(n, "reg")
		if !ok {
			glog.Warningf("Memory node %q has no reg property", n.Name)
			continue
		}
		entry := 4 * (ac + sc)
		if len(reg)%entry != 0 {
			return nil, fmt.Errorf("node %q: reg length %d is not a multiple of %d", n.Name, len(reg), entry)
		}
		var banks []api.Window
		for ; len(reg) > 0; reg = reg[entry:] {
			base := readCells(reg, ac)
			size := readCells(reg[4*ac:], sc) &^ 3
			for size > 0 {
				l := size
				if l > MaxWindow {
					l = MaxWindow
				}
				banks = append(banks, api.Window{Base: base, Length: uint32(l)})
				base += l
				size -= l
			}
		}
		for i := range banks {
			banks[i].Name = n.Name
			if len(banks) > 1 {
				banks[i].Name = fmt.Sprintf("%s.%d", n.Name, i)
			}
			glog.V(1).Infof("Found memory window %s", banks[i])
		}
		ws = append(ws, banks...)
	}
	return ws, nil
}

func isMemory(n *dt.Node) bool {
	if v, ok := property(n, "device_type"); ok {
		return strings.TrimRight(string(v), "\x00") == "memory"
	}
	return n.Name == "memory" || strings.HasPrefix(n.Name, "memory@")
}

func property(n *dt.Node, name string) ([]byte, bool) {
	for _, p := range n.Properties {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

func cells(n *dt.Node, name string, def int) (int, error) {
	v, ok := property(n, name)
	if !ok {
		return def, nil
	}
	if len(v) != 4 {
		return 0, fmt.Errorf("%s has length %d, want 4", name, len(v))
	}
	return int(binary.BigEndian.Uint32(v)), nil
}

func readCells(b []byte, n int) uint64 {
	var v uint64
	for i := 0; i < n; i++ {
		v = v<<32 | uint64(binary.BigEndian.Uint32(b[4*i:]))
	}
	return v
}
