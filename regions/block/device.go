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

// Package block exercises SD/eMMC style block storage with the PRBS pattern.
//
// A block range is presented as a word region, so the same write and verify
// passes used on DDR can be pointed at a card. These are low-level
// primitives: the blocks under test are overwritten.
package block

import "fmt"

// MaxTransferBytes is the largest single transfer issued to a Card.
// Larger requests are split so a transfer always fits in the controller's
// DMA buffer.
var MaxTransferBytes = 32 * 1024

// BlockReaderWriter is block storage addressed by logical block number.
type BlockReaderWriter interface {
	BlockSize() uint
	ReadBlocks(lba uint, b []byte) error
	WriteBlocks(lba uint, b []byte) error
}

// Card is the controller interface a Device drives, as implemented by the
// tamago usdhc driver.
type Card interface {
	ReadBlocks(lba int, buf []byte) error
	WriteBlocks(lba int, buf []byte) error
}

// Device adapts a Card into a BlockReaderWriter, hiding the transfer size
// limit.
type Device struct {
	Card Card
	// Size is the card's block size in bytes.
	Size int
}

var _ BlockReaderWriter = &Device{}

// BlockSize returns the size in bytes of each block on the card.
func (d *Device) BlockSize() uint {
	return uint(d.Size)
}

// WriteBlocks writes b to the card starting at block lba.
// A partial final block is padded with zeroes.
func (d *Device) WriteBlocks(lba uint, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if r := len(b) % d.Size; r != 0 {
		b = append(b[:len(b):len(b)], make([]byte, d.Size-r)...)
	}
	return d.chunk(lba, b, d.Card.WriteBlocks)
}

// ReadBlocks reads from the card starting at block lba into b, which must be
// a whole number of blocks long.
func (d *Device) ReadBlocks(lba uint, b []byte) error {
	if len(b)%d.Size != 0 {
		return fmt.Errorf("read of 0x%x bytes is not a multiple of the 0x%x byte block size", len(b), d.Size)
	}
	return d.chunk(lba, b, d.Card.ReadBlocks)
}

func (d *Device) chunk(lba uint, b []byte, xfer func(int, []byte) error) error {
	max := MaxTransferBytes - MaxTransferBytes%d.Size
	if max <= 0 {
		max = d.Size
	}
	for len(b) > 0 {
		n := len(b)
		if n > max {
			n = max
		}
		if err := xfer(int(lba), b[:n]); err != nil {
			return fmt.Errorf("block 0x%x: %w", lba, err)
		}
		b = b[n:]
		lba += uint(n / d.Size)
	}
	return nil
}
