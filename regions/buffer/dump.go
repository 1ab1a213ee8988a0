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

package buffer

import (
	"bufio"
	"fmt"
	"io"

	"github.com/google/ddrtest/memtest"
)

const dumpWordsPerLine = 4

// Dump writes the first words words of r as a hex and ASCII listing, four
// words per line, each line prefixed by its byte offset. Bytes are shown in
// memory order.
func Dump(w io.Writer, r memtest.Region, words int) error {
	if max := int(r.Len() / 4); words > max {
		words = max
	}
	bw := bufio.NewWriter(w)
	line := make([]byte, 0, 4*dumpWordsPerLine)
	for i := 0; i < words; i += dumpWordsPerLine {
		line = line[:0]
		fmt.Fprintf(bw, "0x%08x : ", 4*i)
		for j := i; j < i+dumpWordsPerLine && j < words; j++ {
			v, err := r.ReadWord(uint32(4 * j))
			if err != nil {
				return fmt.Errorf("dump at offset 0x%08x: %w", 4*j, err)
			}
			for k := 0; k < 4; k++ {
				c := byte(v >> (8 * k))
				fmt.Fprintf(bw, "%02x ", c)
				line = append(line, c)
			}
			bw.WriteByte(' ')
		}
		for _, c := range line {
			if c < 0x20 || c > 0x7e {
				c = '.'
			}
			bw.WriteByte(c)
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Dump writes a listing of the first words words of the region.
func (r *Region) Dump(w io.Writer, words int) error {
	return Dump(w, r, words)
}
