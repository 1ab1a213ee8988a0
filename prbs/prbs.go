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

// Package prbs implements the PRBS-31 pseudo-random sequence used to fill and
// check memory.
//
// The generator is deliberately bit-exact with the one in the bare-metal DDR
// test firmware: bits 30 and 27 feed back through an XNOR into bit 0, and the
// top bit of the register is discarded after every step. Memory written by one
// implementation can therefore be verified by the other.
package prbs

import (
	"encoding/binary"
	"fmt"
)

// Next returns the state following sr.
func Next(sr uint32) uint32 {
	bit30 := (sr >> 30) & 1
	bit27 := (sr >> 27) & 1

	sr <<= 1
	sr |= ^(bit30 ^ bit27) & 1

	// Discard the MSB.
	sr <<= 1
	sr >>= 1

	return sr
}

// Generator walks the sequence starting from a seed.
// The zero value is a generator seeded with 0.
type Generator struct {
	state uint32
}

// NewGenerator returns a generator whose first state is seed.
func NewGenerator(seed uint32) *Generator {
	return &Generator{state: seed}
}

// State returns the current state without advancing.
func (g *Generator) State() uint32 {
	return g.state
}

// Step returns the current state and advances the generator.
func (g *Generator) Step() uint32 {
	s := g.state
	g.state = Next(s)
	return s
}

// Sequence returns the first n states of the sequence starting at seed.
func Sequence(seed uint32, n int) []uint32 {
	r := make([]uint32, n)
	g := NewGenerator(seed)
	for i := range r {
		r[i] = g.Step()
	}
	return r
}

// Fill writes consecutive states starting at seed into b as little-endian
// 32-bit words, and returns the state which would follow the last word.
// len(b) must be a multiple of 4.
func Fill(b []byte, seed uint32) (uint32, error) {
	if len(b)%4 != 0 {
		return seed, fmt.Errorf("buffer length %d is not a multiple of 4", len(b))
	}
	g := NewGenerator(seed)
	for i := 0; i < len(b); i += 4 {
		binary.LittleEndian.PutUint32(b[i:], g.Step())
	}
	return g.State(), nil
}
