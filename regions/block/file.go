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
	"fmt"
	"os"
)

// File is a Card backed by a block device node or an image file.
type File struct {
	F *os.File
	// Size is the block size in bytes.
	Size int
}

// OpenFile opens path for synchronous block access.
func OpenFile(path string, size int) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &File{F: f, Size: size}, nil
}

// ReadBlocks implements Card.
func (f *File) ReadBlocks(lba int, buf []byte) error {
	_, err := f.F.ReadAt(buf, int64(lba)*int64(f.Size))
	return err
}

// WriteBlocks implements Card.
func (f *File) WriteBlocks(lba int, buf []byte) error {
	_, err := f.F.WriteAt(buf, int64(lba)*int64(f.Size))
	return err
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.F.Close()
}
