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
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDump(t *testing.T) {
	r := New(24)
	for i, v := range []uint32{0, 1, 3, 7, 0x64636261, 0x7f414243} {
		if err := r.WriteWord(uint32(4*i), v); err != nil {
			t.Fatalf("WriteWord: %v", err)
		}
	}
	for _, test := range []struct {
		desc  string
		words int
		want  string
	}{
		{
			desc:  "none",
			words: 0,
			want:  "",
		}, {
			desc:  "one line",
			words: 4,
			want:  "0x00000000 : 00 00 00 00  01 00 00 00  03 00 00 00  07 00 00 00  ................\n",
		}, {
			desc:  "partial line",
			words: 5,
			want: "0x00000000 : 00 00 00 00  01 00 00 00  03 00 00 00  07 00 00 00  ................\n" +
				"0x00000010 : 61 62 63 64  abcd\n",
		}, {
			desc:  "clamped to region",
			words: 100,
			want: "0x00000000 : 00 00 00 00  01 00 00 00  03 00 00 00  07 00 00 00  ................\n" +
				"0x00000010 : 61 62 63 64  43 42 41 7f  abcdCBA.\n",
		},
	} {
		t.Run(test.desc, func(t *testing.T) {
			var b bytes.Buffer
			if err := r.Dump(&b, test.words); err != nil {
				t.Fatalf("Dump: %v", err)
			}
			if diff := cmp.Diff(test.want, b.String()); diff != "" {
				t.Errorf("Dump diff (-want +got):\n%s", diff)
			}
		})
	}
}
