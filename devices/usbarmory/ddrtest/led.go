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
	"time"

	usbarmory "github.com/usbarmory/tamago/board/usbarmory/mk2"
)

var activity bool

// blink flashes the white LED n times.
func blink(n int) {
	for i := 0; i < n; i++ {
		usbarmory.LED("white", true)
		time.Sleep(100 * time.Millisecond)
		usbarmory.LED("white", false)
		time.Sleep(250 * time.Millisecond)
	}
}

// toggleActivity flips the blue LED, as a heartbeat.
func toggleActivity() {
	activity = !activity
	usbarmory.LED("blue", activity)
}
