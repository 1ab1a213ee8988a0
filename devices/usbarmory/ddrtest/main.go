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

// ddrtest is the DDR exerciser as a unikernel for the USB Armory Mk II.
//
// The Go runtime is confined to the lower half of DDR and the upper half is
// handed to the exerciser. Results go to the UART console and to the white
// LED: one blink per write-verify failure, two per verify failure and three
// when the board could not be set up. These are the STM32 bring-up firmware's
// codes.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang/glog"
	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/internal/config"
	"github.com/google/ddrtest/internal/report"
	"github.com/google/ddrtest/internal/retest"
	"github.com/google/ddrtest/memtest"
	"github.com/google/ddrtest/regions/mmio"
	"github.com/usbarmory/tamago/dma"
)

// Set with -ldflags -X.
var (
	Build    string
	Revision string

	// PlanOffset is the byte offset on the uSD card of an ext4 partition
	// holding /ddrtest.yaml. The built-in plan is used if it is unset.
	PlanOffset string
)

const settleSeconds = 5

func init() {
	log.SetFlags(0)
	log.Printf("ddrtest %s (%s)", Revision, Build)
}

func main() {
	// glog has nowhere to write files here.
	flag.Set("logtostderr", "true")
	flag.Parse()

	plan, err := loadPlan()
	if err != nil {
		log.Printf("ddrtest: %v", err)
		halt(report.InitFailureCode)
	}

	for i := 1; i <= settleSeconds; i++ {
		log.Printf("Will verify %d ...", i)
		toggleActivity()
		time.Sleep(time.Second)
	}

	var c report.Collector
	for _, w := range plan.Regions {
		if err := exercise(context.Background(), plan, w, &c); err != nil {
			log.Printf("ddrtest: %s: %v", w, err)
			halt(report.InitFailureCode)
		}
	}

	f, failed := c.First()
	if failed {
		log.Printf("ddrtest: first failure %s", f)
	}
	for i := 0; ; i++ {
		if failed {
			blink(report.BlinkCode(f.Kind))
			time.Sleep(time.Second)
			continue
		}
		log.Printf("Verification done! %d", i)
		toggleActivity()
		time.Sleep(time.Second)
	}
}

func exercise(ctx context.Context, plan config.Plan, w api.Window, c *report.Collector) error {
	if w.Base < testStart || w.End() > testStart+testSize {
		return fmt.Errorf("outside the test area 0x%08x-0x%08x", testStart, testStart+testSize)
	}
	r, err := dma.NewRegion(uint(w.Base), int(w.Length), false)
	if err != nil {
		return fmt.Errorf("failed to claim window: %w", err)
	}
	_, mem := r.Reserve(int(w.Length), 0)
	win, err := mmio.New(mem)
	if err != nil {
		return err
	}

	opts := plan.Options()
	opts.Sink = report.Tee(report.LogSink(w), c.Sink(w), blinkSink{})
	opts.Progress = report.LogProgress(w)
	log.Printf("Writing to %s ...", w)
	rep, err := memtest.Run(ctx, win, opts)
	rr := report.Region(w, plan.Seed, rep.Passes(), err)
	if a := plan.Retest.Attempts; a > 0 && err == nil {
		ro := retest.Options{Attempts: a, InitialInterval: plan.Retest.InitialInterval}
		if err := retest.Classify(ctx, win, rr.Failures, ro); err != nil {
			log.Printf("ddrtest: %s: retest: %v", w, err)
		}
	}
	report.Log(rr)
	glog.Flush()
	return nil
}

// blinkSink signals each failure as it is found.
type blinkSink struct{}

func (blinkSink) Report(f memtest.Failure) {
	blink(report.BlinkCode(f.Kind))
}

// halt blinks code forever.
func halt(code int) {
	for {
		blink(code)
		time.Sleep(time.Second)
	}
}
