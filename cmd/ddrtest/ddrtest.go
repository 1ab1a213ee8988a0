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

// ddrtest exercises physical memory with a PRBS-31 pattern: it writes the
// pattern over each window, reading every word back, then verifies the whole
// window and reports every mismatching word.
package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/cmd/ddrtest/impl"
	"github.com/google/ddrtest/internal/attest"
	"github.com/google/ddrtest/internal/config"
	"golang.org/x/mod/sumdb/note"
)

var (
	planFile = flag.String("plan", "", "YAML test plan. If unset, a single window is taken from --name, --base and --length")
	fdtFile  = flag.String("fdt", "", "Device tree blob whose memory nodes replace the plan's windows")
	name     = flag.String("name", "ddr", "Name of the window under test")
	base     = flag.Uint64("base", 0xc0000000, "Physical address of the window under test")
	length   = flag.Uint("length", 512*1024*1024, "Length in bytes of the window under test")
	device   = flag.String("device", "", "Identifier of the board under test, recorded in the report")

	seed        = flag.Uint("seed", 0, "First pattern state")
	maxFailures = flag.Int("max_failures", 0, "Cap on failures kept per pass, 0 for no cap")
	abortWrite  = flag.Bool("abort_on_write_failure", false, "Stop a window's write pass at its first failure")
	retention   = flag.Duration("retention_delay", 0, "Pause between the write and verify passes")
	progress    = flag.Uint("progress_interval", 0, "Bytes between progress lines, default 1MiB")
	retests     = flag.Int("retest", 0, "Re-read each failing word this many times to classify it")

	target        = flag.String("target", impl.TargetDevMem, "Memory to test: buffer, devmem, ihex or block")
	mode          = flag.String("mode", impl.ModeRun, "Passes to run: run, write or verify")
	hexFile       = flag.String("hex_file", "", "Intel HEX file read in verify mode and written otherwise by the ihex target")
	blockDevice   = flag.String("block_device", "", "Device or image file for the block target")
	blockSize     = flag.Int("block_size", 512, "Block size of --block_device")
	blockBuffered = flag.Bool("block_buffered", false, "Write each block of --block_device once per pass rather than once per word")

	parallel  = flag.Int("parallel", 1, "Number of windows tested at once")
	settle    = flag.Int("settle", 0, "Seconds to count down before testing")
	dumpWords = flag.Int("dump_words", 0, "Words from the start of each window to list after testing")

	reportFile = flag.String("report_file", "", "Write the report as JSON to this file")
	signingKey = flag.String("signing_key_file", "", "Note signer key file used to sign the report")
	dbFile     = flag.String("db_file", "", "sqlite3 database to store the report in")
	serverURL  = flag.String("server_url", "", "Results server to submit the report to")
)

func main() {
	flag.Parse()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *length > math.MaxUint32 {
		glog.Exitf("--length %d does not fit in 32 bits; split the window with --plan", *length)
	}

	var signer note.Signer
	if len(*signingKey) > 0 {
		var err error
		if signer, err = attest.LoadSigner(*signingKey); err != nil {
			glog.Exit(err)
		}
	}

	if err := impl.Main(ctx, impl.Opts{
		PlanFile: *planFile,
		Plan: config.Plan{
			Device:              *device,
			Seed:                uint32(*seed),
			ProgressInterval:    uint32(*progress),
			MaxFailures:         *maxFailures,
			AbortOnWriteFailure: *abortWrite,
			RetentionDelay:      *retention,
			Retest:              config.Retest{Attempts: *retests},
			Regions:             []api.Window{{Name: *name, Base: *base, Length: uint32(*length)}},
		},
		FDTFile:        *fdtFile,
		Target:         *target,
		Mode:           *mode,
		HexFile:        *hexFile,
		BlockDevice:    *blockDevice,
		BlockSize:      *blockSize,
		BlockBuffered:  *blockBuffered,
		Parallel:       *parallel,
		Settle:         *settle,
		SettleInterval: time.Second,
		DumpWords:      *dumpWords,
		ReportFile:     *reportFile,
		Signer:         signer,
		DBFile:         *dbFile,
		ServerURL:      *serverURL,
	}); err != nil {
		glog.Exitf("%v", err)
	}
}
