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

// Package impl is the implementation of the ddrtest command.
package impl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/internal/attest"
	"github.com/google/ddrtest/internal/client"
	"github.com/google/ddrtest/internal/config"
	"github.com/google/ddrtest/internal/report"
	"github.com/google/ddrtest/internal/results"
	"github.com/google/ddrtest/internal/retest"
	"github.com/google/ddrtest/memtest"
	"github.com/google/ddrtest/regions/buffer"
	"github.com/google/ddrtest/regions/fdt"
	"golang.org/x/mod/sumdb/note"
	"golang.org/x/sync/errgroup"

	_ "github.com/mattn/go-sqlite3" // Load drivers for sqlite3
)

// Modes select which passes are run.
const (
	ModeRun    = "run"
	ModeWrite  = "write"
	ModeVerify = "verify"
)

// ErrMemoryFault is returned by Main when any window failed.
var ErrMemoryFault = errors.New("memory test failed")

// Opts are the options for a run (specified in ddrtest.go).
type Opts struct {
	// PlanFile is a YAML plan. If empty, Plan is used instead.
	PlanFile string
	// Plan is used when PlanFile is not set.
	Plan config.Plan
	// FDTFile, if set, replaces the plan's regions with the memory nodes
	// of this device tree blob.
	FDTFile string

	// Target is one of the Target constants.
	Target string
	// Mode is one of the Mode constants.
	Mode string
	// HexFile is read by the ihex target in verify mode, and written
	// otherwise.
	HexFile string
	// BlockDevice and BlockSize configure the block target.
	BlockDevice string
	BlockSize   int
	// BlockBuffered writes each block once per pass instead of once per
	// word, sparing flash media at the cost of most write readbacks.
	BlockBuffered bool

	// Parallel is the number of windows exercised at once.
	Parallel int
	// Settle is the number of SettleInterval ticks to count down before
	// touching memory.
	Settle         int
	SettleInterval time.Duration
	// DumpWords words from the start of each window are listed to DumpOut
	// after testing.
	DumpWords int
	DumpOut   io.Writer

	// ReportFile receives the report and attestation as JSON.
	ReportFile string
	// Signer, if set, signs the run.
	Signer note.Signer
	// DBFile is a sqlite3 database to store the run in.
	DBFile string
	// ServerURL is a results server to submit the run to.
	ServerURL string
}

// Main runs the plan and publishes the outcome. It returns an error wrapping
// ErrMemoryFault if any window failed.
func Main(ctx context.Context, opts Opts) error {
	rep, err := Run(ctx, opts)
	if err != nil {
		return err
	}
	if err := publish(ctx, opts, rep); err != nil {
		return err
	}
	if !rep.OK() {
		return fmt.Errorf("%w:\n%s", ErrMemoryFault, rep.Summary())
	}
	glog.Infof("DDR test done.\n%s", rep.Summary())
	return nil
}

// loadPlan resolves the plan to run from opts.
func loadPlan(opts Opts) (config.Plan, error) {
	p := opts.Plan
	if len(opts.PlanFile) > 0 {
		var err error
		if p, err = config.Load(opts.PlanFile); err != nil {
			return config.Plan{}, err
		}
	}
	if len(opts.FDTFile) > 0 {
		f, err := os.Open(opts.FDTFile)
		if err != nil {
			return config.Plan{}, fmt.Errorf("failed to open device tree: %w", err)
		}
		defer f.Close()
		if p.Regions, err = fdt.MemoryWindows(f); err != nil {
			return config.Plan{}, err
		}
	}
	if err := p.Validate(); err != nil {
		return config.Plan{}, fmt.Errorf("invalid plan: %w", err)
	}
	return p, nil
}

// Run exercises every window of the plan and returns the report. Faults are
// recorded in the report; only problems with the setup are errors.
func Run(ctx context.Context, opts Opts) (api.RunReport, error) {
	plan, err := loadPlan(opts)
	if err != nil {
		return api.RunReport{}, err
	}
	switch opts.Mode {
	case ModeRun, ModeWrite, ModeVerify:
	case "":
		opts.Mode = ModeRun
	default:
		return api.RunReport{}, fmt.Errorf("unknown mode %q", opts.Mode)
	}
	t, err := newTarget(opts)
	if err != nil {
		return api.RunReport{}, err
	}
	id, err := results.NewID()
	if err != nil {
		return api.RunReport{}, err
	}

	if err := settle(ctx, opts.Settle, opts.SettleInterval); err != nil {
		return api.RunReport{}, err
	}

	x := &runner{opts: opts, plan: plan, t: t, c: &report.Collector{}}
	rep := api.RunReport{
		ID:      id,
		Device:  plan.Device,
		Started: time.Now().UTC(),
		Regions: make([]api.RegionReport, len(plan.Regions)),
	}
	g, gctx := errgroup.WithContext(ctx)
	parallel := opts.Parallel
	if parallel < 1 {
		parallel = 1
	}
	g.SetLimit(parallel)
	for i, w := range plan.Regions {
		i, w := i, w
		g.Go(func() error {
			rep.Regions[i] = x.region(gctx, w)
			return nil
		})
	}
	g.Wait()
	rep.Finished = time.Now().UTC()
	if err := t.finish(); err != nil {
		return rep, err
	}
	if f, ok := x.c.First(); ok {
		glog.Warningf("First failure: %s (%s pass)", f, f.Pass)
	}
	return rep, ctx.Err()
}

// settle counts down before the test, giving power and clocks time to
// stabilise after bring-up.
func settle(ctx context.Context, n int, interval time.Duration) error {
	for i := 1; i <= n; i++ {
		glog.Infof("Will verify %d ...", i)
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

type runner struct {
	opts Opts
	plan config.Plan
	t    target
	c    *report.Collector

	dumpMu sync.Mutex
}

func (x *runner) region(ctx context.Context, w api.Window) api.RegionReport {
	r, release, err := x.t.open(w)
	if err != nil {
		glog.Errorf("%s: %v", w, err)
		rr := report.Region(w, x.plan.Seed, nil, err)
		report.Log(rr)
		return rr
	}
	defer func() {
		if err := release(); err != nil {
			glog.Warningf("%s: release: %v", w, err)
		}
	}()

	opts := x.plan.Options()
	opts.Sink = report.Tee(report.LogSink(w), x.c.Sink(w))
	opts.Progress = report.LogProgress(w)
	glog.Infof("%s: %s with seed 0x%08x", w, x.opts.Mode, opts.Seed)
	res, err := exercise(ctx, x.opts.Mode, r, opts)
	rr := report.Region(w, opts.Seed, res, err)

	if a := x.plan.Retest.Attempts; a > 0 && err == nil && len(rr.Failures) > 0 {
		ro := retest.Options{Attempts: a, InitialInterval: x.plan.Retest.InitialInterval}
		if err := retest.Classify(ctx, r, rr.Failures, ro); err != nil {
			glog.Warningf("%s: retest: %v", w, err)
		}
	}
	if x.opts.DumpWords > 0 {
		x.dump(w, r)
	}
	report.Log(rr)
	return rr
}

func (x *runner) dump(w api.Window, r memtest.Region) {
	out := x.opts.DumpOut
	if out == nil {
		out = os.Stdout
	}
	x.dumpMu.Lock()
	defer x.dumpMu.Unlock()
	fmt.Fprintf(out, "%s:\n", w)
	if err := buffer.Dump(out, r, x.opts.DumpWords); err != nil {
		glog.Warningf("%s: dump: %v", w, err)
	}
}

func exercise(ctx context.Context, mode string, r memtest.Region, opts memtest.Options) ([]memtest.Result, error) {
	switch mode {
	case ModeWrite:
		res, err := memtest.WritePattern(ctx, r, opts)
		return []memtest.Result{res}, err
	case ModeVerify:
		res, err := memtest.VerifyPattern(ctx, r, opts)
		return []memtest.Result{res}, err
	}
	rep, err := memtest.Run(ctx, r, opts)
	return rep.Passes(), err
}

// publish signs the run and sends it wherever opts asks.
func publish(ctx context.Context, opts Opts, rep api.RunReport) error {
	var att []byte
	if opts.Signer != nil {
		var err error
		if att, err = attest.Sign(rep, opts.Signer); err != nil {
			return err
		}
	}
	if len(opts.ReportFile) > 0 {
		b, err := json.MarshalIndent(api.SubmitRunRequest{Report: rep, Attestation: att}, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		if err := os.WriteFile(opts.ReportFile, b, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if len(opts.DBFile) > 0 {
		s, err := results.Open("sqlite3", opts.DBFile)
		if err != nil {
			return err
		}
		defer s.Close()
		if _, err := s.AddRun(ctx, rep, att); err != nil {
			return fmt.Errorf("failed to store run: %w", err)
		}
		glog.Infof("Stored run %s in %s", rep.ID, opts.DBFile)
	}
	if len(opts.ServerURL) > 0 {
		c, err := client.New(opts.ServerURL)
		if err != nil {
			return err
		}
		id, err := c.Submit(ctx, rep, att)
		if err != nil {
			return err
		}
		glog.Infof("Submitted run %s to %s", id, opts.ServerURL)
	}
	return nil
}
