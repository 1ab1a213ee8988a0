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

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/ddrtest/api"
	"github.com/google/go-cmp/cmp"
)

type fakeServer struct {
	mu       sync.Mutex
	runs     map[string]api.SubmitRunRequest
	failures int
	posts    int
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/"+api.HTTPRuns:
		f.posts++
		if f.failures > 0 {
			f.failures--
			http.Error(w, "try later", http.StatusServiceUnavailable)
			return
		}
		var req api.SubmitRunRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Report.ID == "" {
			http.Error(w, "no ID", http.StatusBadRequest)
			return
		}
		f.runs[req.Report.ID] = req
		json.NewEncoder(w).Encode(api.SubmitRunResponse{ID: req.Report.ID})
	case r.Method == http.MethodGet && r.URL.Path == "/"+api.HTTPRuns+"/r1":
		req, ok := f.runs["r1"]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(req.Report)
	case r.Method == http.MethodGet && r.URL.Path == "/"+api.HTTPRuns+"/r1/"+api.HTTPAttestationSuffix:
		w.Write(f.runs["r1"].Attestation)
	default:
		http.NotFound(w, r)
	}
}

func newTestClient(t *testing.T, f *fakeServer) *Client {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	c, err := New(ts.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.HTTPClient = ts.Client()
	return c
}

func TestSubmitAndFetch(t *testing.T) {
	ctx := context.Background()
	f := &fakeServer{runs: make(map[string]api.SubmitRunRequest), failures: 1}
	c := newTestClient(t, f)

	want := api.RunReport{ID: "r1", Device: "board", Regions: []api.RegionReport{{Window: api.Window{Name: "ddr", Length: 16}, Words: 8}}}
	id, err := c.Submit(ctx, want, []byte("sig"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if id != "r1" {
		t.Errorf("Submit returned %q, want r1", id)
	}
	if f.posts != 2 {
		t.Errorf("server saw %d posts, want 2 (one retry)", f.posts)
	}

	got, err := c.Run(ctx, "r1")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if diff := cmp.Diff(want.Regions, got.Regions); diff != "" || got.ID != want.ID || got.Device != want.Device {
		t.Errorf("Run() = %+v, want %+v (%s)", got, want, diff)
	}
	att, err := c.Attestation(ctx, "r1")
	if err != nil {
		t.Fatalf("Attestation: %v", err)
	}
	if string(att) != "sig" {
		t.Errorf("Attestation() = %q, want sig", att)
	}
}

func TestSubmitRejected(t *testing.T) {
	f := &fakeServer{runs: make(map[string]api.SubmitRunRequest)}
	c := newTestClient(t, f)
	_, err := c.Submit(context.Background(), api.RunReport{}, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadRequest {
		t.Fatalf("Submit() = %v, want 400 StatusError", err)
	}
	if f.posts != 1 {
		t.Errorf("rejected run was posted %d times, want 1", f.posts)
	}
}

func TestRunNotFound(t *testing.T) {
	c := newTestClient(t, &fakeServer{runs: make(map[string]api.SubmitRunRequest)})
	_, err := c.Run(context.Background(), "r1")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusNotFound {
		t.Errorf("Run() = %v, want 404 StatusError", err)
	}
}
