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

// Package http contains private implementation details for the results server.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/golang/glog"
	"github.com/google/ddrtest/api"
	"github.com/google/ddrtest/internal/attest"
	"github.com/gorilla/mux"
	"golang.org/x/mod/sumdb/note"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// maxBody bounds the size of a submitted run.
const maxBody = 64 << 20

// Store persists run reports.
type Store interface {
	// AddRun stores a run and returns its ID, assigning one if the report
	// has none.
	AddRun(ctx context.Context, r api.RunReport, attestation []byte) (string, error)
	// Run returns a stored run, or a NotFound status.
	Run(ctx context.Context, id string) (api.RunReport, error)
	// Runs lists the stored runs without their region details.
	Runs(ctx context.Context) ([]api.RunReport, error)
	// Attestation returns the signed summary of a run, or a NotFound status.
	Attestation(ctx context.Context, id string) ([]byte, error)
}

// Server is the core handler implementation of the results server.
type Server struct {
	s Store
	v note.Verifier
}

// NewServer creates a new server. If v is not nil, submitted runs must carry
// an attestation signed by v.
func NewServer(s Store, v note.Verifier) *Server {
	return &Server{
		s: s,
		v: v,
	}
}

// submit handles POSTs of new runs.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		http.Error(w, fmt.Sprintf("cannot read request body: %v", err), http.StatusBadRequest)
		return
	}
	var req api.SubmitRunRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, fmt.Sprintf("failed to decode run: %v", err), http.StatusBadRequest)
		return
	}
	if s.v != nil {
		if len(req.Attestation) == 0 {
			http.Error(w, "attestation required", http.StatusBadRequest)
			return
		}
		if err := attest.Verify(req.Attestation, req.Report, s.v); err != nil {
			http.Error(w, fmt.Sprintf("attestation check failed: %v", err), http.StatusBadRequest)
			return
		}
	}
	id, err := s.s.AddRun(r.Context(), req.Report, req.Attestation)
	if err != nil {
		glog.Warningf("failed to store run: %v", err)
		http.Error(w, "failed to store run", httpForCode(status.Code(err)))
		return
	}
	glog.V(1).Infof("Stored run %q from %q (ok=%t)", id, req.Report.Device, req.Report.OK())
	writeJSON(w, api.SubmitRunResponse{ID: id})
}

// getRuns lists all runs.
func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.s.Runs(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to get run list: %v", err), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []api.RunReport{}
	}
	writeJSON(w, runs)
}

// getRun returns a single run.
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, err := s.s.Run(r.Context(), id)
	if err != nil {
		glog.Warningf("failed to get run %q: %v", id, err)
		http.Error(w, "failed to get run", httpForCode(status.Code(err)))
		return
	}
	writeJSON(w, run)
}

// getAttestation returns the signed summary of a run.
func (s *Server) getAttestation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	att, err := s.s.Attestation(r.Context(), id)
	if err != nil {
		glog.Warningf("failed to get attestation for %q: %v", id, err)
		http.Error(w, "failed to get attestation", httpForCode(status.Code(err)))
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write(att); err != nil {
		glog.Errorf("w.Write(): %v", err)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to convert to JSON: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(b); err != nil {
		glog.Errorf("w.Write(): %v", err)
	}
}

// RegisterHandlers registers HTTP handlers for the results endpoints.
func (s *Server) RegisterHandlers(r *mux.Router) {
	idStr := "{id:[a-zA-Z0-9-]+}"
	r.HandleFunc("/"+api.HTTPRuns, s.getRuns).Methods("GET")
	r.HandleFunc("/"+api.HTTPRuns, s.submit).Methods("POST")
	r.HandleFunc(fmt.Sprintf("/%s/%s", api.HTTPRuns, idStr), s.getRun).Methods("GET")
	r.HandleFunc(fmt.Sprintf("/%s/%s/%s", api.HTTPRuns, idStr, api.HTTPAttestationSuffix), s.getAttestation).Methods("GET")
}

func httpForCode(c codes.Code) int {
	switch c {
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition, codes.InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
