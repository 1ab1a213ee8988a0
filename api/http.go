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

package api

const (
	// HTTPRuns is the path of the URL to list (GET) or submit (POST) runs.
	HTTPRuns = "ddrtest/v0/runs"
	// HTTPAttestationSuffix is appended to a run's URL to fetch its signed
	// summary.
	HTTPAttestationSuffix = "attestation"
)

// SubmitRunRequest is POSTed to HTTPRuns.
type SubmitRunRequest struct {
	Report RunReport
	// Attestation is an optional signed note over the report summary.
	Attestation []byte
}

// SubmitRunResponse is returned for a successful SubmitRunRequest.
type SubmitRunResponse struct {
	ID string
}
