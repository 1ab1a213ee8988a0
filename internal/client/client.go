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

// Package client talks to the results server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v4"
	"github.com/golang/glog"
	"github.com/google/ddrtest/api"
)

// MaxRetries is the number of times a failed submission is retried.
const MaxRetries = 3

// Client is an HTTP client for the results server.
type Client struct {
	// URL is the base URL of the server.
	URL *url.URL
	// HTTPClient is used for requests, or http.DefaultClient if nil.
	HTTPClient *http.Client
}

// New returns a Client for the server at base.
func New(base string) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", base, err)
	}
	return &Client{URL: u}, nil
}

func (c *Client) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// StatusError is returned when the server replies with an unexpected status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	u, err := c.URL.Parse(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(bytes.TrimSpace(b))}
	}
	return b, nil
}

// Submit sends a run and its optional attestation to the server, and returns
// the ID the server stored it under. Network errors and server errors are
// retried with backoff; requests the server rejects are not.
func (c *Client) Submit(ctx context.Context, r api.RunReport, attestation []byte) (string, error) {
	body, err := json.Marshal(api.SubmitRunRequest{Report: r, Attestation: attestation})
	if err != nil {
		return "", fmt.Errorf("failed to marshal run: %w", err)
	}
	var resp []byte
	op := func() error {
		var err error
		resp, err = c.do(ctx, http.MethodPost, api.HTTPRuns, body)
		if se, ok := err.(*StatusError); ok && se.Code < 500 {
			return backoff.Permanent(err)
		}
		if err != nil {
			glog.Warningf("Submitting run %q: %v", r.ID, err)
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), MaxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return "", fmt.Errorf("failed to submit run: %w", err)
	}
	var sr api.SubmitRunResponse
	if err := json.Unmarshal(resp, &sr); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return sr.ID, nil
}

// Run fetches a stored run.
func (c *Client) Run(ctx context.Context, id string) (api.RunReport, error) {
	b, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%s", api.HTTPRuns, url.PathEscape(id)), nil)
	if err != nil {
		return api.RunReport{}, err
	}
	var r api.RunReport
	if err := json.Unmarshal(b, &r); err != nil {
		return api.RunReport{}, fmt.Errorf("failed to decode run: %w", err)
	}
	return r, nil
}

// Attestation fetches the signed summary of a stored run.
func (c *Client) Attestation(ctx context.Context, id string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%s/%s", api.HTTPRuns, url.PathEscape(id), api.HTTPAttestationSuffix), nil)
}
