// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package osv queries the OSV.dev vulnerability database, one request per
// dependency. The client is fail-soft: a transport error is returned to the
// caller, which records it per-package and keeps scanning.
package osv

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/osv-scanner/pkg/models"

	"github.com/bonial-oss/depscan/internal/types"
)

const (
	defaultBaseURL  = "https://api.osv.dev/v1/query"
	maxResponseSize = 50 * 1024 * 1024 // 50 MB
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// QueryResponse is the body of an OSV /v1/query response.
type QueryResponse struct {
	Vulns []models.Vulnerability `json:"vulns"`
}

// queryRequest is the body of an OSV /v1/query request.
type queryRequest struct {
	Package struct {
		Name      string `json:"name"`
		Ecosystem string `json:"ecosystem"`
	} `json:"package"`
	Version string `json:"version,omitempty"`
}

// Client queries OSV.dev with optional exponential-backoff retry.
type Client struct {
	baseURL string
	http    *http.Client
	retries uint64
}

// NewClient creates an OSV client. retries is the number of additional
// attempts after a failed request; 0 means a single attempt.
func NewClient(retries int) *Client {
	if retries < 0 {
		retries = 0
	}
	return &Client{
		baseURL: defaultBaseURL,
		http:    httpClient,
		retries: uint64(retries),
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(baseURL string, retries int) *Client {
	c := NewClient(retries)
	c.baseURL = baseURL
	return c
}

// Query fetches the raw OSV response for one dependency. The returned bytes
// are the verbatim response body, suitable for caching; Decode parses them.
func (c *Client) Query(ctx context.Context, dep types.Dependency) ([]byte, error) {
	var req queryRequest
	req.Package.Name = dep.CanonicalName()
	req.Package.Ecosystem = string(dep.Ecosystem)
	req.Version = dep.Version

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling OSV query: %w", err)
	}

	var data []byte
	op := func() error {
		var opErr error
		data, opErr = c.post(ctx, body)
		return opErr
	}
	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.retries), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("querying OSV for %s: %w", dep, err)
	}
	return data, nil
}

// post performs a single query attempt.
func (c *Client) post(ctx context.Context, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.baseURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return data, nil
}

// Decode parses a raw query response body. An empty or "{}" body decodes to
// a response with no advisories, which is how OSV reports a clean package.
func Decode(data []byte) (QueryResponse, error) {
	var resp QueryResponse
	if len(data) == 0 {
		return resp, nil
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return QueryResponse{}, fmt.Errorf("unmarshaling OSV response: %w", err)
	}
	return resp, nil
}
