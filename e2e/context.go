package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// TestContext holds state between test steps.
type TestContext struct {
	harness *Harness

	BaseURL    string
	HTTPClient *http.Client

	LastResponse     *http.Response
	LastResponseBody []byte

	AccountID string
	Ticket    string
	Token     string
}

// Reset binds the context to a fresh harness and clears scenario state.
func (tc *TestContext) Reset(h *Harness) {
	if tc.harness != nil {
		tc.harness.Close()
	}
	tc.harness = h
	tc.BaseURL = h.Server.URL
	tc.HTTPClient = h.Client()
	tc.LastResponse = nil
	tc.LastResponseBody = nil
	tc.AccountID = ""
	tc.Ticket = ""
	tc.Token = ""
}

// Close tears down the bound harness.
func (tc *TestContext) Close() {
	if tc.harness != nil {
		tc.harness.Close()
		tc.harness = nil
	}
}

// POST makes a JSON POST request and stores the response.
func (tc *TestContext) POST(path string, body any, headers map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

// DELETE makes a DELETE request and stores the response.
func (tc *TestContext) DELETE(path string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("make request: %w", err)
	}
	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	return nil
}

// ResponseField extracts a top-level field from the JSON response body.
func (tc *TestContext) ResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("unmarshal response %q: %w", tc.LastResponseBody, err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %q not present in response %q", field, tc.LastResponseBody)
	}
	return value, nil
}
