// Package transport is the HTTP boundary of the sync engine.
//
// The remote endpoint speaks a small JSON protocol:
//
//	GET  <endpoint>?since=<timestamp>  -> JSON array of session records
//	POST <endpoint> {"items": [...]}   -> {"upserted": <int>}
//
// Every request carries the shared sync token. Anything that is not a
// 2xx JSON response is a transport failure; the engine treats it as a
// total failure of the current phase and leaves its cursor alone.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dojolog/dojo/internal/journal"
)

const (
	// tokenHeader carries the static shared secret on every request.
	tokenHeader = "X-Sync-Token"

	userAgent = "dojo-sync/1.0"

	// requestTimeout bounds each exchange; exceeding it is a transport
	// failure like any other.
	requestTimeout = 30 * time.Second

	// maxErrorBody limits how much of a failing response body is
	// carried into the error message.
	maxErrorBody = 500
)

// Client talks to a single sync endpoint with a static token.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New creates a transport client for the given endpoint URL and shared
// token.
func New(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// pushRequest is the POST body envelope.
type pushRequest struct {
	Items []*journal.Session `json:"items"`
}

// pushResponse is the expected POST reply.
type pushResponse struct {
	Upserted int `json:"upserted"`
}

// Push submits a batch of local changes and returns how many records
// the server reports as upserted.
func (c *Client) Push(ctx context.Context, items []*journal.Session) (int, error) {
	body, err := json.Marshal(pushRequest{Items: items})
	if err != nil {
		return 0, fmt.Errorf("failed to encode push batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build push request: %w", err)
	}
	c.setHeaders(req)

	var reply pushResponse
	if err := c.do(req, &reply); err != nil {
		return 0, err
	}
	return reply.Upserted, nil
}

// Pull fetches every remote record changed strictly after since.
// Tombstones are included so deletions propagate.
func (c *Client) Pull(ctx context.Context, since string) ([]*journal.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pull request: %w", err)
	}
	req.URL.RawQuery = url.Values{"since": {since}}.Encode()
	c.setHeaders(req)

	var items []*journal.Session
	if err := c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// do executes the request and decodes a JSON reply into out. A non-2xx
// status or a non-JSON body fails the exchange; the error carries the
// status and a truncated body for diagnosis.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server returned %s: %s", resp.Status, truncate(body))
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return fmt.Errorf("non-JSON response (%s): %s", ct, truncate(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed JSON response: %w: %s", err, truncate(body))
	}
	return nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
