// Package fetch implements the read-only client for the results endpoint.
//
// The entry being composed is flattened into query parameters and the endpoint
// answers with a JSON array of rows. The client never retries; callers decide
// what a failure means for the data they already hold.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"dataentry/internal/core"
)

// DefaultEndpoint is the placeholder endpoint the form reads from.
const DefaultEndpoint = "https://jsonplaceholder.typicode.com/posts"

// maxBodyBytes bounds how much of a response body is decoded.
const maxBodyBytes = 4 << 20

var ErrUnexpectedStatus = errors.New("unexpected status")

// Fetcher retrieves the result rows for an entry.
type Fetcher interface {
	Fetch(ctx context.Context, e core.FormEntry) ([]core.ResultRow, error)
}

// Client is an HTTP Fetcher.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ Fetcher = (*Client)(nil)

// NewClient builds a client for endpoint. A nil httpClient gets a pooled
// client with the given overall timeout.
func NewClient(endpoint string, httpClient *http.Client, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint scheme %q: must be http or https", u.Scheme)
	}
	if httpClient == nil {
		httpClient = newHTTPClientWithPooling(timeout)
	}
	return &Client{endpoint: endpoint, http: httpClient}, nil
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch sends the entry as query parameters and decodes the returned rows.
func (c *Client) Fetch(ctx context.Context, e core.FormEntry) ([]core.ResultRow, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	for k, vs := range Query(e) {
		q[k] = vs
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var rows []core.ResultRow
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

// Query flattens an entry into the endpoint's query parameters.
func Query(e core.FormEntry) url.Values {
	return url.Values{
		"date":                {e.ISODate()},
		"time":                {e.Clock()},
		core.FieldCategory:    {e.Category},
		core.FieldSubCategory: {e.SubCategory},
		core.FieldItemName:    {e.ItemName},
		core.FieldQuantity:    {e.Quantity},
		core.FieldTotalPrice:  {e.TotalPrice},
	}
}

func newHTTPClientWithPooling(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
