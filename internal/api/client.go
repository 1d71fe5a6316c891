package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Base endpoints for the provider's v3 API.
const (
	ProductionBaseURL = "https://api.signaturit.com/v3"
	SandboxBaseURL    = "https://api.sandbox.signaturit.com/v3"
)

// Options configures the API client.
type Options struct {
	// BaseURL is the API endpoint, without a trailing slash.
	// Default: ProductionBaseURL
	BaseURL string

	// Token is the bearer credential sent with every request.
	Token string

	// PageLimit is the page size used when listing signatures.
	// Default: 100
	PageLimit int

	// Timeout bounds each individual request attempt.
	// Default: 60s
	Timeout time.Duration

	// RetryAttempts is the total number of attempts for retryable statuses.
	// Default: 5
	RetryAttempts int

	// RetryBackoff is the delay before the first retry; it doubles per attempt.
	// Default: 1.5s
	RetryBackoff time.Duration

	// RetryMaxBackoff caps the per-attempt delay.
	// Default: 30s
	RetryMaxBackoff time.Duration
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL:         ProductionBaseURL,
		PageLimit:       100,
		Timeout:         60 * time.Second,
		RetryAttempts:   5,
		RetryBackoff:    1500 * time.Millisecond,
		RetryMaxBackoff: 30 * time.Second,
	}
}

// Client is a sequential client for the provider API. It keeps a single
// request in flight at a time; retries block between attempts.
type Client struct {
	httpc *http.Client
	opts  Options
}

// NewClient creates a client with the given options. Zero-valued fields are
// filled from DefaultOptions.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.PageLimit <= 0 {
		opts.PageLimit = def.PageLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = def.RetryAttempts
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = def.RetryBackoff
	}
	if opts.RetryMaxBackoff <= 0 {
		opts.RetryMaxBackoff = def.RetryMaxBackoff
	}

	return &Client{
		httpc: &http.Client{Timeout: opts.Timeout},
		opts:  opts,
	}
}

// Response is the outcome of a GET after the retry loop has finished.
// A non-2xx status is not an error at this level: callers decide severity.
type Response struct {
	StatusCode int
	Body       []byte

	// Exhausted marks that every attempt returned a retryable status and
	// this is the last of them.
	Exhausted bool
}

// OK reports whether the response carries a 200 status.
func (r *Response) OK() bool { return r.StatusCode == http.StatusOK }

// retryable reports whether a status code warrants another attempt.
func retryable(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// get issues an authenticated GET, retrying retryable statuses with
// exponential backoff. Connection-level failures are returned as errors
// immediately; the retry contract covers status codes only.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*Response, error) {
	u := c.opts.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	backoff := c.opts.RetryBackoff
	var last *Response

	for attempt := 1; attempt <= c.opts.RetryAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > c.opts.RetryMaxBackoff {
				backoff = c.opts.RetryMaxBackoff
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.opts.Token)

		resp, err := c.httpc.Do(req)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", path, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response for %s: %w", path, err)
		}

		last = &Response{StatusCode: resp.StatusCode, Body: body}
		if !retryable(resp.StatusCode) {
			return last, nil
		}
	}

	last.Exhausted = true
	return last, nil
}

// snippet trims a response body for inclusion in error messages.
func snippet(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
