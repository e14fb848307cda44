// Package jsonrpc implements the JSON-RPC 2.0 over HTTP transport shared by
// the Solana node gateway and the Helius DAS gateway.
package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 0
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
)

// Observer is notified once per logical call, after the final attempt.
type Observer func(method string, elapsed time.Duration, err error)

// Client performs JSON-RPC 2.0 calls against a single HTTP endpoint.
type Client struct {
	endpoint    string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	limiter     *rate.Limiter
	observer    Observer
	headers     http.Header
	requestID   atomic.Uint64
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts for transport failures and 429s.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

// WithRateLimit caps outgoing requests per second. Zero or negative disables it.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithObserver registers a per-call hook, used for metrics.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// NewClient creates a JSON-RPC client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		headers:     make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the configured endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// request represents a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// response represents a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object returned by the server.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Call performs a JSON-RPC call. params is either a positional slice or a
// named-parameter object. A null result leaves result untouched.
func (c *Client) Call(ctx context.Context, method string, params any, result any) error {
	start := time.Now()
	err := c.call(ctx, method, params, result)
	if c.observer != nil {
		c.observer(method, time.Since(start), err)
	}
	return err
}

// call performs a JSON-RPC call with optional retries and exponential backoff.
func (c *Client) call(ctx context.Context, method string, params any, result any) error {
	reqID := c.requestID.Add(1)
	reqBody := request{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  method,
		Params:  params,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limit wait: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range c.headers {
			req.Header[k] = v
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		var rpcResp response
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}

		// Server-side errors are never retried.
		if rpcResp.Error != nil {
			return rpcResp.Error
		}

		if result != nil && len(rpcResp.Result) > 0 && string(rpcResp.Result) != "null" {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}

	if c.maxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
