package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is used when neither config nor PCS_API_BASE set one.
	DefaultBaseURL = "http://localhost:4000"

	// DefaultTimeout bounds every Telemetry API call.
	DefaultTimeout = 6 * time.Second

	// maxBodyBytes caps how much of a response body is read.
	maxBodyBytes = 8 << 20

	userAgent = "pcs-monitor"
)

// Observer receives the outcome of every request. err is nil on success.
type Observer interface {
	ObserveRequest(op string, err error, elapsed time.Duration)
}

// Client talks to one Telemetry API base URL. A Client is cheap to build;
// callers construct one per configuration snapshot and share the
// underlying *http.Client between them.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	obs     Observer
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets the transport-level client. Use NewHTTPClient to get
// one with request-ID injection.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithObserver registers o to receive per-request outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.obs = o }
}

// New returns a Client for baseURL. An empty baseURL falls back to
// DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient()
	}
	return c
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration { return c.timeout }

// requestIDRoundTripper stamps every outgoing request with a fresh ID.
type requestIDRoundTripper struct {
	base http.RoundTripper
}

func (t *requestIDRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	req.Header.Set("User-Agent", userAgent)
	return t.base.RoundTrip(req)
}

// NewHTTPClient builds the shared *http.Client. Timeouts are applied per
// call through the request context, so the client itself has none.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &requestIDRoundTripper{base: http.DefaultTransport},
	}
}

// do performs one request and returns the raw response body.
// All transport and status failures are converted to typed errors here.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, error) {
	start := time.Now()
	data, err := c.roundTrip(ctx, op, method, path, query, body)
	if c.obs != nil {
		c.obs.ObserveRequest(op, err, time.Since(start))
	}
	return data, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, body any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("telemetry %s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ResponseError{Op: op, Status: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage extracts {"error": "..."} from a failure body.
func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Error
	}
	return ""
}

// logFailure records a failed call at warn level. Callers surface the
// error themselves; this only keeps a trail in the process log.
func logFailure(op string, err error) {
	slog.Warn("telemetry: request failed", "op", op, "kind", Kind(err), "err", err)
}
