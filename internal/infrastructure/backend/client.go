package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/albazaar/storefront/internal/domain/integration"
)

// Client implements integration.StoreBackend over the backend's HTTP/JSON
// API. It never retries; callers decide what a failure means.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger
}

var _ integration.StoreBackend = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a backend client. Outgoing calls are traced with
// otelhttp so backend latency shows up under the inbound request span.
func NewClient(config *Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "backend " + r.Method + " " + r.URL.Path
				}),
			),
		},
		logger: logger.Named("backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// call describes one backend request
type call struct {
	method string
	base   string
	path   string
	query  url.Values
	cred   *integration.Credential
	body   any
}

// do performs the call and returns the raw response body
func (c *Client) do(ctx context.Context, in call) ([]byte, error) {
	base := in.base
	if base == "" {
		base = c.config.BaseURL
	}
	target := base + in.path
	if len(in.query) > 0 {
		target += "?" + in.query.Encode()
	}

	var reader io.Reader
	if in.body != nil {
		payload, err := json.Marshal(in.body)
		if err != nil {
			return nil, fmt.Errorf("backend: failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, in.method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("backend: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if in.cred != nil {
		if bearer := in.cred.Bearer(); bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Backend unreachable",
			zap.String("method", in.method),
			zap.String("path", in.path),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", integration.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", integration.ErrBackendUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("Backend request failed",
			zap.String("method", in.method),
			zap.String("path", in.path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)
	} else {
		c.logger.Debug("Backend request",
			zap.String("method", in.method),
			zap.String("path", in.path),
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, integration.ErrBackendUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %w", integration.ErrBackendRequestFailed, integration.ErrBackendNotFound)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrBackendRequestFailed, resp.StatusCode)
	}
	return body, nil
}

// decode unmarshals body into out
func decode(body []byte, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", integration.ErrBackendInvalidResponse, err)
	}
	return nil
}

// isNull reports whether body carries no value
func isNull(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// truthy applies JavaScript truthiness to a JSON body: null, false, 0 and
// "" are false, anything else (including {} and []) is true.
func truthy(body []byte) bool {
	if isNull(body) {
		return false
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		// A non-JSON body still means the backend answered something
		return len(bytes.TrimSpace(body)) > 0
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	}
	return true
}

func credPath(prefix string, cred integration.Credential) string {
	return prefix + url.PathEscape(cred.Phone)
}
