package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/sessionlink/internal/core/domain"
	"github.com/yndnr/sessionlink/internal/infra/buildinfo"
	"github.com/yndnr/sessionlink/internal/telemetry/logger"
	"github.com/yndnr/sessionlink/internal/telemetry/metric"
)

// DefaultTimeout bounds each request made with the default transport.
const DefaultTimeout = 30 * time.Second

// ErrUnsupportedMethod is returned by Do for verbs other than GET, POST, PUT
// and DELETE.
var ErrUnsupportedMethod = errors.New("client: unsupported method")

// Doer performs a single HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SessionReader exposes the current session.
type SessionReader interface {
	Current() domain.Session
}

// Request describes one call.
type Request struct {
	Method   string
	Endpoint string

	// Body is JSON-encoded when non-nil.
	Body any

	// Header is applied after the defaults, so it can override them.
	// Authorization is always taken from the session when one is present.
	Header http.Header
}

// RequestOption adjusts a Request.
type RequestOption func(*Request)

// WithHeader sets a request header.
func WithHeader(name, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = make(http.Header)
		}
		r.Header.Set(name, value)
	}
}

// WithHeaders sets every header in h.
func WithHeaders(h http.Header) RequestOption {
	return func(r *Request) {
		for name, values := range h {
			for i, v := range values {
				if i == 0 {
					WithHeader(name, v)(r)
					continue
				}
				r.Header.Add(name, v)
			}
		}
	}
}

// Client is the authenticated request dispatcher. It is safe for concurrent
// use.
type Client struct {
	baseURL   string
	sessions  SessionReader
	doer      Doer
	userAgent string
	logger    logger.Logger
	metrics   *metric.Registry
	limiter   *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithDoer replaces the transport.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.doer = d
		}
	}
}

// WithTimeout uses a default transport bounded by d.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.doer = &http.Client{Timeout: d}
	}
}

// WithRateLimit spaces requests to at most rps per second with bursts of
// burst. A non-positive rps leaves requests unthrottled.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics records request metrics in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(c *Client) {
		c.metrics = reg
	}
}

// New creates a dispatcher for baseURL. Endpoints are appended to baseURL
// verbatim, so "/items" on "https://api.example.test" becomes
// "https://api.example.test/items".
func New(baseURL string, sessions SessionReader, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		sessions:  sessions,
		doer:      &http.Client{Timeout: DefaultTimeout},
		userAgent: buildinfo.UserAgent(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL of the client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.Do(ctx, newRequest(http.MethodGet, endpoint, nil, opts), out)
}

// Post performs a POST request with data as the JSON body.
func (c *Client) Post(ctx context.Context, endpoint string, data, out any, opts ...RequestOption) error {
	return c.Do(ctx, newRequest(http.MethodPost, endpoint, data, opts), out)
}

// Put performs a PUT request with data as the JSON body.
func (c *Client) Put(ctx context.Context, endpoint string, data, out any, opts ...RequestOption) error {
	return c.Do(ctx, newRequest(http.MethodPut, endpoint, data, opts), out)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, endpoint string, out any, opts ...RequestOption) error {
	return c.Do(ctx, newRequest(http.MethodDelete, endpoint, nil, opts), out)
}

// Do sends req and decodes a successful response into out.
//
// out may be nil to discard the body, or a *[]byte to receive it as is.
// An empty success body leaves out untouched. A non-2xx response yields a
// *Error; a transport failure is returned exactly as the Doer reported it.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	switch req.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}

	reqID := ulid.Make().String()
	ctx = logger.WithRequestID(ctx, reqID)
	log := c.logger.WithContext(ctx)

	httpReq, err := c.build(ctx, req)
	if err != nil {
		return err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("client: rate limit: %w", err)
		}
	}

	done := c.metrics.TrackInFlight()
	defer done()
	start := time.Now()

	resp, err := c.doer.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, metric.OutcomeTransportError, time.Since(start))
		log.Debug("request failed", "method", req.Method, "url", httpReq.URL.String(), "error", err)
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.ObserveRequest(req.Method, metric.OutcomeTransportError, time.Since(start))
		return fmt.Errorf("read response: %w", err)
	}

	log.Debug("request completed",
		"method", req.Method,
		"url", httpReq.URL.String(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.ObserveRequest(req.Method, metric.OutcomeRejected, time.Since(start))
		return newError(resp.StatusCode, body)
	}

	if err := decodeBody(body, out); err != nil {
		c.metrics.ObserveRequest(req.Method, metric.OutcomeDecodeError, time.Since(start))
		return err
	}

	c.metrics.ObserveRequest(req.Method, metric.OutcomeSuccess, time.Since(start))
	return nil
}

// build creates the HTTP request: defaults, then caller headers, then the
// session credential.
func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	for name, values := range req.Header {
		httpReq.Header.Del(name)
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}

	if c.sessions != nil {
		if sess := c.sessions.Current(); sess.Token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+sess.Token)
		}
	}

	return httpReq, nil
}

func decodeBody(body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = body
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func newRequest(method, endpoint string, body any, opts []RequestOption) Request {
	req := Request{
		Method:   method,
		Endpoint: endpoint,
		Body:     body,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
