// Package httpx is the configured request sender shared by every resource
// service: fixed base URL, JSON content type, a transport timeout, request
// and response interceptors, and in-flight tracking.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mesh-intelligence/dustnbones/internal/loading"
)

// DefaultTimeout bounds every request, connection through body read.
const DefaultTimeout = 15 * time.Second

// HeaderRequestID carries a per-request identifier for log correlation.
const HeaderRequestID = "X-Request-ID"

// Interceptor observes every request. Request runs before the request is
// sent; returning an error aborts it. Response runs once per request on
// every exit path, with the response (possibly nil) and the error (possibly
// nil) the caller is about to see.
type Interceptor interface {
	Request(req *http.Request) error
	Response(resp *http.Response, err error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client. The client is copied;
// the copy's Timeout is replaced by the configured timeout unless
// WithTimeout(0) is used, and h itself is left untouched.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			hc := *h
			c.httpClient = &hc
		}
	}
}

// WithTimeout overrides DefaultTimeout. A zero value disables the client
// timeout and leaves deadlines to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHeaders assigns default headers added to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithTracker counts every request in t for as long as it is in flight.
func WithTracker(t *loading.Tracker) Option {
	return func(c *Client) {
		c.tracker = t
	}
}

// WithInterceptor appends an interceptor. Interceptors run in the order they
// were added.
func WithInterceptor(i Interceptor) Option {
	return func(c *Client) {
		if i != nil {
			c.interceptors = append(c.interceptors, i)
		}
	}
}

// WithMetrics registers request metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// Client sends requests relative to a base URL.
type Client struct {
	baseURL      *url.URL
	httpClient   *http.Client
	timeout      time.Duration
	headers      http.Header
	logger       *slog.Logger
	tracker      *loading.Tracker
	interceptors []Interceptor
	registerer   prometheus.Registerer
	metrics      *metrics
}

// Request describes a single outbound request.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is sent as-is. When Body is nil and JSON is non-nil, JSON is
	// encoded and sent instead.
	Body io.Reader
	JSON any

	// Operation names the logical operation for tracking and logs. It
	// defaults to "METHOD path".
	Operation string
}

// NewClient creates a Client for the provided base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("httpx: base URL is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("httpx: invalid base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("httpx: base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		headers:    make(http.Header),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	c.headers.Set("Content-Type", "application/json")
	c.headers.Set("Accept", "application/json")

	for _, opt := range opts {
		opt(c)
	}

	if c.timeout > 0 {
		c.httpClient.Timeout = c.timeout
	}
	if c.registerer != nil {
		m, err := newMetrics(c.registerer)
		if err != nil {
			return nil, fmt.Errorf("httpx: register metrics: %w", err)
		}
		c.metrics = m
	}
	return c, nil
}

// BaseURL returns a copy of the configured base URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Tracker returns the attached tracker, or nil.
func (c *Client) Tracker() *loading.Tracker {
	return c.tracker
}

// Do executes req. A non-2xx status is returned as *HTTPError with the body
// already consumed. On success the caller owns resp.Body.
func (c *Client) Do(ctx context.Context, req *Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("httpx: request is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if req.Method == "" {
		return nil, errors.New("httpx: HTTP method is required")
	}

	body, err := requestBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.buildURL(req.Path, req.Query), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header = cloneHeader(c.headers)
	for k, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if httpReq.Header.Get(HeaderRequestID) == "" {
		httpReq.Header.Set(HeaderRequestID, uuid.NewString())
	}

	op := req.Operation
	if op == "" {
		op = req.Method + " " + req.Path
	}

	if c.tracker != nil {
		scope := c.tracker.Begin(op)
		defer scope.End()
	}
	if c.metrics != nil {
		c.metrics.inFlight.Inc()
		defer c.metrics.inFlight.Dec()
	}

	start := time.Now()
	resp, err := c.send(httpReq)
	c.observe(httpReq, op, resp, err, time.Since(start))
	return resp, err
}

func (c *Client) send(httpReq *http.Request) (*http.Response, error) {
	for i, ic := range c.interceptors {
		if err := ic.Request(httpReq); err != nil {
			// Interceptors that already saw the request still get a response.
			for _, prev := range c.interceptors[:i+1] {
				prev.Response(nil, err)
			}
			return nil, err
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err == nil && resp.StatusCode >= 400 {
		err = c.handleError(resp)
	}
	for _, ic := range c.interceptors {
		ic.Response(resp, err)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) observe(httpReq *http.Request, op string, resp *http.Response, err error, elapsed time.Duration) {
	code := "error"
	var httpErr *HTTPError
	switch {
	case resp != nil:
		code = fmt.Sprintf("%d", resp.StatusCode)
	case errors.As(err, &httpErr):
		code = fmt.Sprintf("%d", httpErr.StatusCode)
	}
	if c.metrics != nil {
		c.metrics.total.WithLabelValues(httpReq.Method, code).Inc()
	}

	attrs := []any{
		"op", op,
		"url", httpReq.URL.String(),
		"status", code,
		"duration", elapsed,
		"request_id", httpReq.Header.Get(HeaderRequestID),
	}
	if err != nil {
		c.logger.Debug("http request failed", append(attrs, "err", err)...)
		return
	}
	c.logger.Debug("http request", attrs...)
}

// DoJSON executes req and decodes a 2xx JSON body into out. An empty body
// leaves out untouched.
func (c *Client) DoJSON(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	data, err := ReadAllAndClose(resp.Body)
	if err != nil {
		return fmt.Errorf("httpx: read response body: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("httpx: decode response body: %w", err)
	}
	return nil
}

func requestBody(req *Request) (io.Reader, error) {
	if req.Body != nil {
		return req.Body, nil
	}
	if req.JSON == nil {
		return nil, nil
	}
	r, _, err := WithJSONBody(req.JSON)
	if err != nil {
		return nil, fmt.Errorf("httpx: encode request body: %w", err)
	}
	return r, nil
}

func (c *Client) buildURL(path string, q url.Values) string {
	full := c.baseURL.JoinPath(strings.TrimPrefix(path, "/"))
	if len(q) > 0 {
		full.RawQuery = q.Encode()
	}
	return full.String()
}

func (c *Client) handleError(resp *http.Response) error {
	defer closeBody(resp.Body)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpx: read error body: %w", err)
	}
	httpErr := &HTTPError{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header.Clone(),
	}
	if isJSON(resp.Header.Get("Content-Type")) {
		httpErr.JSON = decodeJSONBody(body)
	}
	return httpErr
}

// WithJSONBody serializes the supplied value into JSON and returns a reusable reader.
func WithJSONBody(v any) (io.Reader, string, error) {
	data, err := jsonMarshal(v)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

// ReadAllAndClose drains the reader and ensures it is closed.
func ReadAllAndClose(rc io.ReadCloser) ([]byte, error) {
	defer closeBody(rc)
	return io.ReadAll(rc)
}

func closeBody(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	if idx := strings.Index(contentType, ";"); idx >= 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType) == "application/json"
}

func cloneHeader(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for k, values := range src {
		vCopy := make([]string, len(values))
		copy(vCopy, values)
		dst[k] = vCopy
	}
	return dst
}

func jsonMarshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
