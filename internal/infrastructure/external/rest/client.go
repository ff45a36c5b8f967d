// Package rest is the JSON-over-HTTP transport shared by the collaborator
// clients (fee registry, payments, notify, identity, bank holidays).
package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/turtacn/civil-general-applications/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/civil-general-applications/pkg/errors"
)

const userAgent = "civil-general-applications/1.0"

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d [request_id=%s]: %s", e.StatusCode, e.RequestID, e.Body)
}

// Client sends JSON requests to one base URL. 5xx responses and transport
// errors are retried with backoff; 401 and 403 map to CodeUnauthorized.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	logger       logging.Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	headers      map[string]string
	errCode      errors.ErrorCode
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithRetryMax(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retryMax = n
		}
	}
}

func WithRetryWait(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 {
			c.retryWaitMin = min
			if max >= min {
				c.retryWaitMax = max
			}
		}
	}
}

// WithHeader sets a header on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithErrorCode sets the code used for non-auth failures, e.g. ErrCodeFeeLookupFailed.
func WithErrorCode(code errors.ErrorCode) Option {
	return func(c *Client) { c.errCode = code }
}

// New validates baseURL and builds a Client. timeout 0 means 30s.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.InvalidParam("base URL must be an absolute http(s) URL").WithDetail(baseURL)
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logging.NewNopLogger(),
		retryMax:     2,
		retryWaitMin: 200 * time.Millisecond,
		retryWaitMax: 2 * time.Second,
		headers:      map[string]string{},
		errCode:      errors.ErrCodeExternalService,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL }

// Request is one call. Token, when set, is sent as a bearer credential.
// Form, when set, is sent url-encoded instead of Body.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
	Form   url.Values
	Token  string
	Header map[string]string
}

// Do sends req and decodes a JSON response into result when result is non-nil.
func (c *Client) Do(ctx context.Context, req Request, result interface{}) error {
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	full := c.baseURL + path
	if len(req.Query) > 0 {
		full += "?" + req.Query.Encode()
	}

	var payload []byte
	contentType := "application/json"
	switch {
	case req.Form != nil:
		payload = []byte(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "marshal request body")
		}
		payload = b
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return errors.Wrap(ctx.Err(), errors.ErrCodeTimeout, "request cancelled").WithDetail(path)
			}
		}

		resp, requestID, err := c.send(ctx, req, full, payload, contentType)
		if err != nil {
			c.logger.Warn("Collaborator request failed", logging.String("path", path), logging.Int("attempt", attempt), logging.Err(err))
			lastErr = errors.Wrap(err, c.errCode, "request failed").WithDetail(path)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return errors.Wrap(err, c.errCode, "read response body").WithDetail(path)
		}
		c.logger.Debug("Collaborator response", logging.String("method", req.Method), logging.String("path", path), logging.Int("status", resp.StatusCode))

		if resp.StatusCode >= 400 {
			se := &StatusError{StatusCode: resp.StatusCode, Body: string(body), RequestID: requestID}
			switch {
			case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
				return errors.Wrap(se, errors.CodeUnauthorized, "collaborator rejected credentials").WithDetail(path)
			case resp.StatusCode >= 500:
				lastErr = errors.Wrap(se, c.errCode, "collaborator error").WithDetail(path)
				continue
			default:
				return errors.Wrap(se, c.errCode, "collaborator rejected request").WithDetail(path)
			}
		}

		if result != nil && len(body) > 0 {
			if err := json.Unmarshal(body, result); err != nil {
				return errors.Wrap(err, errors.ErrCodeSerialization, "decode response").WithDetail(path)
			}
		}
		return nil
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, req Request, full string, payload []byte, contentType string) (*http.Response, string, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, full, body)
	if err != nil {
		return nil, "", err
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", userAgent)
	httpReq.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+strings.TrimPrefix(req.Token, "Bearer "))
	}

	resp, err := c.httpClient.Do(httpReq)
	return resp, requestID, err
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if d > c.retryWaitMax {
		d = c.retryWaitMax
	}
	if q := int64(d / 4); q > 0 {
		d += time.Duration(rand.Int63n(q))
	}
	return d
}

//Personal.AI order the ending
