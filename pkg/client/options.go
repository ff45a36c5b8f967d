package client

import (
	"net/http"
	"time"
)

// Option customises a Client at construction.
type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 30s.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each attempt. It copies the current HTTP client so a
// client passed to WithHTTPClient is not mutated.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

func WithLogger(logger Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRetry sets how many times network errors, 5xx and 429 responses are
// retried and the backoff bounds. max 0 disables retries; non-positive waits
// keep the defaults.
func WithRetry(max int, minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		if max >= 0 {
			c.retryMax = max
		}
		if minWait > 0 {
			c.retryWaitMin = minWait
		}
		if maxWait >= c.retryWaitMin {
			c.retryWaitMax = maxWait
		} else if c.retryWaitMax < c.retryWaitMin {
			c.retryWaitMax = c.retryWaitMin
		}
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

//Personal.AI order the ending
