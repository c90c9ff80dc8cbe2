// Package httpclient wraps resty with the timeout, headers and error logging
// shared by every outbound request the fetch path makes.
package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent mimics a desktop Chrome so that sites serve the same markup
// a person would see.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// DefaultTimeout bounds every request issued by the client.
const DefaultTimeout = 30 * time.Second

// Getter is the read-only view of the client used by the fetch path.
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// Config controls a Client.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

// Client issues GET and POST requests and returns response bodies as text.
type Client struct {
	rc     *resty.Client
	logger *slog.Logger
}

// New builds a Client. A nil logger discards log output.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	rc := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")
	if len(cfg.Headers) > 0 {
		rc.SetHeaders(cfg.Headers)
	}

	return &Client{rc: rc, logger: logger}
}

// Get fetches url and returns the body.
func (c *Client) Get(ctx context.Context, url string) (string, error) {
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	return c.handle(http.MethodGet, url, resp, err)
}

// Post sends body (JSON-encoded unless it is a string or []byte) to url and
// returns the response body.
func (c *Client) Post(ctx context.Context, url string, body any) (string, error) {
	resp, err := c.rc.R().SetContext(ctx).SetBody(body).Post(url)
	return c.handle(http.MethodPost, url, resp, err)
}

func (c *Client) handle(method, url string, resp *resty.Response, err error) (string, error) {
	if err != nil {
		c.logger.Error("http request failed", "method", method, "url", url, "error", err)
		return "", fmt.Errorf("%s %s: %w", method, url, err)
	}
	if resp.IsError() || resp.StatusCode() >= http.StatusMultipleChoices {
		serr := &StatusError{StatusCode: resp.StatusCode(), URL: url}
		c.logger.Error("http request failed", "method", method, "url", url, "status", resp.StatusCode())
		return "", serr
	}
	return resp.String(), nil
}
