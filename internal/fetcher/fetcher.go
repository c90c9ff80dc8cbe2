// Package fetcher downloads a single web page and turns it into Markdown.
// Every failure is reported in the returned FetchResult rather than as a Go
// error.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"webscout/internal/httpclient"
	"webscout/internal/metrics"
	"webscout/internal/model"
	"webscout/internal/ratelimit"
	"webscout/internal/scraper"
)

// Result messages. Callers and tests match on these strings.
const (
	MsgEmptyURL      = "URL cannot be empty"
	MsgInvalidURL    = "Invalid URL format"
	msgFetchFailed   = "Failed to fetch content: "
	MsgNoContent     = msgFetchFailed + "No content received"
	MsgRobotsBlocked = msgFetchFailed + "disallowed by robots.txt"
)

// Config controls a Fetcher.
type Config struct {
	// RateLimit requests per RateInterval. Default 1 per second.
	RateLimit    int
	RateInterval time.Duration
	// RespectRobots consults the target host's robots.txt before fetching.
	RespectRobots bool
	// UserAgent is the agent name matched against robots.txt groups.
	UserAgent string
	// UseReadability extracts the article body with a readability pass.
	UseReadability bool
}

// Fetcher composes a rate limiter, an HTTP client and the scraper.
type Fetcher struct {
	client  httpclient.Getter
	cfg     Config
	limiter *ratelimit.Limiter
	logger  *slog.Logger

	robotsMu sync.Mutex
	robots   map[string]*robotstxt.RobotsData
}

// New builds a Fetcher around client.
func New(client httpclient.Getter, cfg Config, logger *slog.Logger) (*Fetcher, error) {
	if client == nil {
		return nil, errors.New("fetcher: nil http client")
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}
	if cfg.RateInterval <= 0 {
		cfg.RateInterval = time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = httpclient.DefaultUserAgent
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limiter, err := ratelimit.New(cfg.RateLimit, cfg.RateInterval)
	if err != nil {
		return nil, fmt.Errorf("fetch rate limiter: %w", err)
	}

	return &Fetcher{
		client:  client,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger.With("component", "fetcher"),
		robots:  make(map[string]*robotstxt.RobotsData),
	}, nil
}

// Fetch downloads rawURL and extracts its main content. Surrounding
// whitespace in rawURL is ignored.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (result model.FetchResult) {
	rawURL = strings.TrimSpace(rawURL)
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("fetch panicked", "url", rawURL, "panic", r)
			result = model.FetchFailed(msgFetchFailed + "Unknown error")
		}
		metrics.RecordFetch(outcome(result))
	}()

	if rawURL == "" {
		return model.FetchFailed(MsgEmptyURL)
	}
	u, ok := ParseURL(rawURL)
	if !ok {
		return model.FetchFailed(MsgInvalidURL)
	}

	if err := f.limiter.Acquire(ctx); err != nil {
		return model.FetchFailed(msgFetchFailed + err.Error())
	}

	if f.cfg.RespectRobots && isWeb(u) && !f.allowed(ctx, u) {
		f.logger.Info("fetch blocked by robots.txt", "url", rawURL)
		return model.FetchFailed(MsgRobotsBlocked)
	}

	body, err := f.client.Get(ctx, rawURL)
	if err != nil {
		f.logger.Warn("fetch failed", "url", rawURL, "error", err)
		return model.FetchFailed(msgFetchFailed + err.Error())
	}
	// A whitespace-only body is still content; only a truly empty one fails.
	if body == "" {
		return model.FetchFailed(MsgNoContent)
	}

	opts := scraper.DefaultOptions()
	opts.UseReadability = f.cfg.UseReadability
	content := scraper.Scrape(body, rawURL, opts)
	f.logger.Debug("fetch completed", "url", rawURL, "chars", len(content.Content))
	return model.FetchOK(content)
}

func outcome(res model.FetchResult) string {
	switch {
	case res.Success:
		return "ok"
	case res.Error == MsgEmptyURL, res.Error == MsgInvalidURL:
		return "invalid"
	default:
		return "error"
	}
}

// hostSchemes must carry a host to be valid.
var hostSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
}

// ParseURL accepts absolute URLs after trimming surrounding whitespace.
// Network schemes such as http need a host; others such as mailto do not.
func ParseURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	if hostSchemes[strings.ToLower(u.Scheme)] && u.Host == "" {
		return nil, false
	}
	return u, true
}

func isWeb(u *url.URL) bool {
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// allowed reports whether robots.txt on u's host permits the fetch. Robots
// files are fetched once per host; an unreachable file allows everything.
func (f *Fetcher) allowed(ctx context.Context, u *url.URL) bool {
	key := u.Scheme + "://" + u.Host

	f.robotsMu.Lock()
	data, cached := f.robots[key]
	f.robotsMu.Unlock()

	if !cached {
		data = f.fetchRobots(ctx, key)
		f.robotsMu.Lock()
		f.robots[key] = data
		f.robotsMu.Unlock()
	}
	if data == nil {
		return true
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, f.cfg.UserAgent)
}

func (f *Fetcher) fetchRobots(ctx context.Context, origin string) *robotstxt.RobotsData {
	body, err := f.client.Get(ctx, origin+"/robots.txt")
	status := 200
	if err != nil {
		var serr *httpclient.StatusError
		if !errors.As(err, &serr) {
			f.logger.Debug("robots.txt unavailable", "origin", origin, "error", err)
			return nil
		}
		status = serr.StatusCode
	}

	data, err := robotstxt.FromStatusAndBytes(status, []byte(body))
	if err != nil {
		f.logger.Debug("robots.txt unparsable", "origin", origin, "error", err)
		return nil
	}
	return data
}
