// Package search runs web searches by driving a real browser against a search
// engine home page and scraping the rendered results.
//
// Search is fail-soft: every failure is logged and turned into an empty
// result list, because result-page markup drifts without notice and callers
// should not break when it does.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"webscout/internal/httpclient"
	"webscout/internal/metrics"
	"webscout/internal/model"
	"webscout/internal/ratelimit"
)

// ErrBrowserInit is returned internally when the launcher yields no browser.
var ErrBrowserInit = errors.New("browser initialization failed")

var errSearcherClosed = errors.New("searcher closed during browser launch")

// Config controls a Searcher. Zero fields take the defaults noted below.
type Config struct {
	// BaseURL is the search engine origin. Default https://www.google.com.
	BaseURL string
	// Headless runs the browser without a window. A captcha aborts the search
	// in headless mode; otherwise the searcher waits for a manual solve.
	Headless bool

	// RateLimit searches per RateInterval. Default 1 per 2s.
	RateLimit    int
	RateInterval time.Duration

	NavigationTimeout time.Duration // default 30s
	SelectorTimeout   time.Duration // default 5s
	CaptchaTimeout    time.Duration // default 60s

	UserAgent      string
	ViewportWidth  int // default 1366
	ViewportHeight int // default 768

	// BrowserURL connects to a running browser instead of launching one.
	BrowserURL string
	// BrowserBin overrides the browser executable.
	BrowserBin string
	// NoSandbox disables the Chromium sandbox, needed when running as root
	// in containers.
	NoSandbox bool

	// MaxResults caps the returned list; 0 keeps everything.
	MaxResults int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.google.com"
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.RateLimit <= 0 {
		c.RateLimit = 1
	}
	if c.RateInterval <= 0 {
		c.RateInterval = 2 * time.Second
	}
	if c.NavigationTimeout <= 0 {
		c.NavigationTimeout = 30 * time.Second
	}
	if c.SelectorTimeout <= 0 {
		c.SelectorTimeout = 5 * time.Second
	}
	if c.CaptchaTimeout <= 0 {
		c.CaptchaTimeout = 60 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = httpclient.DefaultUserAgent
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1366
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 768
	}
	return c
}

// Option customizes a Searcher.
type Option func(*Searcher)

// WithLauncher replaces the default rod launcher.
func WithLauncher(l Launcher) Option {
	return func(s *Searcher) { s.launch = l }
}

// Searcher owns one lazily started browser and a rate limiter. It is safe for
// concurrent use. Call Close when done to stop the browser process.
type Searcher struct {
	cfg     Config
	logger  *slog.Logger
	limiter *ratelimit.Limiter
	launch  Launcher

	mu      sync.Mutex
	browser Browser
	// gen counts Close calls; a launch that straddles one is discarded.
	gen   uint64
	group singleflight.Group
}

// New builds a Searcher. The browser is not started until the first Search.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Searcher, error) {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	limiter, err := ratelimit.New(cfg.RateLimit, cfg.RateInterval)
	if err != nil {
		return nil, fmt.Errorf("search rate limiter: %w", err)
	}

	s := &Searcher{
		cfg:     cfg,
		logger:  logger.With("component", "search"),
		limiter: limiter,
		launch: RodLauncher(RodOptions{
			BrowserURL: cfg.BrowserURL,
			Bin:        cfg.BrowserBin,
			Headless:   cfg.Headless,
			NoSandbox:  cfg.NoSandbox,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Search runs query and returns the organic results. It never fails: an
// empty or whitespace query returns immediately, and any error along the way
// is logged and yields an empty list.
func (s *Searcher) Search(ctx context.Context, query string) (results []model.SearchResult) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SearchResult{}
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("search failed with unknown error", "query", query, "panic", r)
			metrics.RecordSearch("error", 0)
			results = []model.SearchResult{}
		}
	}()

	if err := s.limiter.Acquire(ctx); err != nil {
		s.logger.Warn("search cancelled while rate limited", "query", query, "error", err)
		metrics.RecordSearch("error", 0)
		return []model.SearchResult{}
	}

	found, err := s.run(ctx, query)
	if err != nil {
		s.logFailure(query, err)
		metrics.RecordSearch("error", 0)
		return []model.SearchResult{}
	}

	if s.cfg.MaxResults > 0 && len(found) > s.cfg.MaxResults {
		found = found[:s.cfg.MaxResults]
	}
	if len(found) == 0 {
		metrics.RecordSearch("empty", 0)
		return []model.SearchResult{}
	}

	s.logger.Info("search completed", "query", query, "results", len(found))
	metrics.RecordSearch("ok", len(found))
	return found
}

// Close stops the shared browser. It is safe to call repeatedly and before
// any search; the next Search starts a fresh browser. Close errors are logged,
// never returned.
func (s *Searcher) Close() error {
	s.mu.Lock()
	b := s.browser
	s.browser = nil
	s.gen++
	s.mu.Unlock()

	if b == nil {
		return nil
	}
	if err := b.Close(); err != nil {
		s.logger.Warn("failed to close browser", "error", err)
	}
	return nil
}

// ensureBrowser returns the shared browser, launching it on first use.
// Concurrent first callers share a single in-flight launch.
func (s *Searcher) ensureBrowser(ctx context.Context) (Browser, error) {
	s.mu.Lock()
	b := s.browser
	s.mu.Unlock()
	if b != nil {
		return b, nil
	}

	v, err, _ := s.group.Do("browser", func() (any, error) {
		s.mu.Lock()
		if s.browser != nil {
			b := s.browser
			s.mu.Unlock()
			return b, nil
		}
		gen := s.gen
		s.mu.Unlock()

		// The browser outlives the search that started it.
		b, err := s.launch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBrowserInit, err)
		}
		if b == nil {
			return nil, ErrBrowserInit
		}

		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			if err := b.Close(); err != nil {
				s.logger.Warn("failed to close browser", "error", err)
			}
			return nil, errSearcherClosed
		}
		s.browser = b
		s.mu.Unlock()
		s.logger.Info("browser launched", "headless", s.cfg.Headless)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Browser), nil
}

func (s *Searcher) run(ctx context.Context, query string) ([]model.SearchResult, error) {
	browser, err := s.ensureBrowser(ctx)
	if err != nil {
		return nil, err
	}

	page, err := browser.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			s.logger.Warn("failed to close page", "error", err)
		}
	}()

	if err := page.SetUserAgent(s.cfg.UserAgent); err != nil {
		return nil, fmt.Errorf("set user agent: %w", err)
	}
	if err := page.SetViewport(s.cfg.ViewportWidth, s.cfg.ViewportHeight); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	err = page.Navigate(navCtx, s.cfg.BaseURL)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", s.cfg.BaseURL, err)
	}

	if ok := s.handleCaptcha(ctx, page, query); !ok {
		return nil, nil
	}

	inputSel := s.firstPresent(ctx, page, searchInputSelectors)
	if inputSel == "" {
		return nil, errors.New("search input not found")
	}
	if err := page.Type(ctx, inputSel, query); err != nil {
		return nil, fmt.Errorf("type query: %w", err)
	}

	if err := s.submit(ctx, page); err != nil {
		return nil, err
	}

	s.waitForResults(ctx, page)

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read results page: %w", err)
	}
	return extractResults(html, s.cfg.BaseURL), nil
}

// handleCaptcha reports whether the search may continue.
func (s *Searcher) handleCaptcha(ctx context.Context, page Page, query string) bool {
	sel := s.firstPresent(ctx, page, captchaSelectors)
	if sel == "" {
		return true
	}

	if s.cfg.Headless {
		s.logger.Warn("captcha detected in headless mode, cannot solve it", "query", query, "selector", sel)
		return false
	}

	s.logger.Info("captcha detected, waiting for it to be solved in the browser window",
		"query", query, "timeout", s.cfg.CaptchaTimeout)
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.CaptchaTimeout)
	defer cancel()
	if err := page.WaitGone(waitCtx, sel); err != nil {
		s.logger.Warn("captcha still present after wait, continuing anyway", "query", query, "error", err)
	}
	return true
}

func (s *Searcher) submit(ctx context.Context, page Page) error {
	submitCtx, cancel := context.WithTimeout(ctx, s.cfg.NavigationTimeout)
	defer cancel()

	btn := s.firstPresent(ctx, page, submitSelectors)
	if btn != "" {
		err := page.Submit(submitCtx, btn, s.cfg.SelectorTimeout)
		if err == nil {
			return nil
		}
		if submitCtx.Err() != nil {
			return fmt.Errorf("submit search: %w", err)
		}
		// Hidden or detached buttons are common; Enter always works.
		s.logger.Debug("submit button click failed, pressing Enter", "selector", btn, "error", err)
	}

	if err := page.Submit(submitCtx, "", s.cfg.SelectorTimeout); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	return nil
}

// waitForResults gives each known container selector a short window to
// appear. Unknown layouts fall through to extraction anyway.
func (s *Searcher) waitForResults(ctx context.Context, page Page) {
	for _, sel := range resultSelectors {
		waitCtx, cancel := context.WithTimeout(ctx, s.cfg.SelectorTimeout)
		err := page.WaitVisible(waitCtx, sel)
		cancel()
		if err == nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
	s.logger.Debug("no known result container appeared, extracting anyway")
}

func (s *Searcher) firstPresent(ctx context.Context, page Page, selectors []string) string {
	for _, sel := range selectors {
		ok, err := page.Has(ctx, sel)
		if err != nil {
			s.logger.Debug("selector lookup failed", "selector", sel, "error", err)
			continue
		}
		if ok {
			return sel
		}
	}
	return ""
}

func (s *Searcher) logFailure(query string, err error) {
	attrs := []any{"query", query, "error", err}
	if hint := failureHint(err); hint != "" {
		attrs = append(attrs, "hint", hint)
	}
	s.logger.Error("search failed", attrs...)
}
