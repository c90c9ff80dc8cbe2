// Package bootstrap turns a loaded configuration into the running services
// shared by the CLI, the MCP server and the REST API.
package bootstrap

import (
	"fmt"
	"log/slog"

	"webscout/internal/config"
	"webscout/internal/fetcher"
	"webscout/internal/httpclient"
	"webscout/internal/search"
)

// App holds the constructed services. Close it to stop the browser.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Client   *httpclient.Client
	Searcher *search.Searcher
	Fetcher  *fetcher.Fetcher
}

// Option customizes construction, mainly for tests.
type Option func(*options)

type options struct {
	searchOpts []search.Option
}

// WithSearchOptions passes options through to search.New.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *options) { o.searchOpts = append(o.searchOpts, opts...) }
}

// New builds the services described by cfg. No browser is started until the
// first search.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	client := httpclient.New(httpclient.Config{
		Timeout:   config.Ms(cfg.Fetch.TimeoutMs),
		UserAgent: cfg.Fetch.UserAgent,
	}, logger)

	f, err := fetcher.New(client, fetcher.Config{
		RateLimit:      cfg.Fetch.RateLimit,
		RateInterval:   config.Ms(cfg.Fetch.RateIntervalMs),
		RespectRobots:  cfg.Fetch.RespectRobots,
		UserAgent:      cfg.Fetch.UserAgent,
		UseReadability: cfg.Fetch.UseReadability,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build fetcher: %w", err)
	}

	s, err := search.New(search.Config{
		BaseURL:           cfg.Search.BaseURL,
		Headless:          cfg.Search.Headless,
		RateLimit:         cfg.Search.RateLimit,
		RateInterval:      config.Ms(cfg.Search.RateIntervalMs),
		NavigationTimeout: config.Ms(cfg.Search.NavigationTimeoutMs),
		SelectorTimeout:   config.Ms(cfg.Search.SelectorTimeoutMs),
		CaptchaTimeout:    config.Ms(cfg.Search.CaptchaTimeoutMs),
		UserAgent:         cfg.Search.UserAgent,
		BrowserURL:        cfg.Search.BrowserURL,
		BrowserBin:        cfg.Search.BrowserBin,
		NoSandbox:         cfg.Search.NoSandbox,
		MaxResults:        cfg.Search.MaxResults,
	}, logger, o.searchOpts...)
	if err != nil {
		return nil, fmt.Errorf("build searcher: %w", err)
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Client:   client,
		Searcher: s,
		Fetcher:  f,
	}, nil
}

// Close releases the browser. It is safe to call more than once.
func (a *App) Close() error {
	if a == nil || a.Searcher == nil {
		return nil
	}
	return a.Searcher.Close()
}
