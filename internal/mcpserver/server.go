// Package mcpserver exposes search and fetch as Model Context Protocol tools
// over stdio or HTTP.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"webscout/internal/fetcher"
	"webscout/internal/metrics"
	"webscout/internal/model"
)

// Tool names.
const (
	ToolSearch = "search"
	ToolFetch  = "fetch_web_content"
)

// Searcher runs a web search. Implementations never fail; problems yield an
// empty list.
type Searcher interface {
	Search(ctx context.Context, query string) []model.SearchResult
}

// Fetcher downloads and extracts a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) model.FetchResult
}

// Config describes the server implementation advertised to clients.
type Config struct {
	Name    string
	Version string
	// MaxContentChars caps fetch_web_content output. Default 10000.
	MaxContentChars int
}

// SearchArgs are the arguments of the search tool.
type SearchArgs struct {
	Query string `json:"query" jsonschema:"the search query"`
}

// FetchArgs are the arguments of the fetch_web_content tool.
type FetchArgs struct {
	URL string `json:"url" jsonschema:"absolute http(s) URL of the page to fetch"`
}

// Server wraps an mcp.Server with the webscout tools registered.
type Server struct {
	cfg      Config
	logger   *slog.Logger
	searcher Searcher
	fetcher  Fetcher
	mcp      *mcp.Server

	mu       sync.Mutex
	sessions map[string]*mcp.SSEServerTransport
}

// New builds a Server and registers its tools.
func New(searcher Searcher, fetcher Fetcher, cfg Config, logger *slog.Logger) *Server {
	if cfg.Name == "" {
		cfg.Name = "webscout"
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.MaxContentChars <= 0 {
		cfg.MaxContentChars = 10000
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger.With("component", "mcp"),
		searcher: searcher,
		fetcher:  fetcher,
		mcp:      mcp.NewServer(&mcp.Implementation{Name: cfg.Name, Version: cfg.Version}, nil),
		sessions: make(map[string]*mcp.SSEServerTransport),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolSearch,
		Description: "Search the web and return a numbered list of results with title, URL and snippet.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in SearchArgs) (*mcp.CallToolResult, any, error) {
		text, err := s.search(ctx, in)
		return s.toolResult(ToolSearch, text, err)
	})

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolFetch,
		Description: "Fetch a web page and return its main content as Markdown, with title, source and description when available.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in FetchArgs) (*mcp.CallToolResult, any, error) {
		text, err := s.fetch(ctx, in)
		return s.toolResult(ToolFetch, text, err)
	})
}

func (s *Server) toolResult(tool, text string, err error) (*mcp.CallToolResult, any, error) {
	metrics.RecordToolCall(tool, err == nil)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", tool, "error", err)
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

func (s *Server) search(ctx context.Context, in SearchArgs) (string, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return "", errors.New("query is required")
	}

	start := time.Now()
	results := s.searcher.Search(ctx, query)
	s.logger.Info("search tool", "query", query, "results", len(results), "duration", time.Since(start))
	return formatResults(query, results), nil
}

func (s *Server) fetch(ctx context.Context, in FetchArgs) (string, error) {
	raw := strings.TrimSpace(in.URL)
	if raw == "" {
		return "", errors.New("url is required")
	}
	if _, ok := fetcher.ParseURL(raw); !ok {
		return "", fmt.Errorf("invalid url %q", in.URL)
	}

	start := time.Now()
	res := s.fetcher.Fetch(ctx, raw)
	s.logger.Info("fetch tool", "url", raw, "success", res.Success, "duration", time.Since(start))
	if !res.Success {
		return "", errors.New(res.Error)
	}
	if res.Data == nil {
		return "", nil
	}
	return truncate(res.Data.Content, s.cfg.MaxContentChars), nil
}

// ServeStdio serves a single client over stdin/stdout until ctx is done or
// the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("mcp server listening on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
