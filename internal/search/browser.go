package search

import (
	"context"
	"time"
)

// Browser is a running automation engine. One Browser is shared by every
// Search call of a Searcher; each call opens its own Page.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single isolated tab. Methods that wait take their deadline from
// ctx.
type Page interface {
	SetUserAgent(ua string) error
	SetViewport(width, height int) error
	// Navigate loads url and waits for the load event.
	Navigate(ctx context.Context, url string) error
	// Has reports whether selector currently matches an element.
	Has(ctx context.Context, selector string) (bool, error)
	// WaitVisible blocks until selector matches a visible element.
	WaitVisible(ctx context.Context, selector string) error
	// WaitGone blocks until selector no longer matches.
	WaitGone(ctx context.Context, selector string) error
	// Type focuses selector and types text into it.
	Type(ctx context.Context, selector, text string) error
	// Submit clicks selector, or presses Enter when selector is empty, and
	// waits for the resulting navigation. Finding and clicking the element is
	// bounded by clickTimeout; the navigation wait is bounded by ctx.
	Submit(ctx context.Context, selector string, clickTimeout time.Duration) error
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Launcher starts a Browser.
type Launcher func(ctx context.Context) (Browser, error)
