package search

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodOptions configures the rod-backed launcher.
type RodOptions struct {
	// BrowserURL connects to an already running browser (DevTools websocket
	// URL) instead of launching one.
	BrowserURL string
	// Bin overrides the browser executable.
	Bin       string
	Headless  bool
	NoSandbox bool
}

// RodLauncher returns a Launcher that starts (or connects to) Chromium via rod.
func RodLauncher(opts RodOptions) Launcher {
	return func(ctx context.Context) (Browser, error) {
		controlURL := opts.BrowserURL
		if controlURL == "" {
			l := launcher.New().
				Context(ctx).
				Headless(opts.Headless).
				NoSandbox(opts.NoSandbox).
				Set("disable-blink-features", "AutomationControlled")
			if opts.Bin != "" {
				l = l.Bin(opts.Bin)
			}
			u, err := l.Launch()
			if err != nil {
				return nil, err
			}
			controlURL = u
		}

		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			return nil, err
		}
		return &rodBrowser{browser: browser}, nil
	}
}

type rodBrowser struct {
	browser *rod.Browser
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	page, err := b.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	// Drop the creation context so later calls can bind their own.
	return &rodPage{page: page.Context(context.Background())}, nil
}

func (b *rodBrowser) Close() error {
	return b.browser.Close()
}

type rodPage struct {
	page *rod.Page
}

func (p *rodPage) SetUserAgent(ua string) error {
	return p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      ua,
		AcceptLanguage: "en-US,en;q=0.9",
	})
}

func (p *rodPage) SetViewport(width, height int) error {
	return p.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
	})
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return err
	}
	if err := page.WaitLoad(); err != nil {
		return err
	}
	// Let late XHRs settle; a page that never idles is still usable.
	_ = page.WaitIdle(2 * time.Second)
	return ctx.Err()
}

func (p *rodPage) Has(ctx context.Context, selector string) (bool, error) {
	has, _, err := p.page.Context(ctx).Has(selector)
	return has, err
}

func (p *rodPage) WaitVisible(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (p *rodPage) WaitGone(ctx context.Context, selector string) error {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		has, err := p.Has(ctx, selector)
		if err != nil {
			return err
		}
		if !has {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *rodPage) Type(ctx context.Context, selector, text string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.Input(text)
}

func (p *rodPage) Submit(ctx context.Context, selector string, clickTimeout time.Duration) error {
	navCtx, cancelNav := context.WithCancel(ctx)
	defer cancelNav()
	wait := p.page.Context(navCtx).WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)

	if err := p.trigger(ctx, selector, clickTimeout); err != nil {
		// Release the navigation listener before giving up.
		cancelNav()
		wait()
		return err
	}

	wait()
	return ctx.Err()
}

func (p *rodPage) trigger(ctx context.Context, selector string, clickTimeout time.Duration) error {
	if clickTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, clickTimeout)
		defer cancel()
	}
	page := p.page.Context(ctx)

	if selector == "" {
		return page.Keyboard.Type(input.Enter)
	}
	el, err := page.Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *rodPage) Close() error {
	return p.page.Close()
}
