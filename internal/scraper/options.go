package scraper

// Selectors narrows extraction with caller-supplied CSS selectors.
type Selectors struct {
	// Remove lists extra selectors dropped together with the built-in denylist.
	Remove []string
	// Focus, when set, replaces the content-root lookup.
	Focus string
}

// Options controls Scrape. Start from DefaultOptions and override fields;
// the zero value turns every feature off.
type Options struct {
	IncludeMetadata bool
	IncludeLinks    bool
	CleanWhitespace bool
	Selectors       Selectors

	// UseReadability picks the content root with a readability pass instead
	// of the fixed selector list. Ignored when Selectors.Focus is set.
	UseReadability bool
}

// DefaultOptions returns metadata, links and whitespace cleanup enabled.
func DefaultOptions() Options {
	return Options{
		IncludeMetadata: true,
		IncludeLinks:    true,
		CleanWhitespace: true,
	}
}

// removeSelectors are elements that never carry page content.
var removeSelectors = []string{
	"script",
	"style",
	"noscript",
	"iframe",
	"svg",
	"nav",
	"footer",
	`[role="banner"]`,
	`[role="navigation"]`,
	`[role="complementary"]`,
	".ad",
	".ads",
	".advert",
	".advertisement",
	`[class*="advert"]`,
	`[id*="advert"]`,
	`[class^="ad-"]`,
	`[id^="ad-"]`,
	".sidebar",
	"#sidebar",
	`[class~="sidebar"]`,
	`[class*="sidebar-widget"]`,
	".cookie-banner",
	"#cookie-banner",
	`[class*="cookie-banner"]`,
	`[class*="cookie-notice"]`,
	`[id*="cookie-banner"]`,
	`[id*="cookie-notice"]`,
}

// contentRootSelectors are tried in order; the first with a match wins.
var contentRootSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	"#content",
	".content",
}
