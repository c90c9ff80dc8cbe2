package search

// Search result markup changes without notice, so every lookup below is an
// ordered cascade: candidates are tried in order and the first hit wins.
// Order matters; newer layouts come first.

// captchaSelectors indicate an interstitial challenge page.
var captchaSelectors = []string{
	"#captcha-form",
	"form#captcha",
	`form[action*="sorry"]`,
	"#recaptcha",
	`iframe[src*="recaptcha"]`,
	".g-recaptcha",
}

// searchInputSelectors locate the query box on the home page.
var searchInputSelectors = []string{
	`textarea[name="q"]`,
	`input[name="q"]`,
	`textarea[title="Search"]`,
	`input[title="Search"]`,
	`input[type="search"]`,
	`input[type="text"]`,
}

// submitSelectors locate the search button. When none matches the query is
// submitted with Enter.
var submitSelectors = []string{
	`input[name="btnK"]`,
	`button[type="submit"]`,
	`input[type="submit"]`,
	`button[aria-label="Search"]`,
}

// resultSelectors are result containers, checked after submission and used
// first during extraction.
var resultSelectors = []string{
	"#search .g",
	"#rso .g",
	".MjjYud",
	"div.g",
	".tF2Cxc",
	"[data-sokoban-container]",
}

// genericResultSelectors extend resultSelectors during extraction only.
var genericResultSelectors = []string{
	"#rso > div",
	"div[data-hveid]",
	"div[data-ved]",
	".rc",
}

// titleLinkSelectors locate the anchor of a result, relative to its container.
var titleLinkSelectors = []string{
	".yuRUbf a",
	"a:has(h3)",
	"h3 a",
	"a[data-ved]",
	"a[href]",
}

// titleTextSelectors locate the visible title, relative to the anchor first
// and the container second.
var titleTextSelectors = []string{
	"h3",
	`[role="heading"]`,
	".LC20lb",
}

// snippetSelectors locate the description text of a result.
var snippetSelectors = []string{
	".VwiC3b",
	"[data-sncf]",
	".IsZvec",
	".s3v9rd",
	".st",
	".aCOpRe",
	`div[style*="-webkit-line-clamp"]`,
	`div[data-content-feature="1"]`,
}

// iconSelectors locate the site favicon inside a result.
var iconSelectors = []string{
	"img.XNo5Ab",
	".H9lube img",
	"img",
}

// internalPathPrefixes are engine endpoints that redirect or track clicks.
var internalPathPrefixes = []string{
	"/url",
	"/aclk",
	"/search",
	"/imgres",
	"/preferences",
	"/setprefs",
	"/advanced_search",
	"/webhp",
	"/sorry",
}
