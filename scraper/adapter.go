package scraper

import (
	"fmt"
	"net/url"
	"strings"

	"review-harvester/models"
)

// Adapter bundles everything site-specific: the listing URL scheme, the
// ordered candidate selectors for review containers and fields, and per-page
// interaction tuning. The pagination controller and extraction pipeline are
// shared across sites; only these values differ.
type Adapter struct {
	Source models.Source

	// ScrollSteps is how many downward scroll deltas each page gets before
	// markup capture, to trigger lazy-loaded review cards.
	ScrollSteps int

	// Stub marks a documented no-op adapter: the harvest returns an empty
	// collection unconditionally, preserving the interface for a future
	// implementation without pretending to function.
	Stub bool

	urlTemplate        string
	containerSelectors []string

	bodyChain   []fieldStrategy
	dateChain   []fieldStrategy
	titleChain  []fieldStrategy
	ratingChain []fieldStrategy
}

var g2Adapter = &Adapter{
	Source:      models.SourceG2,
	ScrollSteps: 7,
	urlTemplate: "https://www.g2.com/products/%s/reviews",
	containerSelectors: []string{
		"div.paper",
		"div[data-testid*='review']",
		"article",
		"[itemprop='review']",
		"div[class*='review']",
	},
	bodyChain: []fieldStrategy{
		{selector: "div[itemprop='reviewBody']", minLen: minBodyLength},
		{selector: "[data-testid*='review-text']", minLen: minBodyLength},
		{selector: "div[class*='reviewBody']", minLen: minBodyLength},
		{selector: "div[class*='review-body']", minLen: minBodyLength},
		{selector: "p", minLen: minBodyLength},
	},
	dateChain: []fieldStrategy{
		{selector: "time"},
		{selector: "span", contains: "Reviewed on"},
		{selector: "div", contains: "Reviewed on"},
	},
	titleChain: []fieldStrategy{
		{selector: "h3"},
	},
	ratingChain: []fieldStrategy{
		{selector: "span[itemprop='ratingValue']"},
		{selector: "meta[itemprop='ratingValue']", attr: "content"},
	},
}

var trustRadiusAdapter = &Adapter{
	Source:      models.SourceTrustRadius,
	ScrollSteps: 5,
	urlTemplate: "https://www.trustradius.com/products/%s/reviews",
	containerSelectors: []string{
		"article",
		"div.review",
		"[data-testid*='review']",
	},
	bodyChain: []fieldStrategy{
		{selector: "p", minLen: minBodyLength},
		{selector: "div[class*='review']", minLen: minBodyLength},
		{selector: "div[class*='content']", minLen: minBodyLength},
	},
	dateChain: []fieldStrategy{
		{selector: "time"},
		// TrustRadius renders dates inline as "Month DD, 20xx" text.
		{selector: "span", contains: ", 20"},
		{selector: "div", contains: ", 20"},
	},
	titleChain: []fieldStrategy{
		{selector: "h3"},
	},
	// TrustRadius cards expose no reliable rating element; rating stays null.
	ratingChain: nil,
}

// capterraAdapter is a placeholder. Capterra listing pages require numeric
// product IDs and sit behind heavier bot protection; the adapter keeps the
// interface so a future implementation can slot in.
var capterraAdapter = &Adapter{
	Source:      models.SourceCapterra,
	Stub:        true,
	urlTemplate: "https://www.capterra.com/p/%s/reviews/",
}

// ForSource resolves a CLI source name to its adapter.
func ForSource(name string) (*Adapter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "g2":
		return g2Adapter, nil
	case "trustradius":
		return trustRadiusAdapter, nil
	case "capterra":
		return capterraAdapter, nil
	default:
		return nil, fmt.Errorf("unknown source %q (expected g2, trustradius or capterra)", name)
	}
}

// PageURL builds the listing URL for a page number. Page 1 is the bare
// listing URL; later pages append the page query parameter.
func (a *Adapter) PageURL(slug string, page int) string {
	base := fmt.Sprintf(a.urlTemplate, url.PathEscape(slug))
	if page <= 1 {
		return base
	}
	return fmt.Sprintf("%s?page=%d", base, page)
}

// containerQuery is the broad-net selector used to collect review cards once
// the probe has confirmed at least one candidate matches.
func (a *Adapter) containerQuery() string {
	return strings.Join(a.containerSelectors, ", ")
}
