package scraper

import "strings"

// blockIndicators are phrases that commonly appear on bot-check and
// interstitial pages served in place of real content. Matching is
// deliberately broad: a false positive costs one aborted run, while a missed
// interstitial silently harvests junk.
var blockIndicators = []string{
	"captcha",
	"access denied",
	"unusual traffic",
	"verify you are human",
	"robot",
	"blocked",
	"cloudflare",
	"please enable cookies",
}

// IsBlocked reports whether the rendered markup looks like a block or
// interstitial page rather than a normal listing. Case-insensitive substring
// search, first match wins.
func IsBlocked(html string) bool {
	low := strings.ToLower(html)
	for _, needle := range blockIndicators {
		if strings.Contains(low, needle) {
			return true
		}
	}
	return false
}
