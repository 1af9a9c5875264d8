package scraper

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"

	"review-harvester/models"
)

var (
	reviewedOnRegexp = regexp.MustCompile(`(?i)reviewed\s+on\s+`)
	// datePartRegexp pulls a date-looking fragment out of surrounding prose,
	// e.g. "Incredibly useful · March 5, 2024 · Verified".
	datePartRegexp = regexp.MustCompile(
		`(?i)([a-z]{3,9}\.?\s+\d{1,2},?\s+\d{4}|\d{1,2}\s+[a-z]{3,9}\.?\s+\d{4}|\d{4}-\d{2}-\d{2}|\d{1,2}/\d{1,2}/\d{4})`)
)

// ParseReviewDate normalizes the raw text of a date element into a calendar
// date. Known prefix phrases are stripped first, then the text is parsed
// leniently; if the whole string does not parse, a date-looking fragment is
// extracted and retried. Unparseable text yields the zero Date.
func ParseReviewDate(text string) models.Date {
	cleaned := strings.TrimSpace(reviewedOnRegexp.ReplaceAllString(strings.TrimSpace(text), ""))
	if cleaned == "" {
		return models.Date{}
	}

	if t, err := dateparse.ParseAny(cleaned); err == nil {
		return models.DateOf(t)
	}

	if frag := datePartRegexp.FindString(cleaned); frag != "" {
		if t, err := dateparse.ParseAny(frag); err == nil {
			return models.DateOf(t)
		}
	}

	return models.Date{}
}
