package scraper

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"review-harvester/models"
)

// minBodyLength filters out short non-review fragments (button labels,
// "Helpful?" prompts) that happen to match a body selector.
const minBodyLength = 20

// fieldStrategy is one candidate in an ordered fallback chain. Candidates are
// tried in order; the first one that yields an acceptable value wins and the
// rest of the chain is never consulted.
type fieldStrategy struct {
	// selector is the CSS selector to look up inside the review container.
	selector string
	// contains, when set, requires the element text to contain this
	// substring (used for "Reviewed on" date markers and similar).
	contains string
	// attr, when set, reads this attribute instead of the element text
	// (used for machine-readable meta ratings).
	attr string
	// minLen, when positive, rejects values shorter than this many bytes.
	minLen int
}

// firstMatch runs a fallback chain against one review container and returns
// the first accepted value, or "" when every candidate fails.
func firstMatch(container *goquery.Selection, chain []fieldStrategy) string {
	for _, strat := range chain {
		var value string
		container.Find(strat.selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			var text string
			if strat.attr != "" {
				text, _ = sel.Attr(strat.attr)
			} else {
				text = sel.Text()
			}
			text = collapseWhitespace(text)
			if text == "" {
				return true
			}
			if strat.contains != "" && !strings.Contains(text, strat.contains) {
				return true
			}
			if strat.minLen > 0 && len(text) < strat.minLen {
				return true
			}
			value = text
			return false
		})
		if value != "" {
			return value
		}
	}
	return ""
}

// extract pulls one candidate review container apart field by field. It
// returns the accepted record, or nil when the container has no usable body
// or its date falls outside the window. old is set when the parsed date
// predates the window start; the caller uses that as the reverse-chronology
// stop signal.
func (a *Adapter) extract(container *goquery.Selection, window models.DateWindow) (rev *models.Review, old bool) {
	body := firstMatch(container, a.bodyChain)

	var date models.Date
	if text := firstMatch(container, a.dateChain); text != "" {
		date = ParseReviewDate(text)
	}

	if window.Before(date) {
		return nil, true
	}
	if body == "" || !window.Contains(date) {
		return nil, false
	}

	// Title and rating degrade to empty/null rather than rejecting the record.
	title := firstMatch(container, a.titleChain)
	var rating *string
	if r := firstMatch(container, a.ratingChain); r != "" {
		rating = &r
	}

	return &models.Review{
		Source: a.Source,
		Title:  title,
		Body:   body,
		Date:   date,
		Rating: rating,
	}, false
}

// collapseWhitespace strips leading/trailing whitespace and collapses internal
// whitespace runs to single spaces.
func collapseWhitespace(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
