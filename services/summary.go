package services

import (
	"regexp"
	"sort"
	"strconv"

	"review-harvester/models"
	"review-harvester/utils"
)

// numberRegexp captures the first numeric value in a raw rating string,
// e.g. "4.5", "4.5 out of 5", "9/10".
var numberRegexp = regexp.MustCompile(`\d+(?:\.\d+)?`)

// SummaryService computes post-run analytics over the harvested reviews.
type SummaryService struct {
	logger *utils.Logger
}

// NewSummaryService creates a SummaryService with the given logger.
func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

// Generate builds a Summary for one harvest.
func (s *SummaryService) Generate(reviews []*models.Review) *models.Summary {
	summary := &models.Summary{
		ReviewsByMonth: make(map[string]int),
	}

	if len(reviews) == 0 {
		return summary
	}

	summary.Total = len(reviews)
	summary.Earliest = reviews[0].Date
	summary.Latest = reviews[0].Date

	var ratingSum float64
	for _, r := range reviews {
		if r.Title != "" {
			summary.Titled++
		}
		if v, ok := parseRatingValue(r.Rating); ok {
			summary.Rated++
			ratingSum += v
		}
		if r.Date.Before(summary.Earliest.Time) {
			summary.Earliest = r.Date
		}
		if r.Date.After(summary.Latest.Time) {
			summary.Latest = r.Date
		}
		summary.ReviewsByMonth[r.Date.Format("2006-01")]++
	}

	if summary.Rated > 0 {
		summary.AverageRating = ratingSum / float64(summary.Rated)
	}

	return summary
}

// Print logs the summary in a human-readable form.
func (s *SummaryService) Print(summary *models.Summary) {
	if summary.Total == 0 {
		s.logger.Info("[summary] No reviews collected")
		return
	}

	s.logger.Info("[summary] Collected %d reviews (%d titled, %d rated)",
		summary.Total, summary.Titled, summary.Rated)
	if summary.Rated > 0 {
		s.logger.Info("[summary] Average rating: %.2f", summary.AverageRating)
	}
	s.logger.Info("[summary] Date coverage: %s — %s",
		summary.Earliest.Format("2006-01-02"), summary.Latest.Format("2006-01-02"))

	months := make([]string, 0, len(summary.ReviewsByMonth))
	for m := range summary.ReviewsByMonth {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		s.logger.Info("[summary]   %s: %d reviews", m, summary.ReviewsByMonth[m])
	}
}

// parseRatingValue extracts a numeric rating from the raw extracted text.
func parseRatingValue(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	match := numberRegexp.FindString(*raw)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
