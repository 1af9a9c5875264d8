package models

import (
	"fmt"
	"time"
)

// Source identifies the review site a record was harvested from.
type Source string

const (
	SourceG2          Source = "G2"
	SourceTrustRadius Source = "TrustRadius"
	SourceCapterra    Source = "Capterra"
)

// Date is a calendar date without a time component. It marshals to the
// ISO-8601 date form ("2006-01-02") used in the output file.
type Date struct {
	time.Time
}

// NewDate builds a Date truncated to midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(fmt.Sprintf("%q", d.Format("2006-01-02"))), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(`"2006-01-02"`, s)
	if err != nil {
		return fmt.Errorf("date: parse %s: %w", s, err)
	}
	d.Time = t
	return nil
}

// Review is the unit of harvested output. Body is always non-empty and Date
// always falls inside the requested window by construction; Title degrades to
// "" and Rating to null when the source exposes nothing usable.
type Review struct {
	Source Source  `json:"source"`
	Title  string  `json:"title"`
	Body   string  `json:"review"`
	Date   Date    `json:"date"`
	Rating *string `json:"rating"`
}

// DateWindow is the caller-supplied inclusive harvest range. It is immutable
// for the duration of a run.
type DateWindow struct {
	Start Date
	End   Date
}

// Contains reports whether d lies inside the window. A zero date (failed
// parse) is never in range.
func (w DateWindow) Contains(d Date) bool {
	if d.IsZero() {
		return false
	}
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// Before reports whether d predates the window start. Zero dates are not
// "older"; they carry no ordering signal.
func (w DateWindow) Before(d Date) bool {
	return !d.IsZero() && d.Time.Before(w.Start.Time)
}

// StopReason records why pagination halted.
type StopReason string

const (
	StopNone         StopReason = "none"
	StopMaxPages     StopReason = "max_pages"
	StopNoContainers StopReason = "no_containers"
	StopBlocked      StopReason = "blocked"
	StopDateBoundary StopReason = "date_boundary"
)

// HarvestResult aggregates one run of the pagination controller. It is
// transient per-run state and is never persisted.
type HarvestResult struct {
	Source       Source
	Reviews      []*Review
	StopReason   StopReason
	PagesFetched int
}

// Summary holds the post-run analytics printed after a harvest.
type Summary struct {
	Total          int
	Titled         int
	Rated          int
	AverageRating  float64
	Earliest       Date
	Latest         Date
	ReviewsByMonth map[string]int
}
