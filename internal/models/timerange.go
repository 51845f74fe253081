// ABOUTME: Time range types produced by the time resolver
// ABOUTME: Precision scores rank how exactly a phrase pins down its range
package models

import "time"

// TimePrecision scores how exactly a phrase identifies its range.
// Higher wins when deduplicating overlapping ranges.
type TimePrecision int

const (
	PrecisionAbsoluteDate   TimePrecision = 100
	PrecisionAbsoluteMonth  TimePrecision = 80
	PrecisionRelativeRecent TimePrecision = 60
	PrecisionRelative       TimePrecision = 40
	PrecisionVague          TimePrecision = 20
)

// TimeRange is a resolved inclusive time span
type TimeRange struct {
	Start     time.Time     `json:"start"`
	End       time.Time     `json:"end"`
	Precision TimePrecision `json:"precision"`
	Source    string        `json:"source,omitempty"`
}

// Span returns the length of the range
func (r TimeRange) Span() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether two ranges share any instant
func (r TimeRange) Overlaps(o TimeRange) bool {
	return !r.End.Before(o.Start) && !o.End.Before(r.Start)
}

// ContrastKind identifies how a comparison baseline relates to the main range
type ContrastKind string

const (
	// ContrastYearOverYear - Same span shifted back one year
	ContrastYearOverYear ContrastKind = "year_over_year"

	// ContrastPeriodOverPeriod - Immediately preceding span of equal length
	ContrastPeriodOverPeriod ContrastKind = "period_over_period"

	// ContrastExplicit - Baseline named outright in the question
	ContrastExplicit ContrastKind = "explicit"
)
