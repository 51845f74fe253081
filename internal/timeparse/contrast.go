// ABOUTME: Comparison baseline inference for year-over-year and period-over-period
// ABOUTME: Explicit baselines in the text win over keyword-derived offsets
package timeparse

import (
	"regexp"
	"strings"
	"time"

	"github.com/ecosense/aqroute/internal/models"
)

var explicitContrastRe = regexp.MustCompile(`[与和跟](.{2,20}?)(?:相比|对比|比较)`)

// Contrast derives the comparison baseline for a main range from the
// question text. Returns nil when the text carries no comparison cue.
func (p *Parser) Contrast(text string, main models.TimeRange) (*models.TimeRange, models.ContrastKind) {
	// An outright named baseline ("与2024年6月相比") beats keyword inference
	if m := explicitContrastRe.FindStringSubmatch(text); m != nil {
		if ranges := p.Parse(m[1]); len(ranges) > 0 {
			r := ranges[0]
			return &r, models.ContrastExplicit
		}
	}

	if strings.Contains(text, "同比") {
		r := ShiftYears(main, -1)
		return &r, models.ContrastYearOverYear
	}
	if strings.Contains(text, "环比") {
		r := ShiftBackBySpan(main)
		return &r, models.ContrastPeriodOverPeriod
	}
	return nil, ""
}

// ShiftYears moves a range whole years while keeping its day-of-year shape
func ShiftYears(r models.TimeRange, years int) models.TimeRange {
	return models.TimeRange{
		Start:     r.Start.AddDate(years, 0, 0),
		End:       r.End.AddDate(years, 0, 0),
		Precision: r.Precision,
		Source:    r.Source,
	}
}

// ShiftBackBySpan returns the equal-length period immediately before r.
// Calendar months shift by a whole month so June compares against May,
// not against a 30-day window ending mid-May.
func ShiftBackBySpan(r models.TimeRange) models.TimeRange {
	if isCalendarMonths(r) {
		months := monthsBetween(r.Start, r.End)
		start := r.Start.AddDate(0, -months, 0)
		return models.TimeRange{
			Start:     start,
			End:       dayEnd(r.Start.AddDate(0, 0, -1)),
			Precision: r.Precision,
			Source:    r.Source,
		}
	}
	days := int(dayStart(r.End).Sub(dayStart(r.Start)).Hours()/24) + 1
	return models.TimeRange{
		Start:     r.Start.AddDate(0, 0, -days),
		End:       dayEnd(r.Start.AddDate(0, 0, -1)),
		Precision: r.Precision,
		Source:    r.Source,
	}
}

// isCalendarMonths reports whether r spans whole months exactly
func isCalendarMonths(r models.TimeRange) bool {
	if r.Start.Day() != 1 {
		return false
	}
	next := dayStart(r.End).AddDate(0, 0, 1)
	return next.Day() == 1
}

func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	return months + 1
}
