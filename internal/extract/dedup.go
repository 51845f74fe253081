// ABOUTME: Parameter deduplication with most-specific-location-wins semantics
// ABOUTME: Idempotent; running it twice changes nothing
package extract

import (
	"github.com/ecosense/aqroute/internal/models"
)

// Deduplicate collapses redundant locations and time ranges in place
// and returns the same parameter set for chaining.
//
// Locations keep only the finest level present, so a question naming a
// city and a station keeps the station. Within the kept level duplicate
// codes collapse to the highest-confidence candidate. Overlapping time
// ranges keep the most precise phrase.
func Deduplicate(p *models.ExtractedParameters) *models.ExtractedParameters {
	p.Locations = dedupLocations(p.Locations)
	p.TimeRanges = dedupTimeRanges(p.TimeRanges)
	return p
}

func dedupLocations(locs []models.GeoCandidate) []models.GeoCandidate {
	if len(locs) < 2 {
		return locs
	}

	finest := 0
	for _, l := range locs {
		if s := l.Level.Specificity(); s > finest {
			finest = s
		}
	}

	byCode := make(map[string]models.GeoCandidate)
	order := make([]string, 0, len(locs))
	for _, l := range locs {
		if l.Level.Specificity() != finest {
			continue
		}
		prev, seen := byCode[l.Code]
		if !seen {
			order = append(order, l.Code)
			byCode[l.Code] = l
			continue
		}
		if l.Confidence > prev.Confidence {
			byCode[l.Code] = l
		}
	}

	out := make([]models.GeoCandidate, 0, len(order))
	for _, code := range order {
		out = append(out, byCode[code])
	}
	return out
}

func dedupTimeRanges(ranges []models.TimeRange) []models.TimeRange {
	if len(ranges) < 2 {
		return ranges
	}

	out := make([]models.TimeRange, 0, len(ranges))
	for _, r := range ranges {
		replaced := false
		drop := false
		for i, kept := range out {
			if !kept.Overlaps(r) {
				continue
			}
			if r.Precision > kept.Precision {
				out[i] = r
				replaced = true
			} else {
				drop = true
			}
			break
		}
		if !replaced && !drop {
			out = append(out, r)
		}
	}
	return out
}
