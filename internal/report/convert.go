// ABOUTME: Deterministic conversion from extracted parameters to API requests
// ABOUTME: Fails loudly on incomplete input so the fallback layer can step in
package report

import (
	"errors"
	"fmt"

	"github.com/ecosense/aqroute/internal/models"
)

const timePointLayout = "2006-01-02 15:04:05"

var (
	// ErrMissingLocation means no location survived extraction
	ErrMissingLocation = errors.New("no location resolved")

	// ErrMissingTime means no time range survived extraction
	ErrMissingTime = errors.New("no time range resolved")

	// ErrMissingContrast means a comparison has no baseline period
	ErrMissingContrast = errors.New("comparison without contrast range")

	// ErrAmbiguousLocation means several locations in clarify mode
	ErrAmbiguousLocation = errors.New("multiple locations need clarification")
)

// Convert turns extracted parameters into a reporting API request.
// Locations must already be deduplicated to a single level; all codes of
// that level go into one call. multiLocationMode "clarify" refuses more
// than one location instead.
func Convert(p *models.ExtractedParameters, multiLocationMode string) (*models.ReportRequest, error) {
	if !p.HasLocation() {
		return nil, ErrMissingLocation
	}
	if !p.HasTime() {
		return nil, ErrMissingTime
	}
	if multiLocationMode == "clarify" && len(p.Locations) > 1 {
		return nil, ErrAmbiguousLocation
	}

	level := p.Locations[0].Level
	codes := make([]string, 0, len(p.Locations))
	for _, loc := range p.Locations {
		if loc.Level != level {
			return nil, fmt.Errorf("locations span levels %s and %s; deduplicate first", level, loc.Level)
		}
		codes = append(codes, loc.Code)
	}

	kind := p.ReportKind
	if kind == "" {
		kind = models.ReportSummary
	}

	main := p.TimeRanges[0]
	req := &models.ReportRequest{
		Kind:         kind,
		AreaType:     level.AreaType(),
		StationCodes: codes,
		TimeType:     p.TimeType,
		TimePoint: [2]string{
			main.Start.Format(timePointLayout),
			main.End.Format(timePointLayout),
		},
		DataSource: p.DataSource,
	}

	if kind == models.ReportComparison {
		if p.ContrastTime == nil {
			return nil, ErrMissingContrast
		}
		req.ContrastTime = [2]string{
			p.ContrastTime.Start.Format(timePointLayout),
			p.ContrastTime.End.Format(timePointLayout),
		}
	}
	return req, nil
}
