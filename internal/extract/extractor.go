// ABOUTME: Parameter extraction pipeline for structured questions
// ABOUTME: Runs geo and time resolvers, infers report kind and API codes
package extract

import (
	"strings"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/geo"
	"github.com/ecosense/aqroute/internal/models"
	"github.com/ecosense/aqroute/internal/route"
	"github.com/ecosense/aqroute/internal/timeparse"
)

// ComplexityThreshold is the number of distinct time ranges at which a
// question stops being a single report call
const ComplexityThreshold = 2

// Extractor pulls structured report parameters out of a question
type Extractor struct {
	cfg       *config.Store
	geo       *geo.Resolver
	times     *timeparse.Parser
	secondary *route.SecondaryRouter
}

// New builds the extraction pipeline
func New(cfg *config.Store, resolver *geo.Resolver, parser *timeparse.Parser) *Extractor {
	return &Extractor{
		cfg:       cfg,
		geo:       resolver,
		times:     parser,
		secondary: route.NewSecondaryRouter(cfg),
	}
}

// Extract resolves every parameter the question carries and deduplicates
// the result. Missing parameters are left empty for the fallback layer.
func (e *Extractor) Extract(question string) *models.ExtractedParameters {
	rc := e.cfg.Get()

	params := &models.ExtractedParameters{
		Locations:  e.geo.Resolve(question),
		TimeRanges: e.times.Parse(question),
		DataSource: dataSource(rc, question),
		TimeType:   timeType(rc, question),
	}
	params.ReportKind, _ = e.secondary.Kind(question)

	if params.ReportKind == models.ReportComparison && len(params.TimeRanges) > 0 {
		params.ContrastTime, params.ContrastKind = e.times.Contrast(question, params.TimeRanges[0])
		// An explicitly named baseline also shows up as a parsed range;
		// it belongs to the contrast slot, not the main range count.
		if params.ContrastTime != nil {
			params.TimeRanges = dropRange(params.TimeRanges, *params.ContrastTime)
		}
	}

	return Deduplicate(params)
}

// Complex reports whether the question asks for more than one report's
// worth of data. Such questions skip deterministic conversion entirely.
func Complex(p *models.ExtractedParameters) bool {
	return len(p.TimeRanges) >= ComplexityThreshold
}

func dropRange(ranges []models.TimeRange, target models.TimeRange) []models.TimeRange {
	out := ranges[:0]
	for _, r := range ranges {
		if r.Start.Equal(target.Start) && r.End.Equal(target.End) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// timeType maps report vocabulary to the API's period code, defaulting
// to the arbitrary-range code
func timeType(rc *config.RoutingConfig, question string) models.TimeType {
	for kw, code := range rc.TimeTypeKeywords {
		if strings.Contains(question, kw) {
			if t := models.TimeType(code); t.IsValid() {
				return t
			}
		}
	}
	return models.TimeTypeArbitrary
}

// dataSource maps measurement stream vocabulary to its code, defaulting
// to reviewed live data
func dataSource(rc *config.RoutingConfig, question string) models.DataSource {
	for kw, code := range rc.DataSourceKeywords {
		if strings.Contains(question, kw) {
			if s := models.DataSource(code); s.IsValid() {
				return s
			}
		}
	}
	return models.SourceReviewedLive
}
