// ABOUTME: Secondary router picking the report kind for structured questions
// ABOUTME: Any comparison keyword selects the comparison report
package route

import (
	"strings"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/models"
)

// SecondaryRouter decides between summary and comparison reports
type SecondaryRouter struct {
	cfg *config.Store
}

// NewSecondaryRouter builds a router over the given config store
func NewSecondaryRouter(cfg *config.Store) *SecondaryRouter {
	return &SecondaryRouter{cfg: cfg}
}

// Kind returns the report kind for a structured question and the keyword
// that selected comparison, if any.
func (r *SecondaryRouter) Kind(question string) (models.ReportKind, string) {
	for _, kw := range r.cfg.Get().ComparisonKeywords {
		if strings.Contains(question, kw) {
			return models.ReportComparison, kw
		}
	}
	return models.ReportSummary, ""
}
