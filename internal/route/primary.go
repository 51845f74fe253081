// ABOUTME: Primary router deciding structured API versus general query paths
// ABOUTME: Trigger terms override, then keywords, then TF-IDF similarity
package route

import (
	"strings"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/models"
)

// The keyword layer's verdict must clear this confidence to stand on
// its own; anything weaker defers to the similarity layer.
const keywordAcceptThreshold = 0.6

// PrimaryRouter picks the processing path for each question
type PrimaryRouter struct {
	cfg *config.Store
}

// NewPrimaryRouter builds a router over the given config store
func NewPrimaryRouter(cfg *config.Store) *PrimaryRouter {
	return &PrimaryRouter{cfg: cfg}
}

// Route classifies a question. Never returns an error; when no layer
// is confident the decision is a clarification request.
func (r *PrimaryRouter) Route(question string) models.RoutingDecision {
	rc := r.cfg.Get()
	trace := make([]models.StageTrace, 0, 3)

	// Exploratory vocabulary forces the general path outright
	for _, term := range rc.TriggerTerms {
		if strings.Contains(question, term) {
			trace = append(trace, models.StageTrace{
				Stage: models.StageTriggerTerm, Target: models.TargetGeneralQuery,
				Confidence: 1.0, Detail: term,
			})
			return models.RoutingDecision{
				Target:     models.TargetGeneralQuery,
				Confidence: 1.0,
				Stage:      models.StageTriggerTerm,
				Trace:      trace,
			}
		}
	}
	trace = append(trace, models.StageTrace{Stage: models.StageTriggerTerm})

	keyword := keywordDecision(rc, question)
	trace = append(trace, models.StageTrace{
		Stage: models.StageKeyword, Target: keyword.Target,
		Confidence: keyword.Confidence,
	})
	if keyword.Confidence >= keywordAcceptThreshold {
		keyword.Trace = trace
		return keyword
	}

	// Without exemplars the similarity layer can only ever say zero,
	// which would turn every weak keyword verdict into a clarification.
	// The keyword verdict is the best evidence available; keep it.
	if len(rc.StructuredExemplars) == 0 && len(rc.GeneralExemplars) == 0 {
		keyword.Trace = trace
		return keyword
	}

	target, sim := newClassifier(rc.StructuredExemplars, rc.GeneralExemplars).classify(question)
	trace = append(trace, models.StageTrace{
		Stage: models.StageSimilarity, Target: target, Confidence: sim,
	})
	if sim >= rc.SimilarityThreshold {
		return models.RoutingDecision{
			Target:     target,
			Confidence: sim,
			Stage:      models.StageSimilarity,
			Trace:      trace,
		}
	}

	return models.RoutingDecision{
		Target:     models.TargetClarification,
		Confidence: sim,
		Stage:      models.StageSimilarity,
		Trace:      trace,
	}
}

// keywordDecision applies the API-priority rule: any structured keyword
// is a strong structured verdict, no keyword is a weak one.
func keywordDecision(rc *config.RoutingConfig, question string) models.RoutingDecision {
	for _, kw := range rc.StructuredKeywords {
		if strings.Contains(question, kw) {
			return models.RoutingDecision{
				Target:     models.TargetStructuredAPI,
				Confidence: 0.9,
				Stage:      models.StageKeyword,
			}
		}
	}
	return models.RoutingDecision{
		Target:     models.TargetStructuredAPI,
		Confidence: 0.5,
		Stage:      models.StageKeyword,
	}
}
