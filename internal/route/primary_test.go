// ABOUTME: Tests for primary routing layers
// ABOUTME: Verifies trigger override, keyword rule, similarity fallback, clarification

package route

import (
	"path/filepath"
	"testing"

	"github.com/ecosense/aqroute/internal/config"
	"github.com/ecosense/aqroute/internal/models"
)

func newTestStore(t *testing.T) *config.Store {
	t.Helper()
	store, err := config.NewStore(filepath.Join(t.TempDir(), "routing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestRoute_TriggerTermOverridesKeywords(t *testing.T) {
	r := NewPrimaryRouter(newTestStore(t))

	// 排名 is a trigger term even though 空气质量 is a structured keyword
	got := r.Route("全省空气质量排名前十的城市")
	if got.Target != models.TargetGeneralQuery {
		t.Errorf("Target = %s, want general_query", got.Target)
	}
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %f, want 1.0", got.Confidence)
	}
	if got.Stage != models.StageTriggerTerm {
		t.Errorf("Stage = %s, want trigger_term", got.Stage)
	}
}

func TestRoute_KeywordSelectsStructured(t *testing.T) {
	r := NewPrimaryRouter(newTestStore(t))

	got := r.Route("生成武汉市上周的空气质量周报")
	if got.Target != models.TargetStructuredAPI {
		t.Errorf("Target = %s, want structured_api", got.Target)
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %f, want 0.9", got.Confidence)
	}
	if got.Stage != models.StageKeyword {
		t.Errorf("Stage = %s, want keyword", got.Stage)
	}
}

func TestRoute_SimilarityFallback(t *testing.T) {
	r := NewPrimaryRouter(newTestStore(t))

	// No trigger term, no structured keyword, but close to an exemplar
	got := r.Route("查询上周的质量情况")
	if got.Stage != models.StageSimilarity {
		t.Fatalf("Stage = %s, want similarity", got.Stage)
	}
	if got.Target == models.TargetClarification {
		t.Errorf("near-exemplar question should not need clarification, confidence %f", got.Confidence)
	}
}

func TestRoute_UnrelatedNeedsClarification(t *testing.T) {
	r := NewPrimaryRouter(newTestStore(t))

	got := r.Route("你好")
	if got.Target != models.TargetClarification {
		t.Errorf("Target = %s, want clarification_needed", got.Target)
	}
}

func TestRoute_TraceRecordsConsultedStages(t *testing.T) {
	r := NewPrimaryRouter(newTestStore(t))

	got := r.Route("你好")
	if len(got.Trace) != 3 {
		t.Fatalf("len(Trace) = %d, want 3 (trigger, keyword, similarity)", len(got.Trace))
	}
	if got.Trace[0].Stage != models.StageTriggerTerm {
		t.Errorf("Trace[0].Stage = %s, want trigger_term", got.Trace[0].Stage)
	}
	if got.Trace[2].Stage != models.StageSimilarity {
		t.Errorf("Trace[2].Stage = %s, want similarity", got.Trace[2].Stage)
	}
}

func TestKind_ComparisonKeyword(t *testing.T) {
	r := NewSecondaryRouter(newTestStore(t))

	tests := []struct {
		name     string
		question string
		want     models.ReportKind
	}{
		{"year over year", "武汉市6月空气质量同比情况", models.ReportComparison},
		{"period over period", "上周环比变化", models.ReportComparison},
		{"explicit compare", "6月和5月对比", models.ReportComparison},
		{"plain summary", "武汉市上周空气质量周报", models.ReportSummary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, kw := r.Kind(tt.question)
			if got != tt.want {
				t.Errorf("Kind(%q) = %s, want %s", tt.question, got, tt.want)
			}
			if tt.want == models.ReportComparison && kw == "" {
				t.Error("comparison decision should report the matching keyword")
			}
		})
	}
}

func TestRoute_NoExemplarsKeepsKeywordVerdict(t *testing.T) {
	rc := config.DefaultRouting()
	rc.StructuredExemplars = nil
	rc.GeneralExemplars = nil
	r := NewPrimaryRouter(config.NewStaticStore(rc))

	// No structured keyword either, so the keyword verdict is the weak
	// default. It must stand rather than degrade to a clarification.
	got := r.Route("查询上周的质量情况")
	if got.Target != models.TargetStructuredAPI {
		t.Errorf("Target = %s, want structured_api", got.Target)
	}
	if got.Stage != models.StageKeyword {
		t.Errorf("Stage = %s, want keyword", got.Stage)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %f, want 0.5", got.Confidence)
	}
}
