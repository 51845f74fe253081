// ABOUTME: Tests for the metrics counters and snapshot
// ABOUTME: Verifies route distribution, latency bucketing, and averages

package monitor

import (
	"testing"
	"time"

	"github.com/ecosense/aqroute/internal/models"
)

func TestMetrics_RouteDistribution(t *testing.T) {
	var m Metrics
	m.RecordRoute(models.TargetStructuredAPI)
	m.RecordRoute(models.TargetStructuredAPI)
	m.RecordRoute(models.TargetGeneralQuery)
	m.RecordRoute(models.TargetClarification)

	s := m.Snap()
	if s.Queries != 4 {
		t.Errorf("Queries = %d, want 4", s.Queries)
	}
	if s.Structured != 2 || s.General != 1 || s.Clarification != 1 {
		t.Errorf("distribution = %d/%d/%d, want 2/1/1", s.Structured, s.General, s.Clarification)
	}
}

func TestMetrics_LatencyBuckets(t *testing.T) {
	var m Metrics
	m.RecordLatency(50 * time.Millisecond)
	m.RecordLatency(300 * time.Millisecond)
	m.RecordLatency(3 * time.Second)
	m.RecordLatency(15 * time.Second)

	s := m.Snap()
	if s.LatencyBuckets["lt_100ms"] != 1 {
		t.Errorf("lt_100ms = %d, want 1", s.LatencyBuckets["lt_100ms"])
	}
	if s.LatencyBuckets["lt_500ms"] != 1 {
		t.Errorf("lt_500ms = %d, want 1", s.LatencyBuckets["lt_500ms"])
	}
	if s.LatencyBuckets["lt_10s"] != 1 {
		t.Errorf("lt_10s = %d, want 1", s.LatencyBuckets["lt_10s"])
	}
	if s.LatencyBuckets["ge_10s"] != 1 {
		t.Errorf("ge_10s = %d, want 1", s.LatencyBuckets["ge_10s"])
	}
	wantAvg := (50 + 300 + 3000 + 15000) / 4
	if s.LatencyAvgMS != int64(wantAvg) {
		t.Errorf("LatencyAvgMS = %d, want %d", s.LatencyAvgMS, wantAvg)
	}
}

func TestMetrics_RecoveryAndFallback(t *testing.T) {
	var m Metrics
	m.RecordRecovery(models.StageParamRetry)
	m.RecordRecovery(models.StageGeneralFallback)
	m.RecordFallback(true)
	m.RecordFallback(false)
	m.RecordReport(models.ReportSummary)
	m.RecordReport(models.ReportComparison)

	s := m.Snap()
	if s.RecoveryEntered["param_extraction_retry"] != 1 {
		t.Errorf("param_extraction_retry = %d, want 1", s.RecoveryEntered["param_extraction_retry"])
	}
	if s.RecoveryEntered["general_query_fallback"] != 1 {
		t.Errorf("general_query_fallback = %d, want 1", s.RecoveryEntered["general_query_fallback"])
	}
	if s.FallbackRuns != 2 || s.FallbackAccepted != 1 {
		t.Errorf("fallback = %d/%d, want 2/1", s.FallbackRuns, s.FallbackAccepted)
	}
	if s.SummaryReports != 1 || s.ComparisonReports != 1 {
		t.Errorf("reports = %d/%d, want 1/1", s.SummaryReports, s.ComparisonReports)
	}
}

func TestMetrics_ErrorClasses(t *testing.T) {
	var m Metrics
	m.RecordErrorClass(models.ClassAPIError)
	m.RecordErrorClass(models.ClassAPIError)
	m.RecordErrorClass(models.ClassAmbiguity)
	m.RecordErrorClass(models.ErrorClass("bogus"))

	s := m.Snap()
	if s.ErrorClasses["api_error"] != 2 {
		t.Errorf("api_error = %d, want 2", s.ErrorClasses["api_error"])
	}
	if s.ErrorClasses["ambiguity"] != 1 {
		t.Errorf("ambiguity = %d, want 1", s.ErrorClasses["ambiguity"])
	}
	if s.ErrorClasses["validation_failure"] != 0 {
		t.Errorf("validation_failure = %d, want 0", s.ErrorClasses["validation_failure"])
	}
	if _, ok := s.ErrorClasses["bogus"]; ok {
		t.Error("unknown classes should not be counted")
	}
}
