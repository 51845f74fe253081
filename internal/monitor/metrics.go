// ABOUTME: In-process counters for routing, recovery, and latency
// ABOUTME: Lock-free atomics; Snapshot renders them for the stats endpoint
package monitor

import (
	"sync/atomic"
	"time"

	"github.com/ecosense/aqroute/internal/models"
)

var bucketBounds = []time.Duration{
	100 * time.Millisecond,
	500 * time.Millisecond,
	2 * time.Second,
	10 * time.Second,
}

// Metrics accumulates service counters. The zero value is ready to use.
type Metrics struct {
	queries       atomic.Int64
	structured    atomic.Int64
	general       atomic.Int64
	clarification atomic.Int64
	errors        atomic.Int64

	summaryReports    atomic.Int64
	comparisonReports atomic.Int64

	recoveryEntered [5]atomic.Int64
	errorClasses    [5]atomic.Int64

	fallbackRuns     atomic.Int64
	fallbackAccepted atomic.Int64

	latencyTotalMS atomic.Int64
	latencyBuckets [5]atomic.Int64
}

// RecordRoute counts a primary routing outcome
func (m *Metrics) RecordRoute(target models.RoutingTarget) {
	m.queries.Add(1)
	switch target {
	case models.TargetStructuredAPI:
		m.structured.Add(1)
	case models.TargetGeneralQuery:
		m.general.Add(1)
	case models.TargetClarification:
		m.clarification.Add(1)
	}
}

// RecordReport counts which report kind was executed
func (m *Metrics) RecordReport(kind models.ReportKind) {
	if kind == models.ReportComparison {
		m.comparisonReports.Add(1)
		return
	}
	m.summaryReports.Add(1)
}

// RecordRecovery counts entry into a recovery stage
func (m *Metrics) RecordRecovery(stage models.RecoveryStage) {
	if stage >= 0 && int(stage) < len(m.recoveryEntered) {
		m.recoveryEntered[stage].Add(1)
	}
}

// RecordErrorClass counts the failure class behind a recovery transition
func (m *Metrics) RecordErrorClass(class models.ErrorClass) {
	for i, c := range models.ErrorClasses {
		if c == class {
			m.errorClasses[i].Add(1)
			return
		}
	}
}

// RecordFallback counts a fallback invocation and its outcome
func (m *Metrics) RecordFallback(accepted bool) {
	m.fallbackRuns.Add(1)
	if accepted {
		m.fallbackAccepted.Add(1)
	}
}

// RecordError counts a request that ended with an error status
func (m *Metrics) RecordError() {
	m.errors.Add(1)
}

// RecordLatency buckets one request's wall time
func (m *Metrics) RecordLatency(d time.Duration) {
	m.latencyTotalMS.Add(d.Milliseconds())
	for i, bound := range bucketBounds {
		if d < bound {
			m.latencyBuckets[i].Add(1)
			return
		}
	}
	m.latencyBuckets[len(bucketBounds)].Add(1)
}

// Snapshot is a point-in-time copy of every counter
type Snapshot struct {
	Queries       int64 `json:"queries"`
	Structured    int64 `json:"structured"`
	General       int64 `json:"general"`
	Clarification int64 `json:"clarification"`
	Errors        int64 `json:"errors"`

	SummaryReports    int64 `json:"summary_reports"`
	ComparisonReports int64 `json:"comparison_reports"`

	RecoveryEntered map[string]int64 `json:"recovery_entered"`
	ErrorClasses    map[string]int64 `json:"error_classes"`

	FallbackRuns     int64 `json:"fallback_runs"`
	FallbackAccepted int64 `json:"fallback_accepted"`

	LatencyTotalMS int64            `json:"latency_total_ms"`
	LatencyAvgMS   int64            `json:"latency_avg_ms"`
	LatencyBuckets map[string]int64 `json:"latency_buckets"`
}

var bucketNames = []string{"lt_100ms", "lt_500ms", "lt_2s", "lt_10s", "ge_10s"}

// Snap copies the counters into a serializable snapshot
func (m *Metrics) Snap() Snapshot {
	s := Snapshot{
		Queries:           m.queries.Load(),
		Structured:        m.structured.Load(),
		General:           m.general.Load(),
		Clarification:     m.clarification.Load(),
		Errors:            m.errors.Load(),
		SummaryReports:    m.summaryReports.Load(),
		ComparisonReports: m.comparisonReports.Load(),
		FallbackRuns:      m.fallbackRuns.Load(),
		FallbackAccepted:  m.fallbackAccepted.Load(),
		LatencyTotalMS:    m.latencyTotalMS.Load(),
		RecoveryEntered:   make(map[string]int64, len(m.recoveryEntered)),
		ErrorClasses:      make(map[string]int64, len(m.errorClasses)),
		LatencyBuckets:    make(map[string]int64, len(bucketNames)),
	}

	var latencyCount int64
	for i := range m.latencyBuckets {
		n := m.latencyBuckets[i].Load()
		s.LatencyBuckets[bucketNames[i]] = n
		latencyCount += n
	}
	if latencyCount > 0 {
		s.LatencyAvgMS = s.LatencyTotalMS / latencyCount
	}

	for i := range m.recoveryEntered {
		s.RecoveryEntered[models.RecoveryStage(i).String()] = m.recoveryEntered[i].Load()
	}
	for i, c := range models.ErrorClasses {
		s.ErrorClasses[string(c)] = m.errorClasses[i].Load()
	}
	return s
}
