// ABOUTME: Routing decision types for the primary and secondary routers
// ABOUTME: Defines routing targets, report kinds, and the per-stage decision trace
package models

// RoutingTarget represents where a question is sent after primary routing
type RoutingTarget string

const (
	// TargetStructuredAPI - Question maps onto the structured reporting API
	TargetStructuredAPI RoutingTarget = "structured_api"

	// TargetGeneralQuery - Question goes to the general query-synthesis backend
	TargetGeneralQuery RoutingTarget = "general_query"

	// TargetClarification - No layer produced a confident decision; ask the user
	TargetClarification RoutingTarget = "clarification_needed"
)

// IsValid checks whether the target is one of the defined routing outcomes
func (t RoutingTarget) IsValid() bool {
	switch t {
	case TargetStructuredAPI, TargetGeneralQuery, TargetClarification:
		return true
	}
	return false
}

// RoutingStage identifies which router layer produced a decision
type RoutingStage string

const (
	StageIntentHint  RoutingStage = "intent_hint"
	StageTriggerTerm RoutingStage = "trigger_term"
	StageKeyword     RoutingStage = "keyword"
	StageSimilarity  RoutingStage = "similarity"
)

// ReportKind represents the secondary routing outcome for structured questions
type ReportKind string

const (
	// ReportSummary - Single-period summary report
	ReportSummary ReportKind = "summary"

	// ReportComparison - Two-period comparison report
	ReportComparison ReportKind = "comparison"
)

// IsValid checks whether the kind is a defined report kind
func (k ReportKind) IsValid() bool {
	return k == ReportSummary || k == ReportComparison
}

// StageTrace records one router layer's verdict for debugging
type StageTrace struct {
	Stage      RoutingStage  `json:"stage"`
	Target     RoutingTarget `json:"target,omitempty"`
	Confidence float64       `json:"confidence"`
	Detail     string        `json:"detail,omitempty"`
}

// RoutingDecision is the primary router's final answer plus its trace
type RoutingDecision struct {
	Target     RoutingTarget `json:"target"`
	Confidence float64       `json:"confidence"`
	Stage      RoutingStage  `json:"stage"`
	Trace      []StageTrace  `json:"trace,omitempty"`
}
