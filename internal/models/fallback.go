// ABOUTME: Fallback stage identifiers and the model response envelope
// ABOUTME: Every model-assisted recovery shares one JSON envelope contract
package models

// FallbackStage identifies which recovery situation invoked the model
type FallbackStage string

const (
	FallbackTimeParsing       FallbackStage = "time_parsing"
	FallbackContrastRecovery  FallbackStage = "contrast_time_recovery"
	FallbackParamSupplement   FallbackStage = "parameter_supplement"
	FallbackAPIErrorRecovery  FallbackStage = "api_error_recovery"
	FallbackResultValidation  FallbackStage = "result_validation"
	FallbackComplexProcessing FallbackStage = "complex_query_processing"
)

// IsValid checks whether the stage is one of the defined recovery situations
func (s FallbackStage) IsValid() bool {
	switch s {
	case FallbackTimeParsing, FallbackContrastRecovery, FallbackParamSupplement,
		FallbackAPIErrorRecovery, FallbackResultValidation, FallbackComplexProcessing:
		return true
	}
	return false
}

// FallbackAction is what the pipeline should do with a fallback result
type FallbackAction string

const (
	ActionContinue            FallbackAction = "continue"
	ActionRetry               FallbackAction = "retry"
	ActionRouteToGeneralQuery FallbackAction = "route_to_general_query"
)

// IsValid checks whether the action is one the pipeline knows how to take
func (a FallbackAction) IsValid() bool {
	switch a {
	case ActionContinue, ActionRetry, ActionRouteToGeneralQuery:
		return true
	}
	return false
}

// FallbackEnvelope is the JSON object every fallback prompt demands back
type FallbackEnvelope struct {
	Status     string         `json:"status"`
	Action     FallbackAction `json:"action"`
	ResultData map[string]any `json:"result_data,omitempty"`
	Reasoning  string         `json:"reasoning,omitempty"`
	Confidence float64        `json:"confidence"`
}

// Accepted reports whether the envelope clears the stage's threshold
func (e *FallbackEnvelope) Accepted(threshold float64) bool {
	return e.Status == "success" && e.Confidence >= threshold
}

// FallbackAttempt logs one fallback invocation for diagnostics
type FallbackAttempt struct {
	Stage      FallbackStage  `json:"stage"`
	Action     FallbackAction `json:"action,omitempty"`
	Confidence float64        `json:"confidence"`
	Accepted   bool           `json:"accepted"`
	Err        string         `json:"error,omitempty"`
	ElapsedMS  int64          `json:"elapsed_ms"`
}
