// ABOUTME: Recovery state machine stages for structured-path error handling
// ABOUTME: Stages escalate monotonically; the general-query fallback is terminal
package models

// RecoveryStage is a state in the structured-path error recovery ladder
type RecoveryStage int

const (
	// StageToolSelectionOK - Normal operation, no error observed yet
	StageToolSelectionOK RecoveryStage = iota

	// StageParamRetry - Parameter extraction failed, retrying with model help
	StageParamRetry

	// StageToolReselection - Retries exhausted, reconsidering the report kind
	StageToolReselection

	// StageAPIErrorRecovery - The reporting API call itself failed
	StageAPIErrorRecovery

	// StageGeneralFallback - Terminal stage, hand the question to general query
	StageGeneralFallback
)

var recoveryStageNames = map[RecoveryStage]string{
	StageToolSelectionOK:  "tool_selection_ok",
	StageParamRetry:       "param_extraction_retry",
	StageToolReselection:  "tool_reselection",
	StageAPIErrorRecovery: "api_error_recovery",
	StageGeneralFallback:  "general_query_fallback",
}

// String returns the stage's wire name
func (s RecoveryStage) String() string {
	if n, ok := recoveryStageNames[s]; ok {
		return n
	}
	return "unknown"
}

// Next returns the stage after one more failure. Escalation never skips
// backwards and stops at the terminal general-query stage.
func (s RecoveryStage) Next() RecoveryStage {
	if s >= StageGeneralFallback {
		return StageGeneralFallback
	}
	return s + 1
}

// Terminal reports whether no further escalation is possible
func (s RecoveryStage) Terminal() bool {
	return s == StageGeneralFallback
}

// ErrorClass names the kind of failure that drove a recovery transition
type ErrorClass string

const (
	ClassExtractionFailure ErrorClass = "extraction_failure"
	ClassAmbiguity         ErrorClass = "ambiguity"
	ClassLowConfidence     ErrorClass = "low_confidence"
	ClassAPIError          ErrorClass = "api_error"
	ClassValidationFailure ErrorClass = "validation_failure"
)

// ErrorClasses lists every class in a stable reporting order
var ErrorClasses = []ErrorClass{
	ClassExtractionFailure,
	ClassAmbiguity,
	ClassLowConfidence,
	ClassAPIError,
	ClassValidationFailure,
}

// IsValid reports whether c is a known error class
func (c ErrorClass) IsValid() bool {
	switch c {
	case ClassExtractionFailure, ClassAmbiguity, ClassLowConfidence,
		ClassAPIError, ClassValidationFailure:
		return true
	}
	return false
}
