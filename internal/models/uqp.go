// ABOUTME: Unified query protocol request and response envelopes
// ABOUTME: Every /query response uses this shape regardless of which path ran
package models

// QueryRequest is the inbound protocol envelope
type QueryRequest struct {
	Question   string        `json:"question"`
	IntentHint string        `json:"intent_hint,omitempty"`
	History    []HistoryTurn `json:"history,omitempty"`
}

// HistoryTurn is one prior exchange carried for context
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseStatus is the top-level outcome of a query
type ResponseStatus string

const (
	StatusSuccess       ResponseStatus = "success"
	StatusError         ResponseStatus = "error"
	StatusClarification ResponseStatus = "clarification_needed"
)

// PayloadFormat describes how the payload value should be rendered
type PayloadFormat string

const (
	FormatTable PayloadFormat = "table"
	FormatText  PayloadFormat = "text"
)

// Payload carries the answer body
type Payload struct {
	Format PayloadFormat `json:"format"`
	Value  any           `json:"value"`
}

// DebugInfo exposes routing internals when the caller asks for them
type DebugInfo struct {
	RequestID     string            `json:"request_id"`
	Routing       *RoutingDecision  `json:"routing,omitempty"`
	ReportKind    ReportKind        `json:"report_kind,omitempty"`
	RecoveryStage string            `json:"recovery_stage,omitempty"`
	ErrorClasses  []ErrorClass      `json:"error_classes,omitempty"`
	Fallbacks     []FallbackAttempt `json:"fallbacks,omitempty"`
	ElapsedMS     int64             `json:"elapsed_ms"`
}

// QueryResponse is the outbound protocol envelope
type QueryResponse struct {
	Status       ResponseStatus `json:"status"`
	ResponseType string         `json:"response_type"`
	Payload      Payload        `json:"payload"`
	DebugInfo    *DebugInfo     `json:"debug_info,omitempty"`
}

// TextResponse builds a plain-text message response
func TextResponse(status ResponseStatus, msg string) QueryResponse {
	return QueryResponse{
		Status:       status,
		ResponseType: "message",
		Payload:      Payload{Format: FormatText, Value: msg},
	}
}

// DataResponse builds a tabular data response
func DataResponse(value any) QueryResponse {
	return QueryResponse{
		Status:       StatusSuccess,
		ResponseType: "data",
		Payload:      Payload{Format: FormatTable, Value: value},
	}
}
