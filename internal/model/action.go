package model

// Action item priority levels.
const (
	ActionPriorityHigh   = "High"
	ActionPriorityMedium = "Medium"
	ActionPriorityLow    = "Low"
)

// Action item sources.
const (
	ActionSourceSubject = "subject"
	ActionSourceBody    = "body"
	ActionSourceLLM     = "llm"
)

// ActionItem is a concrete task inferred from message text. The
// extractor creates these transiently; one becomes a persisted Task
// only when the store is explicitly asked to save it.
type ActionItem struct {
	// Text is the extracted task phrase.
	Text string `json:"text"`

	// DueDate is an ISO date string, the original free text when
	// resolution failed, or empty when no date was found.
	DueDate string `json:"due_date,omitempty"`

	// Confidence is a heuristic reliability estimate in [0.0, 1.0].
	Confidence float64 `json:"confidence"`

	// Priority is one of the ActionPriority* constants.
	Priority string `json:"priority"`

	// Source is one of the ActionSource* constants.
	Source string `json:"source"`
}
