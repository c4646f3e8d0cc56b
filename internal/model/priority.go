package model

// Priority categories, monotonic in score via fixed thresholds.
const (
	CategoryUrgent = "Urgent"
	CategoryHigh   = "High"
	CategoryMedium = "Medium"
	CategoryLow    = "Low"
)

// PriorityResult is the outcome of scoring one email. It is derived
// data, recomputed per viewing rather than stored on its own.
type PriorityResult struct {
	// Score is the composite urgency score, clamped to 0-100.
	Score int `json:"score"`

	// Category is one of the Category* constants.
	Category string `json:"category"`

	// Explanations lists the rules that fired, in evaluation order,
	// each carrying its point contribution as display text.
	Explanations []string `json:"explanations"`
}
