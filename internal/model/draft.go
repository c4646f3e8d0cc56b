package model

// ResponseDraft is a generated reply for one email. Immutable once
// returned by the composer; persisting it is the store's concern.
type ResponseDraft struct {
	// ResponseText is the trimmed model output.
	ResponseText string `json:"response_text"`

	// FormattedEmail embeds ResponseText in a full reply envelope
	// (From/To/Subject/Date/body/signature).
	FormattedEmail string `json:"formatted_email"`

	// ConfidenceScore is a heuristic reliability estimate. Generated
	// drafts are floored at 0.3; a draft produced without a generation
	// service carries 0.0.
	ConfidenceScore float64 `json:"confidence_score"`

	// NeedsReview indicates a human must approve the draft before it
	// is sent.
	NeedsReview bool `json:"needs_review"`
}
