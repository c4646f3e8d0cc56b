package model

import "time"

// Task statuses.
const (
	TaskStatusNotStarted = "Not Started"
	TaskStatusInProgress = "In Progress"
	TaskStatusComplete   = "Complete"
)

// Task is an action item the user chose to keep. Unlike ActionItem it
// has identity and a lifecycle of its own in the store.
type Task struct {
	// ID is the internal unique identifier for this task.
	ID string `json:"id" db:"id"`

	// Text is the task phrase.
	Text string `json:"text" db:"text"`

	// EmailSubject and EmailFrom identify the originating message.
	EmailSubject string `json:"email_subject" db:"email_subject"`
	EmailFrom    string `json:"email_from" db:"email_from"`

	// DueDate is an ISO date string or free text, empty when unknown.
	DueDate string `json:"due_date" db:"due_date"`

	// Priority is one of the ActionPriority* constants.
	Priority string `json:"priority" db:"priority"`

	// Confidence is carried over from the extracted action item.
	Confidence float64 `json:"confidence" db:"confidence"`

	// Source records where the action item came from (subject/body/llm).
	Source string `json:"source" db:"source"`

	// Status is one of the TaskStatus* constants.
	Status string `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewTaskFromAction promotes an extracted action item into a Task
// bound to its originating email.
func NewTaskFromAction(item ActionItem, email EmailRecord) Task {
	now := time.Now()
	return Task{
		Text:         item.Text,
		EmailSubject: email.Subject,
		EmailFrom:    email.FromAddress,
		DueDate:      item.DueDate,
		Priority:     item.Priority,
		Confidence:   item.Confidence,
		Source:       item.Source,
		Status:       TaskStatusNotStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Draft statuses.
const (
	DraftStatusPending = "Draft"
	DraftStatusSent    = "Sent"
)

// Draft is a persisted response draft awaiting review or sending.
type Draft struct {
	ID           string    `json:"id" db:"id"`
	EmailSubject string    `json:"email_subject" db:"email_subject"`
	EmailFrom    string    `json:"email_from" db:"email_from"`
	ResponseText string    `json:"response_text" db:"response_text"`
	Formatted    string    `json:"formatted_email" db:"formatted_email"`
	Confidence   float64   `json:"confidence" db:"confidence"`
	NeedsReview  bool      `json:"needs_review" db:"needs_review"`
	Status       string    `json:"status" db:"status"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// NewDraft wraps a composed response for persistence.
func NewDraft(d ResponseDraft, email EmailRecord) Draft {
	return Draft{
		EmailSubject: email.Subject,
		EmailFrom:    email.FromAddress,
		ResponseText: d.ResponseText,
		Formatted:    d.FormattedEmail,
		Confidence:   d.ConfidenceScore,
		NeedsReview:  d.NeedsReview,
		Status:       DraftStatusPending,
		CreatedAt:    time.Now(),
	}
}

// StyleSample is a snippet of the user's own writing used to steer the
// communication style of generated replies.
type StyleSample struct {
	ID      string    `json:"id" db:"id"`
	Text    string    `json:"text" db:"text"`
	AddedAt time.Time `json:"added_at" db:"added_at"`
}
