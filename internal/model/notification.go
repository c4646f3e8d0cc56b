package model

import "time"

// Notification is an alert surfaced to the user about a newly triaged
// high-priority message.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// EmailSubject and EmailFrom identify the triggering message.
	EmailSubject string `json:"email_subject"`
	EmailFrom    string `json:"email_from"`

	// Category is the priority category that triggered the alert.
	Category string `json:"category"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"created_at"`
}
