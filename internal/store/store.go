package store

import (
	"context"

	"github.com/kannann1/mail-response-ai/internal/model"
)

// TaskFilter controls filtering, sorting, and pagination for task queries.
type TaskFilter struct {
	Status   *string // one of the model.TaskStatus* values, or nil (all)
	Priority *string // "High", "Medium", "Low", or nil (all)
	Query    *string // search text + email_subject
	SortBy   string  // "due_date", "priority", "created_at", "updated_at"
	SortDesc bool
	Limit    int
	Offset   int
}

// DraftFilter controls filtering for draft queries.
type DraftFilter struct {
	Status      *string // model.DraftStatus* value, or nil (all)
	NeedsReview *bool
	Limit       int
}

// Store defines the persistence interface for tasks, drafts, style
// samples, and notifications.
type Store interface {
	// === Tasks ===

	SaveTasks(ctx context.Context, tasks []model.Task) error
	GetTasks(ctx context.Context, opts TaskFilter) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	UpdateTaskStatus(ctx context.Context, id, status string) error
	DeleteTask(ctx context.Context, id string) error

	// === Drafts ===

	SaveDraft(ctx context.Context, draft model.Draft) (string, error)
	GetDrafts(ctx context.Context, opts DraftFilter) ([]model.Draft, error)
	MarkDraftSent(ctx context.Context, id string) error
	DeleteDraft(ctx context.Context, id string) error

	// === Style samples ===

	AddStyleSample(ctx context.Context, text string) error
	GetStyleSamples(ctx context.Context) ([]model.StyleSample, error)
	DeleteStyleSample(ctx context.Context, id string) error

	// === Notifications ===

	CreateNotification(ctx context.Context, n model.Notification) error
	GetUnreadNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	Close() error
}
