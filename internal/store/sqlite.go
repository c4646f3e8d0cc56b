package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/kannann1/mail-response-ai/internal/model"
)

// SQLiteStore implements the Store interface using a local SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath,
// enables WAL mode, and runs any pending schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// SaveTasks inserts or replaces a batch of tasks. Tasks without an ID
// get a new UUID.
func (s *SQLiteStore) SaveTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT OR REPLACE INTO tasks (
			id, text, email_subject, email_from,
			due_date, priority, confidence, source,
			status, created_at, updated_at
		) VALUES (
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?
		)`

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing upsert statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}

		_, err = stmt.ExecContext(ctx,
			t.ID, t.Text, t.EmailSubject, t.EmailFrom,
			t.DueDate, t.Priority, t.Confidence, t.Source,
			t.Status, t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("upserting task %s: %w", t.ID, err)
		}
	}

	return tx.Commit()
}

// GetTasks retrieves tasks matching the provided filter options.
func (s *SQLiteStore) GetTasks(
	ctx context.Context,
	opts TaskFilter,
) ([]model.Task, error) {
	var conditions []string
	var args []interface{}

	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Priority != nil {
		conditions = append(conditions, "priority = ?")
		args = append(args, *opts.Priority)
	}
	if opts.Query != nil && *opts.Query != "" {
		conditions = append(conditions, "(text LIKE ? OR email_subject LIKE ?)")
		q := "%" + *opts.Query + "%"
		args = append(args, q, q)
	}

	query := "SELECT * FROM tasks"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	sortBy := "updated_at"
	if opts.SortBy != "" {
		allowedSorts := map[string]bool{
			"due_date":   true,
			"priority":   true,
			"created_at": true,
			"updated_at": true,
		}
		if allowedSorts[opts.SortBy] {
			sortBy = opts.SortBy
		}
	}

	direction := "ASC"
	if opts.SortDesc {
		direction = "DESC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, direction)

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", opts.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var task model.Task
		if err := rows.StructScan(&task); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// GetTaskByID retrieves a single task by its ID.
func (s *SQLiteStore) GetTaskByID(
	ctx context.Context,
	id string,
) (*model.Task, error) {
	var task model.Task
	err := s.db.GetContext(ctx, &task, "SELECT * FROM tasks WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("getting task %s: %w", id, err)
	}
	return &task, nil
}

// UpdateTaskStatus sets a task's status and bumps its update time.
func (s *SQLiteStore) UpdateTaskStatus(
	ctx context.Context,
	id, status string,
) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating task %s status: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("task %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// DeleteTask removes a task by ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting task %s: %w", id, err)
	}
	return nil
}

// SaveDraft inserts a draft and returns its ID. Drafts without an ID
// get a new UUID.
func (s *SQLiteStore) SaveDraft(
	ctx context.Context,
	draft model.Draft,
) (string, error) {
	if draft.ID == "" {
		draft.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO drafts (
			id, email_subject, email_from, response_text,
			formatted_email, confidence, needs_review, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.ID, draft.EmailSubject, draft.EmailFrom, draft.ResponseText,
		draft.Formatted, draft.Confidence, boolToInt(draft.NeedsReview),
		draft.Status, draft.CreatedAt.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("saving draft: %w", err)
	}

	return draft.ID, nil
}

// GetDrafts retrieves drafts matching the provided filter options,
// newest first.
func (s *SQLiteStore) GetDrafts(
	ctx context.Context,
	opts DraftFilter,
) ([]model.Draft, error) {
	var conditions []string
	var args []interface{}

	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.NeedsReview != nil {
		conditions = append(conditions, "needs_review = ?")
		args = append(args, boolToInt(*opts.NeedsReview))
	}

	query := "SELECT * FROM drafts"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", opts.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying drafts: %w", err)
	}
	defer rows.Close()

	var drafts []model.Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}

	return drafts, rows.Err()
}

// MarkDraftSent marks a draft as sent.
func (s *SQLiteStore) MarkDraftSent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE drafts SET status = ? WHERE id = ?",
		model.DraftStatusSent, id,
	)
	if err != nil {
		return fmt.Errorf("marking draft %s sent: %w", id, err)
	}
	return nil
}

// DeleteDraft removes a draft by ID.
func (s *SQLiteStore) DeleteDraft(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM drafts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting draft %s: %w", id, err)
	}
	return nil
}

// AddStyleSample stores a snippet of the user's writing.
func (s *SQLiteStore) AddStyleSample(ctx context.Context, text string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO style_samples (id, text, added_at) VALUES (?, ?, ?)",
		uuid.New().String(), text, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("adding style sample: %w", err)
	}
	return nil
}

// GetStyleSamples retrieves all style samples, oldest first.
func (s *SQLiteStore) GetStyleSamples(
	ctx context.Context,
) ([]model.StyleSample, error) {
	var samples []model.StyleSample
	err := s.db.SelectContext(ctx, &samples,
		"SELECT * FROM style_samples ORDER BY added_at",
	)
	if err != nil {
		return nil, fmt.Errorf("querying style samples: %w", err)
	}
	return samples, nil
}

// DeleteStyleSample removes a style sample by ID.
func (s *SQLiteStore) DeleteStyleSample(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM style_samples WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting style sample %s: %w", id, err)
	}
	return nil
}

// CreateNotification inserts a new notification record.
func (s *SQLiteStore) CreateNotification(
	ctx context.Context,
	n model.Notification,
) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, email_subject, email_from, category, message, read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.EmailSubject, n.EmailFrom, n.Category, n.Message,
		boolToInt(n.Read), n.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}

	return nil
}

// GetUnreadNotifications retrieves all notifications that have not been read,
// ordered by creation time descending.
func (s *SQLiteStore) GetUnreadNotifications(
	ctx context.Context,
) ([]model.Notification, error) {
	rows, err := s.db.QueryxContext(ctx,
		"SELECT * FROM notifications WHERE read = 0 ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying unread notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkNotificationRead marks a single notification as read.
func (s *SQLiteStore) MarkNotificationRead(
	ctx context.Context,
	id string,
) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET read = 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("marking notification %s as read: %w", id, err)
	}
	return nil
}

// scanDraft scans a draft row from a sqlx.Rows result set.
func scanDraft(rows *sqlx.Rows) (model.Draft, error) {
	var (
		draft       model.Draft
		needsReview int
		createdAt   time.Time
	)

	err := rows.Scan(
		&draft.ID, &draft.EmailSubject, &draft.EmailFrom,
		&draft.ResponseText, &draft.Formatted, &draft.Confidence,
		&needsReview, &draft.Status, &createdAt,
	)
	if err != nil {
		return model.Draft{}, fmt.Errorf("scanning draft row: %w", err)
	}

	draft.NeedsReview = needsReview != 0
	draft.CreatedAt = createdAt

	return draft, nil
}

// scanNotification scans a notification row from a sqlx.Rows result set.
func scanNotification(rows *sqlx.Rows) (model.Notification, error) {
	var (
		n         model.Notification
		readInt   int
		createdAt time.Time
	)

	err := rows.Scan(
		&n.ID, &n.EmailSubject, &n.EmailFrom, &n.Category, &n.Message,
		&readInt, &createdAt,
	)
	if err != nil {
		return model.Notification{}, fmt.Errorf("scanning notification row: %w", err)
	}

	n.Read = readInt != 0
	n.CreatedAt = createdAt

	return n, nil
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
