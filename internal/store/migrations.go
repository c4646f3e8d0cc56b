package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id            TEXT PRIMARY KEY,
	text          TEXT NOT NULL,
	email_subject TEXT NOT NULL DEFAULT '',
	email_from    TEXT NOT NULL DEFAULT '',
	due_date      TEXT NOT NULL DEFAULT '',
	priority      TEXT NOT NULL DEFAULT 'Medium',
	confidence    REAL NOT NULL DEFAULT 0,
	source        TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'Not Started',
	created_at    DATETIME NOT NULL,
	updated_at    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS drafts (
	id              TEXT PRIMARY KEY,
	email_subject   TEXT NOT NULL DEFAULT '',
	email_from      TEXT NOT NULL DEFAULT '',
	response_text   TEXT NOT NULL DEFAULT '',
	formatted_email TEXT NOT NULL DEFAULT '',
	confidence      REAL NOT NULL DEFAULT 0,
	needs_review    INTEGER NOT NULL DEFAULT 1,
	status          TEXT NOT NULL DEFAULT 'Draft',
	created_at      DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS style_samples (
	id       TEXT PRIMARY KEY,
	text     TEXT NOT NULL,
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS notifications (
	id            TEXT PRIMARY KEY,
	email_subject TEXT NOT NULL DEFAULT '',
	email_from    TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL DEFAULT '',
	message       TEXT NOT NULL,
	read          INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_priority ON tasks(priority);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks(updated_at);
CREATE INDEX IF NOT EXISTS idx_drafts_status ON drafts(status);
CREATE INDEX IF NOT EXISTS idx_notifications_read ON notifications(read);
CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_drafts_needs_review
	ON drafts(needs_review, status);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
