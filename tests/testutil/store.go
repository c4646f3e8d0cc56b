package testutil

import (
	"context"
	"testing"

	"github.com/kannann1/mail-response-ai/internal/model"
	"github.com/kannann1/mail-response-ai/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedTasks persists the given tasks, failing the test on error.
func SeedTasks(t *testing.T, s *store.SQLiteStore, tasks ...model.Task) {
	t.Helper()

	if err := s.SaveTasks(context.Background(), tasks); err != nil {
		t.Fatalf("seeding tasks: %v", err)
	}
}
