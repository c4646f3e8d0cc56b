package triage_test

import (
	"context"
	"strings"
	"testing"

	"github.com/kannann1/mail-response-ai/internal/compose"
	"github.com/kannann1/mail-response-ai/internal/extract"
	"github.com/kannann1/mail-response-ai/internal/model"
	"github.com/kannann1/mail-response-ai/internal/priority"
	"github.com/kannann1/mail-response-ai/internal/store"
	"github.com/kannann1/mail-response-ai/internal/triage"
	"github.com/kannann1/mail-response-ai/tests/testutil"
)

func rawMessage(headers []string, body string) model.RawMessage {
	var sb strings.Builder
	for _, h := range headers {
		sb.WriteString(h)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return model.RawMessage{UID: 42, Source: []byte(sb.String()), Unread: true}
}

func newTestService(t *testing.T) (*triage.Service, *store.SQLiteStore) {
	t.Helper()

	st := testutil.NewTestStore(t)
	contacts := model.ContactsConfig{VIP: []string{"boss@co.com"}}

	svc := triage.New(
		priority.NewScorer(contacts),
		extract.New(nil),
		compose.New(nil, model.UserProfile{Name: "Jane"}, contacts,
			model.ReviewConfig{AlwaysReview: true}),
		st,
	)
	return svc, st
}

func TestProcessPersistsTasksAndNotifies(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	raw := rawMessage([]string{
		"From: Boss <boss@co.com>",
		"To: jane@co.com",
		"Subject: URGENT: deadline today",
		"Message-Id: <m1@co.com>",
		"Content-Type: text/plain",
	}, "This is critical. Could you please send the report by Friday?")

	analysis, err := svc.Process(ctx, raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if analysis.UID != 42 {
		t.Errorf("UID = %d, want 42", analysis.UID)
	}
	if analysis.Email.FromAddress != "boss@co.com" {
		t.Errorf("FromAddress = %q", analysis.Email.FromAddress)
	}
	if analysis.Priority.Category != model.CategoryUrgent &&
		analysis.Priority.Category != model.CategoryHigh {
		t.Errorf("Category = %q, want urgent or high for a VIP urgent mail",
			analysis.Priority.Category)
	}
	if len(analysis.Actions) == 0 {
		t.Fatal("expected at least one extracted action")
	}

	tasks, err := st.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		t.Fatalf("GetTasks failed: %v", err)
	}
	if len(tasks) != len(analysis.Actions) {
		t.Errorf("persisted %d tasks, want %d", len(tasks), len(analysis.Actions))
	}
	for _, task := range tasks {
		if task.EmailSubject != "URGENT: deadline today" {
			t.Errorf("task EmailSubject = %q", task.EmailSubject)
		}
		if task.Status != model.TaskStatusNotStarted {
			t.Errorf("task Status = %q, want Not Started", task.Status)
		}
	}

	notifications, err := st.GetUnreadNotifications(ctx)
	if err != nil {
		t.Fatalf("GetUnreadNotifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	if notifications[0].EmailFrom != "boss@co.com" {
		t.Errorf("notification EmailFrom = %q", notifications[0].EmailFrom)
	}
}

func TestProcessLowPriorityNoNotification(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	raw := rawMessage([]string{
		"From: news@list.com",
		"Subject: Newsletter",
		"Content-Type: text/plain",
	}, "Here is our weekly roundup.")

	analysis, err := svc.Process(ctx, raw)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if analysis.Priority.Category != model.CategoryLow {
		t.Errorf("Category = %q, want Low", analysis.Priority.Category)
	}

	notifications, _ := st.GetUnreadNotifications(ctx)
	if len(notifications) != 0 {
		t.Errorf("got %d notifications, want none for low priority", len(notifications))
	}
}

func TestDraftReplyPersistsDraft(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	email := model.EmailRecord{
		Subject:     "Question",
		FromAddress: "bob@co.com",
		BodyText:    "Can we meet tomorrow?",
	}

	draft, id, err := svc.DraftReply(ctx, email, nil)
	if err != nil {
		t.Fatalf("DraftReply failed: %v", err)
	}
	if id == "" {
		t.Fatal("DraftReply should return a store ID")
	}

	// No generator is configured, so the draft explains that and is
	// flagged for review.
	if !draft.NeedsReview {
		t.Error("draft should need review without a generator")
	}

	drafts, err := st.GetDrafts(ctx, store.DraftFilter{})
	if err != nil {
		t.Fatalf("GetDrafts failed: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("got %d drafts, want 1", len(drafts))
	}
	if drafts[0].EmailSubject != "Question" {
		t.Errorf("draft EmailSubject = %q", drafts[0].EmailSubject)
	}
}

func TestAnalyzeWithoutStore(t *testing.T) {
	contacts := model.ContactsConfig{}
	svc := triage.New(
		priority.NewScorer(contacts),
		extract.New(nil),
		compose.New(nil, model.UserProfile{}, contacts, model.ReviewConfig{}),
		nil,
	)

	raw := rawMessage([]string{
		"From: a@x.com",
		"Subject: hello",
		"Content-Type: text/plain",
	}, "just saying hi")

	if _, err := svc.Process(context.Background(), raw); err != nil {
		t.Fatalf("Process without a store should not fail: %v", err)
	}
}
