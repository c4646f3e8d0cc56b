// Package triage runs incoming messages through the analysis
// pipeline: normalization, priority scoring, action item extraction,
// and reply drafting, persisting the results.
package triage

import (
	"context"
	"fmt"

	"github.com/kannann1/mail-response-ai/internal/compose"
	"github.com/kannann1/mail-response-ai/internal/extract"
	"github.com/kannann1/mail-response-ai/internal/model"
	"github.com/kannann1/mail-response-ai/internal/normalize"
	"github.com/kannann1/mail-response-ai/internal/priority"
	"github.com/kannann1/mail-response-ai/internal/store"
)

// Analysis is the combined pipeline output for one message.
type Analysis struct {
	UID      uint32
	Email    model.EmailRecord
	Priority model.PriorityResult
	Actions  []model.ActionItem
}

// Service orchestrates the analysis pipeline over a store.
type Service struct {
	scorer    *priority.Scorer
	extractor *extract.Extractor
	composer  *compose.Composer
	store     store.Store
}

// New creates a triage service. st may be nil to analyze without
// persistence.
func New(
	scorer *priority.Scorer,
	extractor *extract.Extractor,
	composer *compose.Composer,
	st store.Store,
) *Service {
	return &Service{
		scorer:    scorer,
		extractor: extractor,
		composer:  composer,
		store:     st,
	}
}

// Analyze runs normalization, scoring, and extraction on one raw
// message. It never fails: parse errors surface as sentinel values in
// the email record.
func (s *Service) Analyze(
	ctx context.Context,
	raw model.RawMessage,
) Analysis {
	email := normalize.Normalize(raw)

	return Analysis{
		UID:      raw.UID,
		Email:    email,
		Priority: s.scorer.Score(email),
		Actions:  s.extractor.Extract(ctx, email),
	}
}

// Process analyzes a raw message and persists the results: extracted
// actions become tasks, and urgent or high priority messages raise a
// notification.
func (s *Service) Process(
	ctx context.Context,
	raw model.RawMessage,
) (Analysis, error) {
	analysis := s.Analyze(ctx, raw)

	if s.store == nil {
		return analysis, nil
	}

	tasks := make([]model.Task, 0, len(analysis.Actions))
	for _, item := range analysis.Actions {
		tasks = append(tasks, model.NewTaskFromAction(item, analysis.Email))
	}
	if err := s.store.SaveTasks(ctx, tasks); err != nil {
		return analysis, fmt.Errorf("saving tasks: %w", err)
	}

	if analysis.Priority.Category == model.CategoryUrgent ||
		analysis.Priority.Category == model.CategoryHigh {
		n := model.Notification{
			EmailSubject: analysis.Email.Subject,
			EmailFrom:    analysis.Email.FromAddress,
			Category:     analysis.Priority.Category,
			Message: fmt.Sprintf(
				"%s priority email from %s: %s",
				analysis.Priority.Category,
				analysis.Email.FromDisplay,
				analysis.Email.Subject,
			),
		}
		if err := s.store.CreateNotification(ctx, n); err != nil {
			return analysis, fmt.Errorf("creating notification: %w", err)
		}
	}

	return analysis, nil
}

// DraftReply composes a reply draft for the email and persists it.
// Returns the draft and its store ID (empty without a store).
func (s *Service) DraftReply(
	ctx context.Context,
	email model.EmailRecord,
	history []model.EmailRecord,
) (model.ResponseDraft, string, error) {
	draft := s.composer.Compose(ctx, email, history)

	if s.store == nil {
		return draft, "", nil
	}

	id, err := s.store.SaveDraft(ctx, model.NewDraft(draft, email))
	if err != nil {
		return draft, "", fmt.Errorf("saving draft: %w", err)
	}

	return draft, id, nil
}
