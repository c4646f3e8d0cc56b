package compose

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/kannann1/mail-response-ai/internal/ai"
	"github.com/kannann1/mail-response-ai/internal/model"
)

var fixedNow = time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)

type stubGenerator struct {
	response string
	err      error
	prompt   string
	system   string
}

func (s *stubGenerator) Generate(
	_ context.Context, prompt string, opts ai.GenerateOptions,
) (string, error) {
	s.prompt = prompt
	s.system = opts.SystemPrompt
	return s.response, s.err
}

func (s *stubGenerator) ListModels(context.Context) ([]string, error) {
	return nil, nil
}

func (s *stubGenerator) Ping(context.Context) error { return nil }

var testUser = model.UserProfile{
	Name:               "Jane Doe",
	Role:               "Engineering Manager",
	Email:              "jane@co.com",
	CommunicationStyle: "professional",
}

// longReply has enough words to avoid the length penalty.
const longReply = "Thanks for the update. I reviewed the numbers this morning and " +
	"everything looks on track for the release. Let us sync on Thursday to close " +
	"out the remaining items and confirm the rollout plan together."

func newTestComposer(gen ai.Generator, contacts model.ContactsConfig, alwaysReview bool) *Composer {
	c := New(gen, testUser, contacts, model.ReviewConfig{AlwaysReview: alwaysReview})
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestComposeWithoutGenerator(t *testing.T) {
	c := newTestComposer(nil, model.ContactsConfig{}, false)

	draft := c.Compose(context.Background(), model.EmailRecord{Subject: "Hi"}, nil)

	if !strings.Contains(draft.ResponseText, "AI service not configured") {
		t.Errorf("ResponseText = %q, want the unconfigured notice", draft.ResponseText)
	}
	if draft.ConfidenceScore != 0.0 {
		t.Errorf("ConfidenceScore = %v, want 0.0", draft.ConfidenceScore)
	}
	if !draft.NeedsReview {
		t.Error("NeedsReview should be true without a generator")
	}
}

func TestComposeGenerationError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("connection refused")}
	c := newTestComposer(gen, model.ContactsConfig{}, false)

	draft := c.Compose(context.Background(), model.EmailRecord{Subject: "Hi"}, nil)

	if !strings.Contains(draft.ResponseText, "Error generating response") {
		t.Errorf("ResponseText = %q, want the failure notice", draft.ResponseText)
	}
	if draft.ConfidenceScore != 0.0 || !draft.NeedsReview {
		t.Errorf("draft = %+v, want zero confidence and review", draft)
	}
}

func TestComposeSuccess(t *testing.T) {
	gen := &stubGenerator{response: "  " + longReply + "\n"}
	c := newTestComposer(gen, model.ContactsConfig{}, false)

	email := model.EmailRecord{
		Subject:     "Release status",
		FromDisplay: "Bob",
		FromAddress: "bob@co.com",
		BodyText:    "How is the release tracking?\nAnything blocking?",
	}

	draft := c.Compose(context.Background(), email, nil)

	if draft.ResponseText != longReply {
		t.Errorf("ResponseText should be trimmed: %q", draft.ResponseText)
	}
	if draft.ConfidenceScore != 0.85 {
		t.Errorf("ConfidenceScore = %v, want base 0.85", draft.ConfidenceScore)
	}
	if draft.NeedsReview {
		t.Error("NeedsReview should be false for a clean reply")
	}

	for _, want := range []string{
		"From: jane@co.com",
		"To: Bob <bob@co.com>",
		"Subject: Re: Release status",
		"Date: Mon, 06 Jan 2025 09:30:00",
		longReply,
		"Best regards,\nJane Doe\nEngineering Manager",
	} {
		if !strings.Contains(draft.FormattedEmail, want) {
			t.Errorf("FormattedEmail missing %q:\n%s", want, draft.FormattedEmail)
		}
	}

	// The body is folded to one line inside the prompt.
	if !strings.Contains(gen.prompt, "How is the release tracking? Anything blocking?") {
		t.Errorf("prompt should contain the one-lined body:\n%s", gen.prompt)
	}
	if !strings.Contains(gen.system, "Jane Doe") ||
		!strings.Contains(gen.system, "Engineering Manager") {
		t.Errorf("system prompt should carry the user profile:\n%s", gen.system)
	}
}

func TestComposeStyleSamplesInSystemPrompt(t *testing.T) {
	gen := &stubGenerator{response: longReply}
	c := newTestComposer(gen, model.ContactsConfig{}, false)
	c.SetStyleSamples([]string{"Cheers, talk soon!"})

	c.Compose(context.Background(), model.EmailRecord{Subject: "Hi"}, nil)

	if !strings.Contains(gen.system, "Cheers, talk soon!") {
		t.Errorf("system prompt should include style samples:\n%s", gen.system)
	}
}

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"clean long reply", longReply, 0.85},
		{"uncertainty phrase", longReply + " However, I'm not sure about the date.", 0.70},
		{"short reply", "Sounds good, thanks!", 0.75},
		{"short and uncertain", "I don't know.", 0.60},
		{"floored", "I'm not sure. I don't know. This is unclear. Needs input. Cannot determine.", 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreConfidence(tt.text)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("scoreConfidence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScoreConfidenceBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`[ -~]{0,600}`).Draw(rt, "text")
		got := scoreConfidence(text)
		if got < 0.3-1e-9 || got > 0.85+1e-9 {
			rt.Fatalf("scoreConfidence(%q) = %v, want within [0.3, 0.85]", text, got)
		}
	})
}

func TestNeedsReviewConditions(t *testing.T) {
	vipContacts := model.ContactsConfig{VIP: []string{"boss@co.com"}}

	tests := []struct {
		name         string
		contacts     model.ContactsConfig
		alwaysReview bool
		reply        string
		email        model.EmailRecord
		want         bool
	}{
		{
			name:  "clean reply no review",
			reply: longReply,
			email: model.EmailRecord{Subject: "status", FromAddress: "bob@co.com"},
			want:  false,
		},
		{
			name:     "vip sender",
			contacts: vipContacts,
			reply:    longReply,
			email:    model.EmailRecord{Subject: "status", FromAddress: "boss@co.com"},
			want:     true,
		},
		{
			name:  "high stakes keyword",
			reply: longReply,
			email: model.EmailRecord{Subject: "Contract renewal", FromAddress: "bob@co.com"},
			want:  true,
		},
		{
			name:  "needs input marker",
			reply: longReply + " [NEEDS INPUT: which quarter?]",
			email: model.EmailRecord{Subject: "status", FromAddress: "bob@co.com"},
			want:  true,
		},
		{
			name:  "low confidence",
			reply: "I don't know.",
			email: model.EmailRecord{Subject: "status", FromAddress: "bob@co.com"},
			want:  true,
		},
		{
			name:         "always review policy",
			alwaysReview: true,
			reply:        longReply,
			email:        model.EmailRecord{Subject: "status", FromAddress: "bob@co.com"},
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestComposer(nil, tt.contacts, tt.alwaysReview)
			if got := c.needsReview(tt.reply, tt.email); got != tt.want {
				t.Errorf("needsReview = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSenderField(t *testing.T) {
	tests := []struct {
		email model.EmailRecord
		want  string
	}{
		{model.EmailRecord{FromDisplay: "Bob", FromAddress: "bob@x.com"}, "Bob <bob@x.com>"},
		{model.EmailRecord{FromAddress: "bob@x.com"}, "bob@x.com"},
		{model.EmailRecord{FromDisplay: "Bob"}, "Bob"},
	}

	for _, tt := range tests {
		if got := senderField(tt.email); got != tt.want {
			t.Errorf("senderField(%+v) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
