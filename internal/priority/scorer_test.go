package priority

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/kannann1/mail-response-ai/internal/model"
)

var fixedNow = time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)

func newTestScorer(contacts model.ContactsConfig) *Scorer {
	s := NewScorer(contacts)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestScoreVIPUrgentEmail(t *testing.T) {
	s := newTestScorer(model.ContactsConfig{VIP: []string{"boss@co.com"}})

	email := model.EmailRecord{
		Subject:     "URGENT: deadline approaching",
		FromAddress: "boss@co.com",
		BodyText:    "Could you review this? It is critical and needs immediate attention.",
		ReceivedAt:  fixedNow.Add(-30 * time.Minute),
		ThreadKey:   "<thread@x>",
	}

	result := s.Score(email)

	// VIP 30 + addressed 15 + urgency cap 20 + recency 15 + thread 10 +
	// question 10 = 100.
	if result.Score != 100 {
		t.Errorf("Score = %d, want 100; explanations: %v",
			result.Score, result.Explanations)
	}
	if result.Category != model.CategoryUrgent {
		t.Errorf("Category = %q, want %q", result.Category, model.CategoryUrgent)
	}

	wantExplanations := []string{
		"VIP sender (+30)",
		"Directly addressed (+15)",
		"Urgency keywords (+20)",
		"Recent email (+15)",
		"Active thread (+10)",
		"Contains questions (+10)",
	}
	if len(result.Explanations) != len(wantExplanations) {
		t.Fatalf("Explanations = %v, want %v", result.Explanations, wantExplanations)
	}
	for i, want := range wantExplanations {
		if result.Explanations[i] != want {
			t.Errorf("Explanations[%d] = %q, want %q", i, result.Explanations[i], want)
		}
	}
}

func TestScorePlainEmail(t *testing.T) {
	s := newTestScorer(model.ContactsConfig{})

	email := model.EmailRecord{
		Subject:     "Newsletter",
		FromAddress: "news@list.com",
		BodyText:    "Here is our weekly roundup.",
		ReceivedAt:  fixedNow.Add(-48 * time.Hour),
	}

	result := s.Score(email)

	if result.Score != 15 {
		t.Errorf("Score = %d, want 15 (direct addressing only)", result.Score)
	}
	if result.Category != model.CategoryLow {
		t.Errorf("Category = %q, want %q", result.Category, model.CategoryLow)
	}
}

func TestScoreImportantContactNotVIP(t *testing.T) {
	s := newTestScorer(model.ContactsConfig{
		VIP:       []string{"boss@co.com"},
		Important: []string{"peer@co.com"},
	})

	result := s.Score(model.EmailRecord{
		FromAddress: "peer@co.com",
		BodyText:    "plain text",
		ReceivedAt:  fixedNow.Add(-48 * time.Hour),
	})

	// Important 20 + addressed 15.
	if result.Score != 35 {
		t.Errorf("Score = %d, want 35", result.Score)
	}
}

func TestScoreVIPBeatsImportant(t *testing.T) {
	s := newTestScorer(model.ContactsConfig{
		VIP:       []string{"both@co.com"},
		Important: []string{"both@co.com"},
	})

	result := s.Score(model.EmailRecord{
		FromAddress: "both@co.com",
		BodyText:    "plain",
		ReceivedAt:  fixedNow.Add(-48 * time.Hour),
	})

	// Only the VIP rule fires for a sender on both lists.
	if result.Score != 45 {
		t.Errorf("Score = %d, want 45 (VIP 30 + addressed 15)", result.Score)
	}
}

func TestUrgencyScoreCap(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"no keywords", "hello there", 0},
		{"one keyword", "this is urgent", 5},
		{"three keywords", "urgent deadline, critical", 15},
		{"capped at 20", "urgent asap immediately deadline important critical", 20},
		{"duplicates count once", "urgent urgent urgent", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := urgencyScore(tt.text, ""); got != tt.want {
				t.Errorf("urgencyScore(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestRecencyScoreBands(t *testing.T) {
	s := newTestScorer(model.ContactsConfig{})

	tests := []struct {
		age  time.Duration
		want int
	}{
		{30 * time.Minute, 15},
		{2 * time.Hour, 10},
		{12 * time.Hour, 5},
		{36 * time.Hour, 0},
	}

	for _, tt := range tests {
		email := model.EmailRecord{ReceivedAt: fixedNow.Add(-tt.age)}
		if got := s.recencyScore(email); got != tt.want {
			t.Errorf("recencyScore(age %v) = %d, want %d", tt.age, got, tt.want)
		}
	}
}

func TestRecencyScoreFallsBackToRawHeader(t *testing.T) {
	s := newTestScorer(model.ContactsConfig{})

	email := model.EmailRecord{
		ReceivedRaw: fixedNow.Add(-30 * time.Minute).Format("Mon, 02 Jan 2006 15:04:05 -0700"),
	}
	if got := s.recencyScore(email); got != 15 {
		t.Errorf("recencyScore with raw header = %d, want 15", got)
	}

	// Single-digit days are commonly written non-padded.
	nonPadded := model.EmailRecord{
		ReceivedRaw: "Mon, 6 Jan 2025 11:30:00 +0000",
	}
	if got := s.recencyScore(nonPadded); got != 15 {
		t.Errorf("recencyScore with non-padded day = %d, want 15", got)
	}

	if got := s.recencyScore(model.EmailRecord{ReceivedRaw: "garbage"}); got != 0 {
		t.Errorf("recencyScore with unparseable header = %d, want 0", got)
	}
}

func TestContainsQuestion(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{"Is this ready?", true},
		{"Could you send the file", true},
		{"Please Let Me Know about it", true},
		{"All done, thanks.", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := containsQuestion(tt.body); got != tt.want {
			t.Errorf("containsQuestion(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, model.CategoryUrgent},
		{80, model.CategoryUrgent},
		{79, model.CategoryHigh},
		{60, model.CategoryHigh},
		{59, model.CategoryMedium},
		{40, model.CategoryMedium},
		{39, model.CategoryLow},
		{0, model.CategoryLow},
	}

	for _, tt := range tests {
		if got := Categorize(tt.score); got != tt.want {
			t.Errorf("Categorize(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoreBoundsAndCategoryConsistency(t *testing.T) {
	contacts := model.ContactsConfig{
		VIP:       []string{"vip@co.com"},
		Important: []string{"imp@co.com"},
	}
	s := newTestScorer(contacts)

	rapid.Check(t, func(rt *rapid.T) {
		email := model.EmailRecord{
			Subject: rapid.StringMatching(`[ -~]{0,60}`).Draw(rt, "subject"),
			FromAddress: rapid.SampledFrom([]string{
				"vip@co.com", "imp@co.com", "other@x.com", "",
			}).Draw(rt, "from"),
			BodyText:  rapid.StringMatching(`[ -~]{0,200}`).Draw(rt, "body"),
			ThreadKey: rapid.SampledFrom([]string{"", "<t@x>"}).Draw(rt, "thread"),
		}
		if rapid.Bool().Draw(rt, "recent") {
			age := rapid.Int64Range(0, 48*3600).Draw(rt, "age_sec")
			email.ReceivedAt = fixedNow.Add(-time.Duration(age) * time.Second)
		}

		result := s.Score(email)

		if result.Score < 0 || result.Score > 100 {
			rt.Fatalf("Score = %d, want within [0, 100]", result.Score)
		}
		if result.Category != Categorize(result.Score) {
			rt.Fatalf("Category = %q inconsistent with score %d",
				result.Category, result.Score)
		}
		if len(result.Explanations) == 0 {
			rt.Fatal("Explanations should never be empty")
		}
		for _, e := range result.Explanations {
			if strings.TrimSpace(e) == "" {
				rt.Fatal("empty explanation entry")
			}
		}
	})
}
