// Package priority scores emails for urgency. Scoring is additive
// over a fixed rule set, pure, and fail-soft: an internal error
// degrades to a medium default instead of surfacing.
package priority

import (
	"fmt"
	"strings"
	"time"

	"github.com/kannann1/mail-response-ai/internal/model"
	"github.com/kannann1/mail-response-ai/internal/normalize"
)

// Category thresholds on the composite score.
const (
	urgentThreshold = 80
	highThreshold   = 60
	mediumThreshold = 40
)

// urgencyKeywords are matched case-insensitively against subject+body.
// Each distinct hit adds 5 points, capped at 20.
var urgencyKeywords = []string{
	"urgent", "asap", "immediately", "deadline", "important",
	"critical", "emergency", "priority", "attention", "needed",
}

// questionPhrases complement the '?' check for question detection.
var questionPhrases = []string{
	"could you", "would you", "please let me know",
	"can you", "do you know", "what is", "when will",
}

// Scorer computes priority results from a contacts snapshot captured
// at construction. Safe for concurrent use.
type Scorer struct {
	vip       map[string]struct{}
	important map[string]struct{}
	now       func() time.Time
}

// NewScorer creates a scorer over the given contact lists. Addresses
// are compared exactly, lower-cased.
func NewScorer(contacts model.ContactsConfig) *Scorer {
	s := &Scorer{
		vip:       make(map[string]struct{}, len(contacts.VIP)),
		important: make(map[string]struct{}, len(contacts.Important)),
		now:       time.Now,
	}
	for _, addr := range contacts.VIP {
		s.vip[strings.ToLower(addr)] = struct{}{}
	}
	for _, addr := range contacts.Important {
		s.important[strings.ToLower(addr)] = struct{}{}
	}
	return s
}

// Score computes the priority of one email. It never fails: an
// unexpected internal error yields score 50 / Medium with an
// explanation noting the failure.
func (s *Scorer) Score(email model.EmailRecord) (result model.PriorityResult) {
	defer func() {
		if r := recover(); r != nil {
			result = model.PriorityResult{
				Score:        50,
				Category:     model.CategoryMedium,
				Explanations: []string{"Error in priority calculation"},
			}
		}
	}()

	score := 0
	var explanations []string

	// Sender importance. VIP is checked first; the two rules are
	// mutually exclusive for the same sender.
	switch {
	case s.isVIP(email.FromAddress):
		score += 30
		explanations = append(explanations, "VIP sender (+30)")
	case s.isImportant(email.FromAddress):
		score += 20
		explanations = append(explanations, "Important contact (+20)")
	}

	// Direct addressing. Placeholder rule that always fires; scoring
	// thresholds are calibrated against it.
	score += 15
	explanations = append(explanations, "Directly addressed (+15)")

	if pts := urgencyScore(email.Subject, email.BodyText); pts > 0 {
		score += pts
		explanations = append(
			explanations, fmt.Sprintf("Urgency keywords (+%d)", pts),
		)
	}

	if pts := s.recencyScore(email); pts > 0 {
		score += pts
		explanations = append(
			explanations, fmt.Sprintf("Recent email (+%d)", pts),
		)
	}

	if email.ThreadKey != "" {
		score += 10
		explanations = append(explanations, "Active thread (+10)")
	}

	if containsQuestion(email.BodyText) {
		score += 10
		explanations = append(explanations, "Contains questions (+10)")
	}

	if score > 100 {
		score = 100
	}

	return model.PriorityResult{
		Score:        score,
		Category:     Categorize(score),
		Explanations: explanations,
	}
}

// Categorize converts a numeric score to its priority category.
func Categorize(score int) string {
	switch {
	case score >= urgentThreshold:
		return model.CategoryUrgent
	case score >= highThreshold:
		return model.CategoryHigh
	case score >= mediumThreshold:
		return model.CategoryMedium
	default:
		return model.CategoryLow
	}
}

func (s *Scorer) isVIP(address string) bool {
	_, ok := s.vip[address]
	return ok
}

func (s *Scorer) isImportant(address string) bool {
	_, ok := s.important[address]
	return ok
}

// urgencyScore counts distinct urgency keywords in subject+body,
// 5 points each, capped at 20.
func urgencyScore(subject, body string) int {
	combined := strings.ToLower(subject + " " + body)

	count := 0
	for _, keyword := range urgencyKeywords {
		if strings.Contains(combined, keyword) {
			count++
		}
	}

	pts := count * 5
	if pts > 20 {
		pts = 20
	}
	return pts
}

// recencyScore grades the message age against now in UTC. Missing or
// unparseable dates contribute nothing.
func (s *Scorer) recencyScore(email model.EmailRecord) int {
	received := email.ReceivedAt
	if received.IsZero() {
		parsed, ok := normalize.ParseTimestamp(email.ReceivedRaw)
		if !ok {
			return 0
		}
		received = parsed
	}

	age := s.now().UTC().Sub(received)
	switch {
	case age < time.Hour:
		return 15
	case age < 4*time.Hour:
		return 10
	case age < 24*time.Hour:
		return 5
	default:
		return 0
	}
}

// containsQuestion reports whether the body carries a '?' or one of
// the question-lead phrases.
func containsQuestion(body string) bool {
	if strings.Contains(body, "?") {
		return true
	}

	lower := strings.ToLower(body)
	for _, phrase := range questionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
