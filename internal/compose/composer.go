// Package compose drafts AI-generated email replies. Drafting is
// total: a missing or failing generation service yields a
// needs-review draft with an explanatory text, never an error.
package compose

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kannann1/mail-response-ai/internal/ai"
	"github.com/kannann1/mail-response-ai/internal/model"
)

const (
	baseConfidence     = 0.85
	phrasePenalty      = 0.15
	lengthPenalty      = 0.1
	confidenceFloor    = 0.3
	reviewThreshold    = 0.7
	envelopeDateLayout = "Mon, 02 Jan 2006 15:04:05"
)

// uncertaintyPhrases each shave 0.15 off the confidence score when
// present in the generated text. Penalties stack.
var uncertaintyPhrases = []string{
	"i'm not sure", "i don't know", "needs input",
	"cannot determine", "unclear", "don't have enough information",
}

// highStakesKeywords force review when found in subject+body.
var highStakesKeywords = []string{
	"contract", "legal", "agreement", "offer", "confidential",
	"urgent", "critical", "emergency", "security", "breach",
}

// inputMarker is the literal the model is instructed to use for
// questions it cannot answer; its presence forces review.
const inputMarker = "[NEEDS INPUT:"

// Composer drafts replies in the configured user's voice. The
// generator is optional; without one every request returns an
// explanatory needs-review draft.
type Composer struct {
	gen          ai.Generator
	user         model.UserProfile
	vips         []string
	samples      []string
	alwaysReview bool
	temperature  float64
	maxTokens    int
	now          func() time.Time
}

// New creates a composer from configuration snapshots captured at
// construction. gen may be nil when no generation service is
// configured.
func New(
	gen ai.Generator,
	user model.UserProfile,
	contacts model.ContactsConfig,
	review model.ReviewConfig,
) *Composer {
	return &Composer{
		gen:          gen,
		user:         user,
		vips:         contacts.VIP,
		alwaysReview: review.AlwaysReview,
		temperature:  0.7,
		now:          time.Now,
	}
}

// Compose generates a reply draft for the email. history carries
// prior messages in the thread; the prompt instructs the model to
// address only the latest message, so history is accepted but not
// replayed into the prompt. Never returns an error: service failures
// surface as a draft state.
func (c *Composer) Compose(
	ctx context.Context,
	email model.EmailRecord,
	history []model.EmailRecord,
) model.ResponseDraft {
	if c.gen == nil {
		return model.ResponseDraft{
			ResponseText: "AI service not configured. " +
				"Configure a text generation service to draft replies.",
			ConfidenceScore: 0.0,
			NeedsReview:     true,
		}
	}

	prompt := c.buildPrompt(email)

	result, err := c.gen.Generate(ctx, prompt, ai.GenerateOptions{
		SystemPrompt: c.systemPrompt(),
		Temperature:  c.temperature,
		MaxTokens:    c.maxTokens,
	})
	if err != nil {
		return model.ResponseDraft{
			ResponseText:    "Error generating response. Please try again.",
			ConfidenceScore: 0.0,
			NeedsReview:     true,
		}
	}

	replyText := strings.TrimSpace(result)

	return model.ResponseDraft{
		ResponseText:    replyText,
		FormattedEmail:  c.formatReply(email, replyText),
		ConfidenceScore: scoreConfidence(replyText),
		NeedsReview:     c.needsReview(replyText, email),
	}
}

// buildPrompt builds the single-turn reply instruction with the body
// collapsed to one line.
func (c *Composer) buildPrompt(email model.EmailRecord) string {
	oneLineBody := strings.Join(
		strings.Split(email.BodyText, "\n"), " ",
	)

	return fmt.Sprintf(`Write a reply to this email thread, addressing only the latest message:

FROM: %s
SUBJECT: %s

EMAIL CONTENT:
%s

Keep the reply short and professional.`,
		senderField(email), email.Subject, oneLineBody)
}

// Tune overrides the generation parameters from configuration.
// Non-positive values keep the defaults.
func (c *Composer) Tune(temperature float64, maxTokens int) {
	if temperature > 0 {
		c.temperature = temperature
	}
	if maxTokens > 0 {
		c.maxTokens = maxTokens
	}
}

// SetStyleSamples provides snippets of the user's own writing that
// are appended to the system prompt to steer the reply tone.
func (c *Composer) SetStyleSamples(samples []string) {
	c.samples = samples
}

// systemPrompt parameterizes the reply style by the configured user
// profile.
func (c *Composer) systemPrompt() string {
	prompt := fmt.Sprintf(`You are an AI email assistant for %s, who works as a %s.

IMPORTANT GUIDELINES:
1. Write in a %s style that sounds authentic to the user.
2. Use straightforward, plain English. Avoid overly complex sentences or vocabulary.
3. Be technically accurate.
4. Keep responses concise and to the point.
5. If there are any questions that you cannot answer confidently, indicate those in [NEEDS INPUT: question] format.
6. If you need more information before drafting a complete response, specify what information is needed.

Generate an email response that sounds authentically like it was written by the user.`,
		c.user.Name, c.user.Role, c.user.CommunicationStyle)

	if len(c.samples) > 0 {
		prompt += "\n\nHere are examples of the user's writing style:\n"
		for _, sample := range c.samples {
			prompt += fmt.Sprintf("\n---\n%s\n", sample)
		}
	}

	return prompt
}

// formatReply wraps the reply text in a full reply envelope with a
// signature block.
func (c *Composer) formatReply(
	email model.EmailRecord,
	replyText string,
) string {
	return fmt.Sprintf(
		"From: %s\nTo: %s\nSubject: Re: %s\nDate: %s\n\n%s\n\n%s",
		c.user.Email,
		senderField(email),
		email.Subject,
		c.now().Format(envelopeDateLayout),
		replyText,
		c.signature(),
	)
}

func (c *Composer) signature() string {
	return fmt.Sprintf("Best regards,\n%s\n%s", c.user.Name, c.user.Role)
}

// senderField renders the original sender for To/FROM lines.
func senderField(email model.EmailRecord) string {
	if email.FromAddress == "" {
		return email.FromDisplay
	}
	if email.FromDisplay == "" {
		return email.FromAddress
	}
	return fmt.Sprintf("%s <%s>", email.FromDisplay, email.FromAddress)
}

// scoreConfidence grades a generated reply: 0.85 base, minus 0.15 per
// uncertainty phrase present, minus 0.1 when the word count falls
// under 20 or over 500, floored at 0.3.
func scoreConfidence(replyText string) float64 {
	lower := strings.ToLower(replyText)

	penalty := 0.0
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lower, phrase) {
			penalty += phrasePenalty
		}
	}

	wordCount := len(strings.Fields(replyText))
	if wordCount < 20 || wordCount > 500 {
		penalty += lengthPenalty
	}

	confidence := baseConfidence - penalty
	if confidence < confidenceFloor {
		confidence = confidenceFloor
	}
	return confidence
}

// needsReview decides whether a human must approve the draft before
// sending. Any single condition is enough.
func (c *Composer) needsReview(
	replyText string,
	email model.EmailRecord,
) bool {
	if scoreConfidence(replyText) < reviewThreshold {
		return true
	}

	for _, vip := range c.vips {
		if vip == "" {
			continue
		}
		if strings.Contains(email.FromAddress, strings.ToLower(vip)) {
			return true
		}
	}

	content := strings.ToLower(email.Subject + " " + email.BodyText)
	for _, keyword := range highStakesKeywords {
		if strings.Contains(content, keyword) {
			return true
		}
	}

	if strings.Contains(replyText, inputMarker) {
		return true
	}

	return c.alwaysReview
}
