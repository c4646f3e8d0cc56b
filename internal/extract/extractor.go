// Package extract pulls actionable tasks out of email text. A rule
// engine over ordered pattern tables always runs; LLM extraction runs
// first when a generation service is available, and its failures
// degrade to rule-based results only.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kannann1/mail-response-ai/internal/ai"
	"github.com/kannann1/mail-response-ai/internal/model"
)

// Confidence levels per extraction source.
const (
	llmConfidence     = 0.85
	requestConfidence = 0.8
	bulletConfidence  = 0.7
	subjectBonus      = 0.1
)

// requestPatterns match request phrasings; the captured clause is a
// candidate action. Evaluated in order on subject and body.
var requestPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:can|could|would) you (?:please)?\s+([^?.]*)\??`),
	regexp.MustCompile(`(?i)(?:please|kindly)\s+([^?.]*)`),
	regexp.MustCompile(`(?i)(?:need|require|want)(?:ed)? you to\s+([^?.]*)`),
	regexp.MustCompile(`(?i)(?:don't forget|remember) to\s+([^?.]*)`),
	regexp.MustCompile(`(?i)(?:must|should|have to)\s+([^?.]*)`),
	regexp.MustCompile(`(?i)(?:I'm waiting for|I'll be waiting for|I await|expecting) you to\s+([^?.]*)`),
}

// bulletPattern catches list-formatted lines (bullets and numbering).
var bulletPattern = regexp.MustCompile(`(?:^|\n)(?:\*|-|\d+\.)\s+([^\n]*)`)

// actionVerbs qualify a bullet line as an action when it starts with
// one of them.
var actionVerbs = map[string]bool{
	"create": true, "update": true, "review": true, "prepare": true,
	"send": true, "check": true, "complete": true, "implement": true,
	"develop": true, "fix": true, "test": true, "deploy": true,
}

// actionPhrases qualify a bullet line as an action when it contains
// one of them.
var actionPhrases = []string{
	"need to", "should", "must", "have to", "required",
}

var (
	fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	bareJSONPattern   = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)
)

// Extractor extracts action items from emails. The generator is
// optional; when absent only the rule engine runs.
type Extractor struct {
	gen         ai.Generator
	temperature float64
	now         func() time.Time
}

// New creates an extractor. gen may be nil when no generation service
// is configured.
func New(gen ai.Generator) *Extractor {
	return &Extractor{
		gen:         gen,
		temperature: 0.7,
		now:         time.Now,
	}
}

// Extract returns the deduplicated action items found in the email.
// It never fails: extraction errors degrade to fewer results.
func (e *Extractor) Extract(
	ctx context.Context,
	email model.EmailRecord,
) (items []model.ActionItem) {
	defer func() {
		if recover() != nil {
			items = nil
		}
	}()

	now := e.now()

	if e.gen != nil {
		items = append(items, e.extractWithLLM(ctx, email)...)
	}

	for _, item := range e.extractFromText(email.Subject, now) {
		item.Source = model.ActionSourceSubject
		item.Confidence += subjectBonus
		items = append(items, item)
	}

	for _, item := range e.extractFromText(email.BodyText, now) {
		item.Source = model.ActionSourceBody
		items = append(items, item)
	}

	return Deduplicate(items)
}

// extractWithLLM asks the generation service for task/deadline/priority
// triples in JSON and parses whatever payload it can locate in the
// response. Any failure yields no items.
func (e *Extractor) extractWithLLM(
	ctx context.Context,
	email model.EmailRecord,
) []model.ActionItem {
	prompt := buildExtractionPrompt(email.Subject, email.BodyText)

	result, err := e.gen.Generate(ctx, prompt, ai.GenerateOptions{
		SystemPrompt: extractionSystemPrompt,
		Temperature:  e.temperature,
	})
	if err != nil {
		return nil
	}

	payload := locateJSONPayload(result)

	var parsed []struct {
		Text     string  `json:"text"`
		DueDate  *string `json:"due_date"`
		Priority string  `json:"priority"`
	}
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil
	}

	items := make([]model.ActionItem, 0, len(parsed))
	for _, p := range parsed {
		if p.Text == "" {
			continue
		}

		dueDate := ""
		if p.DueDate != nil {
			dueDate = *p.DueDate
		}

		priority := p.Priority
		if priority == "" {
			priority = model.ActionPriorityMedium
		}

		items = append(items, model.ActionItem{
			Text:       p.Text,
			DueDate:    dueDate,
			Confidence: llmConfidence,
			Priority:   priority,
			Source:     model.ActionSourceLLM,
		})
	}

	return items
}

const extractionSystemPrompt = `You are an AI assistant specialized in extracting action items from emails.
Your task is to identify specific actions the recipient needs to take.
Return your analysis as valid JSON that can be parsed programmatically.`

// buildExtractionPrompt builds the extraction instruction for one email.
func buildExtractionPrompt(subject, body string) string {
	return fmt.Sprintf(`Extract actionable items from this email:

SUBJECT: %s

BODY:
%s

For each action item, provide:
1. The specific task that needs to be done
2. Any deadline mentioned (or "None" if no deadline)
3. The priority level (High, Medium, Low)

Format your response as a JSON list of objects with these fields:
text, due_date, priority

Only include real action items, not general information.`, subject, body)
}

// locateJSONPayload finds the structured payload inside a raw model
// response: a fenced json block first, then a bare JSON array, then
// the whole response.
func locateJSONPayload(result string) string {
	if m := fencedJSONPattern.FindStringSubmatch(result); m != nil {
		return m[1]
	}
	if m := bareJSONPattern.FindString(result); m != "" {
		return m
	}
	return result
}

// extractFromText runs the rule engine over one piece of text. Due
// dates are resolved from the containing text, not just the matched
// clause.
func (e *Extractor) extractFromText(
	text string,
	now time.Time,
) []model.ActionItem {
	var items []model.ActionItem

	for _, pattern := range requestPatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			if !isValidAction(candidate) {
				continue
			}
			items = append(items, model.ActionItem{
				Text:       candidate,
				DueDate:    resolveDueDate(text, now),
				Confidence: requestConfidence,
				Priority:   model.ActionPriorityMedium,
			})
		}
	}

	for _, m := range bulletPattern.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if !isLikelyAction(candidate) {
			continue
		}
		items = append(items, model.ActionItem{
			Text:       candidate,
			DueDate:    resolveDueDate(text, now),
			Confidence: bulletConfidence,
			Priority:   model.ActionPriorityMedium,
		})
	}

	return items
}

// isValidAction rejects candidates that are too short, too long, or
// questions.
func isValidAction(candidate string) bool {
	if len(strings.Fields(candidate)) < 3 {
		return false
	}
	if len(candidate) > 200 {
		return false
	}
	if strings.HasSuffix(candidate, "?") {
		return false
	}
	return true
}

// isLikelyAction reports whether a bullet line reads like a task:
// starting with a common action verb or containing an action phrase.
func isLikelyAction(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}

	if actionVerbs[strings.ToLower(fields[0])] {
		return true
	}

	lower := strings.ToLower(text)
	for _, phrase := range actionPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Deduplicate drops case-insensitive duplicate action texts, keeping
// the first occurrence. Near-duplicates and paraphrases pass through
// untouched.
func Deduplicate(items []model.ActionItem) []model.ActionItem {
	seen := make(map[string]bool, len(items))
	unique := make([]model.ActionItem, 0, len(items))

	for _, item := range items {
		key := strings.ToLower(item.Text)
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
	}

	if len(unique) == 0 {
		return nil
	}
	return unique
}
