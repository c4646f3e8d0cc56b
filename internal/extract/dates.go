package extract

import (
	"regexp"
	"strings"
	"time"
)

// isoDate is the format resolved due dates are rendered in.
const isoDate = "2006-01-02"

// datePatterns locate due-date phrases in text. Evaluated in order;
// the first match wins.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)by\s+(\w+day,?\s+\w+\s+\d{1,2}(?:st|nd|rd|th)?)`),
	regexp.MustCompile(`(?i)due\s+(?:by|on)\s+(\w+day,?\s+\w+\s+\d{1,2}(?:st|nd|rd|th)?)`),
	regexp.MustCompile(`(?i)(?:before|until)\s+(\w+day,?\s+\w+\s+\d{1,2}(?:st|nd|rd|th)?)`),
	regexp.MustCompile(`(?i)(?:by|on)\s+(tomorrow|today|monday|tuesday|wednesday|thursday|friday|saturday|sunday)`),
	regexp.MustCompile(`(?i)by\s+(?:the\s+)?(?:end\s+of|close\s+of|)\s+(\w+day|this week|next week|this month)`),
	regexp.MustCompile(`(?i)(?:in|within)\s+the\s+next\s+(\d+)\s+(day|days|week|weeks)`),
}

// weekdays maps lower-case day names to Monday-based indices.
var weekdays = []struct {
	name string
	num  int
}{
	{"monday", 0}, {"tuesday", 1}, {"wednesday", 2}, {"thursday", 3},
	{"friday", 4}, {"saturday", 5}, {"sunday", 6},
}

// resolveDueDate scans text for a due-date phrase and resolves it
// against now. Returns empty when no phrase is found; returns the
// phrase verbatim when it cannot be resolved to a date.
func resolveDueDate(text string, now time.Time) string {
	for _, pattern := range datePatterns {
		if m := pattern.FindStringSubmatch(text); m != nil {
			return resolveDateText(m[1], now)
		}
	}
	return ""
}

// resolveDateText turns a matched date phrase into an ISO date.
// Relative terms resolve against now; "this week" means the upcoming
// Friday, "next week" the Wednesday of the following week, and a bare
// weekday name its next occurrence, treating today as 7 days out.
// Anything else comes back verbatim.
func resolveDateText(dateText string, now time.Time) string {
	lower := strings.ToLower(dateText)

	// Monday-based weekday of now.
	weekday := (int(now.Weekday()) + 6) % 7

	switch {
	case strings.Contains(lower, "today"):
		return now.Format(isoDate)
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1).Format(isoDate)
	case strings.Contains(lower, "this week"):
		daysUntilFriday := (4 - weekday + 7) % 7
		return now.AddDate(0, 0, daysUntilFriday).Format(isoDate)
	case strings.Contains(lower, "next week"):
		daysUntilWednesday := (9 - weekday) % 7
		return now.AddDate(0, 0, daysUntilWednesday).Format(isoDate)
	}

	for _, day := range weekdays {
		if !strings.Contains(lower, day.name) {
			continue
		}
		daysAhead := (day.num - weekday + 7) % 7
		if daysAhead == 0 {
			// Never resolve to the same day; take next week's.
			daysAhead = 7
		}
		return now.AddDate(0, 0, daysAhead).Format(isoDate)
	}

	return dateText
}
