// Package normalize converts raw transport messages into canonical
// EmailRecord values. Normalization is total: malformed input degrades
// to a sentinel record, never to an error.
package normalize

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"

	"github.com/kannann1/mail-response-ai/internal/model"
)

// Sentinel values returned when a message cannot be parsed at all.
const (
	errSubject = "Error parsing email"
	errBody    = "There was an error parsing this email."
)

// timestampLayouts are tried in order when parsing date headers. The
// day-of-month verb is non-padded so both "2 Jan" and "02 Jan" parse.
var timestampLayouts = []string{
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05",
	"2 Jan 2006 15:04:05 -0700",
	"2006-01-02 15:04:05",
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	signaturePattern  = regexp.MustCompile(`(?m)-{2,}\s*.*$`)
	forwardedPattern  = regexp.MustCompile(`-{3,}.*Forwarded message.*-{3,}`)
	addressPattern    = regexp.MustCompile(`(.*?)\s*<([^>]+)>`)
	bracketedPattern  = regexp.MustCompile(`<([^>]+)>`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
)

// Normalize parses a raw message into an EmailRecord. It never fails:
// missing headers become empty fields, and a message whose structure
// cannot be parsed yields the sentinel record so downstream components
// always receive a valid value.
func Normalize(raw model.RawMessage) model.EmailRecord {
	mr, err := mail.CreateReader(bytes.NewReader(raw.Source))
	if err != nil {
		return sentinelRecord(raw.Unread)
	}
	defer mr.Close()

	header := mr.Header

	rawDate := header.Get("Date")
	receivedAt, _ := ParseTimestamp(rawDate)

	fromDisplay, fromAddress := splitSender(header.Get("From"))

	record := model.EmailRecord{
		Subject:     header.Get("Subject"),
		FromDisplay: fromDisplay,
		FromAddress: fromAddress,
		ToList:      splitRecipients(header.Get("To")),
		ReceivedAt:  receivedAt,
		ReceivedRaw: rawDate,
		ThreadKey:   threadKey(header),
		Unread:      raw.Unread,
	}

	record.BodyText, record.HasAttachments = extractBody(mr)

	return record
}

func sentinelRecord(unread bool) model.EmailRecord {
	return model.EmailRecord{
		Subject:  errSubject,
		BodyText: errBody,
		Unread:   unread,
	}
}

// ParseTimestamp tries the known timestamp layouts in order and
// returns the first that parses. Layouts without a zone are taken as
// UTC. The second return value is false when nothing matched.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		if t.Location() == time.UTC || strings.Contains(layout, "-0700") {
			return t, true
		}
		return t.UTC(), true
	}

	return time.Time{}, false
}

// threadKey resolves the conversation identifier from threading
// headers. First match wins; headers are never combined.
func threadKey(header mail.Header) string {
	if v := header.Get("Thread-Index"); v != "" {
		return v
	}
	if v := header.Get("References"); v != "" {
		tokens := strings.Fields(v)
		if len(tokens) > 0 {
			return tokens[len(tokens)-1]
		}
	}
	if v := header.Get("In-Reply-To"); v != "" {
		return v
	}
	if v := header.Get("Message-Id"); v != "" {
		return v
	}
	return ""
}

// extractBody walks the message parts, skipping attachments, and
// returns the cleaned plain-text body plus the attachment flag. The
// first text/plain part wins; the first text/html part is kept as a
// fallback and converted to text.
func extractBody(mr *mail.Reader) (string, bool) {
	var plainBody, htmlBody string
	hasAttachments := false

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}

			switch {
			case strings.HasPrefix(contentType, "text/plain"):
				if plainBody == "" {
					plainBody = string(body)
				}
			case strings.HasPrefix(contentType, "text/html"):
				if htmlBody == "" {
					htmlBody = string(body)
				}
			}

		case *mail.AttachmentHeader:
			hasAttachments = true
		}
	}

	body := plainBody
	if body == "" && htmlBody != "" {
		body = htmlToText(htmlBody)
	}

	return CleanText(body), hasAttachments
}

// CleanText collapses whitespace runs to single spaces, strips
// trailing signature blocks, and removes forwarded-message banners,
// in that order.
func CleanText(text string) string {
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	text = signaturePattern.ReplaceAllString(text, "")
	text = forwardedPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// htmlToText strips tags from an HTML body while preserving line
// breaks, and decodes the common entities.
func htmlToText(html string) string {
	if html == "" {
		return ""
	}

	result := html
	for _, tag := range []string{
		"<br>", "<br/>", "<br />", "</p>", "</div>", "</li>",
	} {
		result = strings.ReplaceAll(result, tag, "\n")
	}

	result = htmlTagPattern.ReplaceAllString(result, "")

	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
	result = replacer.Replace(result)

	return strings.TrimSpace(result)
}

// splitSender parses a From field. The `name <address>` pattern is
// preferred; a bare field containing '@' is treated as an address,
// anything else as a display name. Addresses are lower-cased.
func splitSender(from string) (display, address string) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", ""
	}

	if m := addressPattern.FindStringSubmatch(from); m != nil {
		return strings.TrimSpace(m[1]), strings.ToLower(strings.TrimSpace(m[2]))
	}

	if strings.Contains(from, "@") {
		return "", strings.ToLower(from)
	}

	return from, ""
}

// splitRecipients extracts recipient addresses from a To field,
// preferring bracketed addresses and falling back to comma-separated
// bare addresses.
func splitRecipients(to string) []string {
	var recipients []string

	for _, m := range bracketedPattern.FindAllStringSubmatch(to, -1) {
		recipients = append(recipients, m[1])
	}
	if len(recipients) > 0 {
		return recipients
	}

	for _, part := range strings.Split(to, ",") {
		part = strings.TrimSpace(part)
		if strings.Contains(part, "@") {
			recipients = append(recipients, part)
		}
	}

	return recipients
}
