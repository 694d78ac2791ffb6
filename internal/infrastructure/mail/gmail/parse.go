package gmail

import (
	"encoding/base64"
	"net/mail"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"
	"google.golang.org/api/gmail/v1"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

// systemSenderMarkers identify automated senders whose mail is never
// alumni correspondence.
var systemSenderMarkers = []string{
	"gserviceaccount.com",
	"noreply",
	"no-reply",
	"donotreply",
}

// parseEmail converts a full Gmail message into a domain email. skip is
// true for system senders.
func parseEmail(msg *gmail.Message) (domain.Email, bool) {
	email := domain.Email{
		MessageID: msg.Id,
		Source:    "gmail",
	}
	if msg.Payload == nil {
		return email, true
	}

	email.Subject = headerValue(msg.Payload.Headers, "Subject")
	email.FirstName, email.LastName, email.Address = parseSender(headerValue(msg.Payload.Headers, "From"))
	email.ReceivedAt = receivedAt(msg)
	email.Body = extractBody(msg.Payload)

	return email, isSystemSender(email.Address)
}

func isSystemSender(address string) bool {
	lower := strings.ToLower(address)
	for _, marker := range systemSenderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func headerValue(headers []*gmail.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// parseSender splits a From header into first name, last name, and
// address. A single-word display name lands entirely in the first name.
func parseSender(from string) (first, last, address string) {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "", "", strings.TrimSpace(from)
	}

	parts := strings.Fields(strings.Trim(addr.Name, `"`))
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last, addr.Address
}

func receivedAt(msg *gmail.Message) time.Time {
	if raw := headerValue(msg.Payload.Headers, "Date"); raw != "" {
		if parsed, err := mail.ParseDate(raw); err == nil {
			return parsed.UTC()
		}
	}
	if msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate).UTC()
	}
	return time.Time{}
}

// extractBody prefers a text/plain part; an HTML part is stripped to
// text only when no plain part exists.
func extractBody(payload *gmail.MessagePart) string {
	if len(payload.Parts) == 0 {
		return decodePartBody(payload)
	}

	var htmlBody string
	for _, part := range payload.Parts {
		switch part.MimeType {
		case "text/plain":
			if body := decodePartBody(part); body != "" {
				return body
			}
		case "text/html":
			if htmlBody == "" {
				htmlBody = decodePartBody(part)
			}
		case "multipart/alternative", "multipart/related", "multipart/mixed":
			if body := extractBody(part); body != "" {
				return body
			}
		}
	}
	return stripHTML(htmlBody)
}

func decodePartBody(part *gmail.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(part.Body.Data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// stripHTML flattens an HTML fragment to its visible text.
func stripHTML(fragment string) string {
	if fragment == "" {
		return ""
	}
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "div", "br", "li", "tr":
				b.WriteString("\n")
			}
		}
	}
	walk(root)

	lines := strings.Split(b.String(), "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return strings.Join(cleaned, "\n")
}

// minBodyRunes is the shortest body worth classifying. Anything under
// it is an empty reply or a signature fragment.
const minBodyRunes = 20

func isTrivialBody(body string) bool {
	return len([]rune(strings.TrimSpace(body))) < minBodyRunes
}

// sortOldestFirst orders a batch by receive time so sheet rows append
// chronologically. The Gmail list endpoint returns newest first.
func sortOldestFirst(emails []domain.Email) {
	sort.SliceStable(emails, func(i, j int) bool {
		return emails[i].ReceivedAt.Before(emails[j].ReceivedAt)
	})
}
