// Package textsignal holds the pure, stateless signal extractors the
// classification pipeline runs over raw email text: chain/forward
// detection, link-only and emptiness checks, keyword matching, and
// named-entity candidate extraction.
package textsignal

import (
	"regexp"
	"strings"
)

var (
	chainPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)From:.*\n.*Sent:.*\n.*To:`),
		regexp.MustCompile(`(?i)Begin forwarded message`),
		regexp.MustCompile(`(?i)-{10} Forwarded message`),
		regexp.MustCompile(`(?i)On .* wrote:`),
		regexp.MustCompile(`(?i)From:.*<.*@.*>`),
	}

	fromLine = regexp.MustCompile(`(?im)^From:`)
	sentLine = regexp.MustCompile(`(?im)^Sent:`)

	urlPattern       = regexp.MustCompile(`https?://\S+`)
	wwwPattern       = regexp.MustCompile(`www\.\S+`)
	whitespace       = regexp.MustCompile(`\s+`)
	signaturePattern = regexp.MustCompile(`(?i)(Sent from my|Sent via|Get Outlook)`)
)

const (
	linkOnlyMaxChars = 50
	minimalMaxChars  = 20
)

// IsEmailChain reports whether the text looks like a forwarded thread or
// reply chain rather than original feedback.
func IsEmailChain(text string) bool {
	for _, p := range chainPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return len(fromLine.FindAllStringIndex(text, -1)) > 1 ||
		len(sentLine.FindAllStringIndex(text, -1)) > 1
}

// IsLinkOnly reports whether the text is just links with no substantive
// content: under 50 characters once URLs are stripped.
func IsLinkOnly(text string) bool {
	stripped := urlPattern.ReplaceAllString(text, "")
	stripped = wwwPattern.ReplaceAllString(stripped, "")
	return len(strings.TrimSpace(stripped)) < linkOnlyMaxChars
}

// IsEmptyOrMinimal reports whether the body is essentially empty once
// whitespace and common signature boilerplate are removed.
func IsEmptyOrMinimal(text string) bool {
	cleaned := whitespace.ReplaceAllString(text, "")
	cleaned = signaturePattern.ReplaceAllString(cleaned, "")
	return len(cleaned) < minimalMaxChars
}
