package textsignal

import (
	"regexp"
	"strings"
)

var (
	capitalizedRun = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)\b`)

	rolePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(president|dean|provost|chancellor|director|coach|dr\.?|prof\.?)\s+([A-Za-z]+)`),
		regexp.MustCompile(`(?i)\b([A-Za-z]+)\s+(president|dean|provost|chancellor)`),
	}

	// Leading words that mark a two-word candidate as an extraction
	// artifact rather than a real entity.
	artifactLeads = map[string]bool{
		"See": true, "To": true, "Is": true,
		"Appreciated": true, "While": true, "Because": true,
	}
)

// ExtractEntities returns candidate named entities from text: runs of
// two-or-more capitalized words plus role-title/name pairs, title-cased
// and deduplicated in order of first appearance.
func ExtractEntities(text string) []string {
	var entities []string
	seen := make(map[string]bool)

	add := func(entity string) {
		entity = strings.Join(strings.Fields(entity), " ")
		entity = titleCase(entity)
		if entity != "" && !seen[entity] {
			seen[entity] = true
			entities = append(entities, entity)
		}
	}

	for _, m := range capitalizedRun.FindAllString(text, -1) {
		add(m)
	}
	for _, p := range rolePatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			add(m[1] + " " + m[2])
		}
	}

	return entities
}

// NormalizeEntity canonicalizes an extracted entity for cross-email
// matching: trailing possessive markers are stripped, and two-word
// candidates led by a function word are rejected. Returns "" for
// rejected candidates.
func NormalizeEntity(entity string) string {
	normalized := strings.TrimSpace(strings.TrimRight(entity, "s'"))
	words := strings.Fields(normalized)
	if len(words) == 2 && artifactLeads[words[0]] {
		return ""
	}
	return normalized
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
