package query

import (
	"regexp"
	"strings"
)

// rewrite maps a phrasing pattern to the canonical documentation term.
type rewrite struct {
	pattern     *regexp.Regexp
	replacement string
}

// Rewrites run in order on the progressively-rewritten string, so the
// compound product forms must be collapsed before the standalone
// product token is removed.
var rewrites = []rewrite{
	{regexp.MustCompile(`\b(wordpress|wp)\s+(site|website|instance|installation)\b`), "site"},
	{regexp.MustCompile(`\b(wordpress|wp)\b`), ""},
	{regexp.MustCompile(`\bwebsite\b`), "site"},
	{regexp.MustCompile(`\baccount\b`), "account billing"},
	{regexp.MustCompile(`\bpayment\b`), "billing payment"},
	{regexp.MustCompile(`\bsetup\b`), "create configure"},
}

// Normalize lower-cases a question, applies the domain-term rewrites and
// collapses whitespace. If rewriting empties the string, the trimmed
// original is returned instead.
func Normalize(question string) string {
	normalized := strings.ToLower(strings.TrimSpace(question))

	for _, r := range rewrites {
		normalized = r.pattern.ReplaceAllString(normalized, r.replacement)
	}

	normalized = strings.Join(strings.Fields(normalized), " ")
	if normalized == "" {
		return strings.TrimSpace(question)
	}
	return normalized
}
