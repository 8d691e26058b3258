package recall

import "strings"

// Expansion is the result of LLM query expansion.
// A zero Expansion degrades the search to the original query only.
type Expansion struct {
	Rewrites     []string
	RelatedTerms []string
	Excludes     []string
}

// Queries merges the original query with rewrites, trimmed, deduplicated,
// and capped at the profile's rewrite count. The original query comes first.
func (e Expansion) Queries(original string, limit int) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, limit)
	for _, q := range append([]string{original}, e.Rewrites...) {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// Related returns the related terms capped at the profile's limit.
func (e Expansion) Related(limit int) []string {
	if len(e.RelatedTerms) > limit {
		return e.RelatedTerms[:limit]
	}
	return e.RelatedTerms
}

// ExcludeTerms returns the exclusion terms lowercased.
func (e Expansion) ExcludeTerms() []string {
	out := make([]string, 0, len(e.Excludes))
	for _, term := range e.Excludes {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}
