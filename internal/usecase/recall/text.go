package recall

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTermRunes drops single-character noise terms from scoring.
const minTermRunes = 2

// snippetRadius is the number of runes kept on each side of a match.
const snippetRadius = 30

func isTermSeparator(r rune) bool {
	switch r {
	case ',', ';', '，', '；', '/', '|':
		return true
	}
	return unicode.IsSpace(r)
}

// tokenize lowercases the query and splits it on whitespace and common
// list punctuation.
func tokenize(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), isTermSeparator)
}

// buildTerms unions the tokenized query with the lowercased related terms,
// preserving first-seen order, and keeps terms of at least minTermRunes.
func buildTerms(query string, related []string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0, len(related)+4)
	add := func(term string) {
		if utf8.RuneCountInString(term) < minTermRunes {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	for _, term := range tokenize(query) {
		add(term)
	}
	for _, term := range related {
		add(strings.ToLower(strings.TrimSpace(term)))
	}
	return terms
}

// snippet returns a window of text around the first occurrence of term,
// with whitespace runs collapsed. Empty when the term does not occur.
func snippet(text, term string) string {
	if text == "" || term == "" {
		return ""
	}
	lower := strings.ToLower(text)
	idx := strings.Index(lower, strings.ToLower(term))
	if idx == -1 {
		return ""
	}

	runes := []rune(text)
	runeIdx := utf8.RuneCountInString(lower[:idx])
	termLen := utf8.RuneCountInString(term)

	start := runeIdx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := runeIdx + termLen + snippetRadius
	if end > len(runes) {
		end = len(runes)
	}
	return strings.Join(strings.Fields(string(runes[start:end])), " ")
}
