package recall

import (
	"strings"

	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
)

// lexicalField pairs a searchable field with its fixed weight.
// Order matters: a term is credited to the first field containing it.
type lexicalField struct {
	name   string
	weight float64
	text   func(*paper.Paper) string
}

var lexicalFields = []lexicalField{
	{"title", 3, func(p *paper.Paper) string { return p.Title }},
	{"abstract", 2, func(p *paper.Paper) string { return p.Abstract }},
	{"keywords", 2, func(p *paper.Paper) string { return p.Keywords }},
	{"notes", 1, func(p *paper.Paper) string { return p.Notes }},
	{"full_text", 1, func(p *paper.Paper) string { return p.FullText }},
}

// lexicalScore sums, per term, the weight of the first field containing it
// as a substring. The first match found becomes the evidence reason.
func lexicalScore(p *paper.Paper, terms []string) (float64, *domrecall.Reason) {
	var score float64
	var reason *domrecall.Reason
	for _, term := range terms {
		for _, field := range lexicalFields {
			text := field.text(p)
			if !strings.Contains(strings.ToLower(text), term) {
				continue
			}
			score += field.weight
			if reason == nil {
				reason = &domrecall.Reason{
					Field:   field.name,
					Match:   term,
					Snippet: snippet(text, term),
				}
			}
			break
		}
	}
	return score, reason
}

// tagScore counts distinct terms with at least one case-insensitive
// substring-matching tag. The first matching tag is returned as evidence.
func tagScore(p *paper.Paper, terms []string) (float64, string) {
	lowered := make([]string, len(p.Tags))
	for i, tag := range p.Tags {
		lowered[i] = strings.ToLower(tag)
	}

	var score float64
	var firstMatch string
	for _, term := range terms {
		for i, tag := range lowered {
			if strings.Contains(tag, term) {
				score++
				if firstMatch == "" {
					firstMatch = lowered[i]
				}
				break
			}
		}
	}
	return score, firstMatch
}
