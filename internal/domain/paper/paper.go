package paper

import (
	"strings"
	"time"
)

// Text length caps for embedding inputs, in runes.
const (
	mainTextCap    = 8000
	conceptTextCap = 8000
	genericTextCap = 12000
)

// EmbeddingKind selects one of the independent embedding spaces.
type EmbeddingKind string

const (
	// EmbeddingMain is the content space (title + abstract).
	EmbeddingMain EmbeddingKind = "main"
	// EmbeddingConcept is the thematic space (tags, keywords, summary, methods).
	EmbeddingConcept EmbeddingKind = "concept"
	// EmbeddingGeneric is the broad space used by the filtered list search.
	EmbeddingGeneric EmbeddingKind = "generic"
)

// Paper is a single library entry with its metadata and cached embeddings.
// Either embedding may be nil until it is generated lazily during a search.
type Paper struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Authors  string   `json:"authors"`
	Subject  string   `json:"subject"`
	Abstract string   `json:"abstract"`
	Keywords string   `json:"keywords"`
	Year     string   `json:"year"`
	Category string   `json:"category"`
	Journal  string   `json:"journal"`
	Notes    string   `json:"notes"`
	Summary  string   `json:"summary"`
	Methods  string   `json:"methods"`
	FullText string   `json:"-"`
	Tags     []string `json:"tags"`

	EmbeddingMain    []float32 `json:"-"`
	EmbeddingConcept []float32 `json:"-"`
	EmbeddingGeneric []float32 `json:"-"`

	UpdatedAt time.Time `json:"updated_at"`
}

// Embedding returns the cached vector for the given kind, or nil.
func (p *Paper) Embedding(kind EmbeddingKind) []float32 {
	switch kind {
	case EmbeddingConcept:
		return p.EmbeddingConcept
	case EmbeddingGeneric:
		return p.EmbeddingGeneric
	default:
		return p.EmbeddingMain
	}
}

// EmbeddingText builds the text embedded for the given kind.
// Returns "" when the paper has no usable text for that space.
func (p *Paper) EmbeddingText(kind EmbeddingKind) string {
	switch kind {
	case EmbeddingConcept:
		return joinCapped(conceptTextCap,
			strings.Join(p.Tags, ", "), p.Keywords, p.Summary, p.Subject, p.Methods)
	case EmbeddingGeneric:
		return p.GenericEmbeddingText()
	default:
		return joinCapped(mainTextCap, p.Title, p.Abstract)
	}
}

// GenericEmbeddingText builds the broad text used by the single-vector
// semantic filter search.
func (p *Paper) GenericEmbeddingText() string {
	return joinCapped(genericTextCap, p.Title, p.Authors, p.Subject, p.Abstract, p.FullText)
}

// SearchableText aggregates the fields checked for exclude terms, lowercased.
func (p *Paper) SearchableText() string {
	parts := make([]string, 0, 6+len(p.Tags))
	for _, s := range []string{p.Title, p.Abstract, p.Keywords, p.Notes, p.Summary} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, tag := range p.Tags {
		if tag != "" {
			parts = append(parts, tag)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// NormalizeTags trims, drops blanks, and removes duplicates preserving order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func joinCapped(limit int, parts ...string) string {
	kept := parts[:0:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	joined := strings.Join(kept, "\n")
	runes := []rune(joined)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return joined
}
