package papers

import (
	"encoding/json"
	"time"

	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/paper"
)

// Hash field names. Embeddings are stored as binary float32 blobs so that
// vectors round-trip without JSON float precision loss.
const (
	fieldTitle            = "title"
	fieldAuthors          = "authors"
	fieldSubject          = "subject"
	fieldAbstract         = "abstract"
	fieldKeywords         = "keywords"
	fieldYear             = "year"
	fieldCategory         = "category"
	fieldJournal          = "journal"
	fieldNotes            = "notes"
	fieldSummary          = "summary"
	fieldMethods          = "methods"
	fieldFullText         = "full_text"
	fieldTags             = "tags"
	fieldEmbeddingMain    = "embedding_main"
	fieldEmbeddingConcept = "embedding_concept"
	fieldEmbeddingGeneric = "embedding_generic"
	fieldUpdatedAt        = "updated_at"
)

// buildHashFields converts a Paper into a flat map[string]string for HSET.
func buildHashFields(p *paper.Paper) map[string]string {
	tags, _ := json.Marshal(p.Tags)
	m := map[string]string{
		fieldTitle:     p.Title,
		fieldAuthors:   p.Authors,
		fieldSubject:   p.Subject,
		fieldAbstract:  p.Abstract,
		fieldKeywords:  p.Keywords,
		fieldYear:      p.Year,
		fieldCategory:  p.Category,
		fieldJournal:   p.Journal,
		fieldNotes:     p.Notes,
		fieldSummary:   p.Summary,
		fieldMethods:   p.Methods,
		fieldFullText:  p.FullText,
		fieldTags:      string(tags),
		fieldUpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if len(p.EmbeddingMain) > 0 {
		m[fieldEmbeddingMain] = string(domain.EncodeVector(p.EmbeddingMain))
	}
	if len(p.EmbeddingConcept) > 0 {
		m[fieldEmbeddingConcept] = string(domain.EncodeVector(p.EmbeddingConcept))
	}
	if len(p.EmbeddingGeneric) > 0 {
		m[fieldEmbeddingGeneric] = string(domain.EncodeVector(p.EmbeddingGeneric))
	}
	return m
}

// parseHashFields converts a flat hash map back into a Paper.
func parseHashFields(id string, m map[string]string) paper.Paper {
	p := paper.Paper{
		ID:       id,
		Title:    m[fieldTitle],
		Authors:  m[fieldAuthors],
		Subject:  m[fieldSubject],
		Abstract: m[fieldAbstract],
		Keywords: m[fieldKeywords],
		Year:     m[fieldYear],
		Category: m[fieldCategory],
		Journal:  m[fieldJournal],
		Notes:    m[fieldNotes],
		Summary:  m[fieldSummary],
		Methods:  m[fieldMethods],
		FullText: m[fieldFullText],
	}
	if raw := m[fieldTags]; raw != "" {
		var tags []string
		if json.Unmarshal([]byte(raw), &tags) == nil {
			p.Tags = tags
		}
	}
	p.EmbeddingMain = domain.DecodeVector([]byte(m[fieldEmbeddingMain]))
	p.EmbeddingConcept = domain.DecodeVector([]byte(m[fieldEmbeddingConcept]))
	p.EmbeddingGeneric = domain.DecodeVector([]byte(m[fieldEmbeddingGeneric]))
	if ts, err := time.Parse(time.RFC3339, m[fieldUpdatedAt]); err == nil {
		p.UpdatedAt = ts
	}
	return p
}

func embeddingField(kind paper.EmbeddingKind) string {
	switch kind {
	case paper.EmbeddingConcept:
		return fieldEmbeddingConcept
	case paper.EmbeddingGeneric:
		return fieldEmbeddingGeneric
	default:
		return fieldEmbeddingMain
	}
}
