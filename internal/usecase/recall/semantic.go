package recall

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
	"github.com/refstack/paperdex/internal/metrics"
)

// queryVectors embeds one expanded query for both spaces. The concept query
// text folds in the related terms.
func (s *Service) queryVectors(ctx context.Context, q string, related []string) (main, concept []float32, err error) {
	main, err = s.provider.Embed(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("embed query: %w", err)
	}

	conceptText := q
	if joined := strings.TrimSpace(strings.Join(related, " ")); joined != "" {
		conceptText = q + "\n" + joined
	}
	concept, err = s.provider.Embed(ctx, conceptText)
	if err != nil {
		return nil, nil, fmt.Errorf("embed concept query: %w", err)
	}
	return main, concept, nil
}

// documentVector resolves a candidate's vector for one space: request cache
// first, then the persisted copy, then lazy generation while the request's
// budget lasts. A vector that was already persisted never consumes budget.
func (s *Service) documentVector(
	ctx context.Context, sc *searchContext, p *paper.Paper, kind paper.EmbeddingKind, maxGenerate int,
) ([]float32, error) {
	cache := sc.vectors[kind]
	if vec, ok := cache[p.ID]; ok {
		return vec, nil
	}
	if vec := p.Embedding(kind); len(vec) > 0 {
		cache[p.ID] = vec
		return vec, nil
	}
	if sc.generated[kind] >= maxGenerate {
		return nil, nil
	}

	text := p.EmbeddingText(kind)
	if text == "" {
		return nil, nil
	}

	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate %s embedding for %s: %w", kind, p.ID, err)
	}
	sc.generated[kind]++
	cache[p.ID] = vec
	metrics.EmbeddingsGeneratedTotal.WithLabelValues(string(kind)).Inc()

	// Fire-and-forget persistence: a write failure must not abort scoring.
	if err := s.papers.SaveEmbedding(ctx, p.ID, kind, vec); err != nil {
		s.logger.Warn("failed to persist generated embedding",
			zap.String("paper_id", p.ID),
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
	}
	return vec, nil
}

// semanticScores builds one space's ranked list for one expanded query:
// cosine similarity against the query vector, filtered by the effective
// minimum score. Documents without a vector (budget exhausted, no text) are
// absent from the list rather than zero-scored.
func (s *Service) semanticScores(
	ctx context.Context, sc *searchContext, rows []paper.Paper,
	kind paper.EmbeddingKind, queryVec []float32, profile domrecall.Profile,
) ([]ranked, error) {
	list := make([]ranked, 0, len(rows))
	for i := range rows {
		vec, err := s.documentVector(ctx, sc, &rows[i], kind, profile.MaxGenerate)
		if err != nil {
			return nil, err
		}
		if vec == nil {
			continue
		}
		score := domain.Cosine(queryVec, vec)
		if score >= profile.MinScore {
			list = append(list, ranked{id: rows[i].ID, score: score})
		}
	}
	return list, nil
}
