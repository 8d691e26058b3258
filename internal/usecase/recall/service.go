// Package recall implements the hybrid recall engine: query expansion,
// lexical/tag/semantic scoring, Reciprocal Rank Fusion, and explainable
// result assembly.
package recall

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
	"github.com/refstack/paperdex/internal/metrics"
)

// Service runs recall searches. provider may be nil, in which case expansion
// and semantic scoring degrade to lexical/tag signals only.
type Service struct {
	papers   CandidateStore
	provider Provider
	logger   *zap.Logger
}

// New creates a recall service.
func New(papers CandidateStore, provider Provider, logger *zap.Logger) *Service {
	return &Service{papers: papers, provider: provider, logger: logger}
}

// Search answers a natural-language query against the library.
// After candidates are fetched, no provider failure aborts the search: each
// degradation narrows the contributing signals and the engine returns a
// best-effort ranked list.
func (s *Service) Search(ctx context.Context, req domrecall.Request) (domrecall.Response, error) {
	profile := req.Normalize()
	start := time.Now()
	defer func() {
		metrics.RecallSearchDuration.WithLabelValues(profile.Name).Observe(time.Since(start).Seconds())
	}()

	if req.Query == "" {
		return domrecall.EmptyResponse(profile.Name, req.Page, req.PageSize), nil
	}

	expansion := s.expand(ctx, req.Query, profile)
	queries := expansion.Queries(req.Query, profile.Rewrites)
	related := expansion.Related(profile.RelatedTerms)
	excludes := expansion.ExcludeTerms()

	rows, err := s.papers.List(ctx, req.Filters)
	if err != nil {
		return domrecall.Response{}, fmt.Errorf("fetch candidates: %w", err)
	}
	rows = dropExcluded(rows, excludes)

	semantic := req.SemanticEnabled && s.provider != nil
	if req.SemanticEnabled && s.provider == nil {
		s.logger.Warn("semantic scoring requested without a configured provider, using text signals only")
	}

	sc := newSearchContext()
	for _, q := range queries {
		terms := buildTerms(q, related)

		s.scoreLexical(sc, rows, terms, profile)
		s.scoreTags(sc, rows, terms, profile)

		if !semantic {
			continue
		}
		qMain, qConcept, err := s.queryVectors(ctx, q, related)
		if err != nil {
			s.logger.Warn("query embedding failed, skipping semantic signals for this rewrite",
				zap.String("query", q), zap.Error(err))
			continue
		}
		s.scoreSemantic(ctx, sc, rows, paper.EmbeddingMain, qMain, profile)
		s.scoreSemantic(ctx, sc, rows, paper.EmbeddingConcept, qConcept, profile)
	}

	return s.assemble(req, profile, rows, sc), nil
}

// expand asks the provider for query expansions. Any failure degrades to an
// empty expansion; it never fails the search.
func (s *Service) expand(ctx context.Context, query string, profile domrecall.Profile) domrecall.Expansion {
	if s.provider == nil {
		return domrecall.Expansion{}
	}
	expansion, err := s.provider.ExpandQuery(ctx, query, profile.Name)
	if err != nil {
		s.logger.Warn("query expansion failed, using original query only", zap.Error(err))
		return domrecall.Expansion{}
	}
	return expansion
}

func (s *Service) scoreLexical(sc *searchContext, rows []paper.Paper, terms []string, profile domrecall.Profile) {
	list := make([]ranked, 0, len(rows))
	for i := range rows {
		score, reason := lexicalScore(&rows[i], terms)
		if score > 0 {
			list = append(list, ranked{id: rows[i].ID, score: score, reason: reason})
		}
	}
	top := sortAndCut(list, profile.TopK)
	sc.applyRRF(top)
	sc.foldSignal(top, (*docMeta).setBM25)
	for _, item := range top {
		if item.reason != nil {
			sc.addReason(item.id, *item.reason)
		}
	}
}

func (s *Service) scoreTags(sc *searchContext, rows []paper.Paper, terms []string, profile domrecall.Profile) {
	list := make([]ranked, 0, len(rows))
	for i := range rows {
		score, match := tagScore(&rows[i], terms)
		if score > 0 {
			list = append(list, ranked{
				id:     rows[i].ID,
				score:  score,
				reason: &domrecall.Reason{Field: "tags", Match: match, Snippet: match},
			})
		}
	}
	top := sortAndCut(list, profile.TopK)
	sc.applyRRF(top)
	sc.foldSignal(top, (*docMeta).setTagBoost)
	for _, item := range top {
		sc.addReason(item.id, *item.reason)
	}
}

func (s *Service) scoreSemantic(
	ctx context.Context, sc *searchContext, rows []paper.Paper,
	kind paper.EmbeddingKind, queryVec []float32, profile domrecall.Profile,
) {
	list, err := s.semanticScores(ctx, sc, rows, kind, queryVec, profile)
	if err != nil {
		s.logger.Warn("semantic scan failed, skipping signal for this rewrite",
			zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	top := sortAndCut(list, profile.TopK)
	sc.applyRRF(top)
	if kind == paper.EmbeddingConcept {
		sc.foldSignal(top, (*docMeta).setCosConcept)
	} else {
		sc.foldSignal(top, (*docMeta).setCosMain)
	}
}

// assemble blends RRF totals with weighted signal maxima, drops non-positive
// scores, orders deterministically, and paginates.
func (s *Service) assemble(
	req domrecall.Request, profile domrecall.Profile, rows []paper.Paper, sc *searchContext,
) domrecall.Response {
	scored := make([]domrecall.Item, 0, len(rows))
	for i := range rows {
		m := sc.metaFor(rows[i].ID)
		breakdown := domrecall.Breakdown{
			RRF:        sc.rrf[rows[i].ID],
			BM25:       m.bm25,
			CosMain:    m.cosMain,
			CosConcept: m.cosConcept,
			TagBoost:   m.tagBoost,
		}
		score := breakdown.RRF +
			breakdown.BM25*profile.Weights.BM25 +
			breakdown.CosMain*profile.Weights.CosMain +
			breakdown.CosConcept*profile.Weights.CosConcept +
			breakdown.TagBoost*profile.Weights.TagBoost
		if score <= 0 {
			continue
		}
		reasons := m.reasons
		if len(reasons) > domrecall.MaxReasons {
			reasons = reasons[:domrecall.MaxReasons]
		}
		scored = append(scored, domrecall.Item{
			Paper:     rows[i],
			Score:     score,
			Breakdown: breakdown,
			Reasons:   reasons,
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})

	total := len(scored)
	offset := (req.Page - 1) * req.PageSize
	if offset > total {
		offset = total
	}
	end := offset + req.PageSize
	if end > total {
		end = total
	}
	items := scored[offset:end]

	candidates := make([]domrecall.Candidate, len(items))
	for i, item := range items {
		candidates[i] = domrecall.Candidate{
			PaperID:   item.ID,
			Score:     item.Score,
			Breakdown: item.Breakdown,
			Reasons:   item.Reasons,
		}
	}

	return domrecall.Response{
		Query:         req.Query,
		Mode:          domrecall.Mode,
		RecallProfile: profile.Name,
		Total:         total,
		Page:          req.Page,
		PageSize:      req.PageSize,
		Candidates:    candidates,
		Items:         items,
	}
}

// dropExcluded removes candidates whose searchable text contains any exclude
// term. Excluded papers can never appear in results, whatever their score.
func dropExcluded(rows []paper.Paper, excludes []string) []paper.Paper {
	if len(excludes) == 0 {
		return rows
	}
	kept := rows[:0:0]
	for i := range rows {
		haystack := rows[i].SearchableText()
		excluded := false
		for _, term := range excludes {
			if strings.Contains(haystack, term) {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, rows[i])
		}
	}
	return kept
}
