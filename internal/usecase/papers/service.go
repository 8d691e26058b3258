// Package papers handles library CRUD, the filtered list views (structured,
// sorted, and single-vector semantic), per-dimension statistics, and bulk
// tagging.
package papers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/paper"
	"github.com/refstack/paperdex/internal/metrics"
)

// Sort orders accepted by List and SemanticSearch. Unknown values fall back
// to the method's default.
const (
	SortScoreDesc   = "score_desc"
	SortYearDesc    = "year_desc"
	SortYearAsc     = "year_asc"
	SortTitleAsc    = "title_asc"
	SortUpdatedDesc = "updated_desc"
)

// DefaultMaxGenerate caps lazy generic-embedding generation per semantic
// list call when the request supplies no bound.
const DefaultMaxGenerate = 40

// Stats dimensions.
const (
	DimYear     = "year"
	DimAuthors  = "authors"
	DimSubject  = "subject"
	DimTags     = "tags"
	DimCategory = "category"
	DimJournal  = "journal"
)

// Labels for papers with a blank value in the grouped dimension.
const (
	labelUnknown  = "unknown"
	labelUntagged = "untagged"
)

// SemanticRequest is a filtered list search scored in the generic embedding
// space.
type SemanticRequest struct {
	Query           string
	Filters         paper.Filters
	MinScore        float64
	GenerateMissing bool
	MaxGenerate     int
	SortBy          string
}

// Scored is a paper with its generic-space similarity attached.
type Scored struct {
	paper.Paper
	Score float64 `json:"score"`
}

// StatBucket is one row of a per-dimension count.
type StatBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Service handles paper CRUD, list views, stats, and bulk tagging.
// provider may be nil; then SemanticSearch fails with
// domain.ErrProviderNotConfigured and everything else works.
type Service struct {
	repo     Repository
	provider Provider
	logger   *zap.Logger
}

// New creates a papers service.
func New(repo Repository, provider Provider, logger *zap.Logger) *Service {
	return &Service{repo: repo, provider: provider, logger: logger}
}

// Upsert creates or updates a paper. Returns true when created.
func (s *Service) Upsert(ctx context.Context, p *paper.Paper) (bool, error) {
	created, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return false, fmt.Errorf("upsert paper: %w", err)
	}
	return created, nil
}

// Get retrieves a paper by id.
func (s *Service) Get(ctx context.Context, id string) (paper.Paper, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return paper.Paper{}, fmt.Errorf("get paper: %w", err)
	}
	return p, nil
}

// Delete removes a paper.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete paper: %w", err)
	}
	return nil
}

// List returns papers matching the structured filters, ordered by sortBy
// (most recently updated first by default).
func (s *Service) List(ctx context.Context, filters paper.Filters, sortBy string) ([]paper.Paper, error) {
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	sortPapers(rows, sortBy)
	return rows, nil
}

// SemanticSearch runs the single-vector list search: structured filters
// first, then cosine similarity in the generic space against the embedded
// query. Papers without a generic vector score zero unless GenerateMissing
// allows lazy generation within the MaxGenerate budget.
func (s *Service) SemanticSearch(ctx context.Context, req SemanticRequest) ([]Scored, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("semantic list search: %w", domain.ErrProviderNotConfigured)
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return []Scored{}, nil
	}
	maxGenerate := req.MaxGenerate
	if maxGenerate <= 0 {
		maxGenerate = DefaultMaxGenerate
	}

	queryVec, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	rows, err := s.repo.List(ctx, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}

	generated := 0
	scored := make([]Scored, 0, len(rows))
	for i := range rows {
		vec := rows[i].EmbeddingGeneric
		if len(vec) == 0 && req.GenerateMissing && generated < maxGenerate {
			vec, err = s.generateGeneric(ctx, &rows[i])
			if err != nil {
				return nil, err
			}
			if len(vec) > 0 {
				generated++
			}
		}
		score := domain.Cosine(queryVec, vec)
		if score >= req.MinScore {
			scored = append(scored, Scored{Paper: rows[i], Score: score})
		}
	}

	sortScored(scored, req.SortBy)
	return scored, nil
}

// generateGeneric embeds a paper's generic text and persists the vector.
// Papers without usable text yield nil without error.
func (s *Service) generateGeneric(ctx context.Context, p *paper.Paper) ([]float32, error) {
	text := p.GenericEmbeddingText()
	if text == "" {
		return nil, nil
	}
	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate generic embedding for %s: %w", p.ID, err)
	}
	p.EmbeddingGeneric = vec
	metrics.EmbeddingsGeneratedTotal.WithLabelValues(string(paper.EmbeddingGeneric)).Inc()

	if err := s.repo.SaveEmbedding(ctx, p.ID, paper.EmbeddingGeneric, vec); err != nil {
		s.logger.Warn("failed to persist generic embedding",
			zap.String("paper_id", p.ID), zap.Error(err))
	}
	return vec, nil
}

// Stats counts papers grouped by one dimension, largest bucket first.
// Multi-valued dimensions (authors, tags) count each value; papers with a
// blank value land in the "unknown" bucket ("untagged" for tags).
func (s *Service) Stats(ctx context.Context, dimension string) ([]StatBucket, error) {
	switch dimension {
	case DimYear, DimAuthors, DimSubject, DimTags, DimCategory, DimJournal:
	default:
		return nil, fmt.Errorf("stats dimension %q: %w", dimension, domain.ErrInvalidDimension)
	}

	rows, err := s.repo.List(ctx, paper.Filters{})
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}

	counts := make(map[string]int)
	for i := range rows {
		p := &rows[i]
		switch dimension {
		case DimYear:
			bump(counts, p.Year, labelUnknown)
		case DimAuthors:
			bumpAll(counts, splitList(p.Authors), labelUnknown)
		case DimSubject:
			bump(counts, p.Subject, labelUnknown)
		case DimTags:
			bumpAll(counts, p.Tags, labelUntagged)
		case DimCategory:
			bump(counts, p.Category, labelUnknown)
		case DimJournal:
			bump(counts, p.Journal, labelUnknown)
		}
	}

	buckets := make([]StatBucket, 0, len(counts))
	for label, count := range counts {
		buckets = append(buckets, StatBucket{Label: label, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Label < buckets[j].Label
	})
	return buckets, nil
}

// AddTags merges the comma-separated tags into every listed paper's tag set.
// Missing ids are skipped. Returns the number of papers updated.
func (s *Service) AddTags(ctx context.Context, ids []string, tags string) (int, error) {
	var added []string
	for _, tag := range strings.Split(tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			added = append(added, tag)
		}
	}
	if len(added) == 0 {
		return 0, nil
	}

	updated := 0
	for _, id := range ids {
		p, err := s.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrPaperNotFound) {
				continue
			}
			return updated, fmt.Errorf("get paper %s: %w", id, err)
		}
		p.Tags = paper.NormalizeTags(append(p.Tags, added...))
		if _, err := s.repo.Upsert(ctx, &p); err != nil {
			return updated, fmt.Errorf("tag paper %s: %w", id, err)
		}
		updated++
	}
	return updated, nil
}

func bump(counts map[string]int, value, blankLabel string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = blankLabel
	}
	counts[value]++
}

func bumpAll(counts map[string]int, values []string, blankLabel string) {
	seen := 0
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			counts[v]++
			seen++
		}
	}
	if seen == 0 {
		counts[blankLabel]++
	}
}

// splitList breaks a free-form author list on ASCII and CJK separators.
func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '，' || r == '；'
	})
}

func sortPapers(rows []paper.Paper, sortBy string) {
	sort.SliceStable(rows, func(i, j int) bool {
		switch sortBy {
		case SortYearDesc:
			return yearNum(rows[i].Year) > yearNum(rows[j].Year)
		case SortYearAsc:
			return yearNum(rows[i].Year) < yearNum(rows[j].Year)
		case SortTitleAsc:
			return rows[i].Title < rows[j].Title
		default:
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		}
	})
}

func sortScored(rows []Scored, sortBy string) {
	sort.SliceStable(rows, func(i, j int) bool {
		switch sortBy {
		case SortYearDesc:
			return yearNum(rows[i].Year) > yearNum(rows[j].Year)
		case SortYearAsc:
			return yearNum(rows[i].Year) < yearNum(rows[j].Year)
		case SortTitleAsc:
			return rows[i].Title < rows[j].Title
		case SortUpdatedDesc:
			return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
		default:
			if rows[i].Score != rows[j].Score {
				return rows[i].Score > rows[j].Score
			}
			return rows[i].ID < rows[j].ID
		}
	})
}

func yearNum(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
