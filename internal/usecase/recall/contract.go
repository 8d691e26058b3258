package recall

import (
	"context"

	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
)

// CandidateStore supplies pre-exclusion candidates and persists vectors
// generated during a search.
type CandidateStore interface {
	List(ctx context.Context, filters paper.Filters) ([]paper.Paper, error)
	SaveEmbedding(ctx context.Context, id string, kind paper.EmbeddingKind, vec []float32) error
}

// Provider is the model backend: text embedding plus chat-based expansion.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ExpandQuery(ctx context.Context, query, profile string) (domrecall.Expansion, error)
}
