package papers

import (
	"context"

	"github.com/refstack/paperdex/internal/domain/paper"
)

// Repository defines the storage contract for papers.
type Repository interface {
	Upsert(ctx context.Context, p *paper.Paper) (created bool, err error)
	Get(ctx context.Context, id string) (paper.Paper, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filters paper.Filters) ([]paper.Paper, error)
	SaveEmbedding(ctx context.Context, id string, kind paper.EmbeddingKind, vec []float32) error
}

// Provider vectorizes text into embeddings.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
