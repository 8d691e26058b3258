// Package papers stores library entries as hashes plus an id index set.
package papers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/refstack/paperdex/internal/db"
	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/paper"
)

// store is the consumer interface for the paper repository (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements the candidate store consumed by the recall engine.
type Repo struct {
	store  store
	prefix string
}

// New creates a paper repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

func (r *Repo) paperKey(id string) string { return r.prefix + "paper:" + id }
func (r *Repo) indexKey() string          { return r.prefix + "papers" }

// Upsert creates or updates a paper. A blank id gets a fresh UUID.
// Tags are deduplicated and the update timestamp is stamped on write.
// Returns true when the paper was created.
func (r *Repo) Upsert(ctx context.Context, p *paper.Paper) (bool, error) {
	created := false
	if p.ID == "" {
		p.ID = uuid.NewString()
		created = true
	}
	p.Tags = paper.NormalizeTags(p.Tags)
	p.UpdatedAt = time.Now().UTC()

	if err := r.store.HSet(ctx, r.paperKey(p.ID), buildHashFields(p)); err != nil {
		return false, fmt.Errorf("hset %s: %w", r.paperKey(p.ID), err)
	}
	if err := r.store.SAdd(ctx, r.indexKey(), p.ID); err != nil {
		return false, fmt.Errorf("sadd %s: %w", r.indexKey(), err)
	}
	return created, nil
}

// Get returns a paper by id.
func (r *Repo) Get(ctx context.Context, id string) (paper.Paper, error) {
	m, err := r.store.HGetAll(ctx, r.paperKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return paper.Paper{}, domain.ErrPaperNotFound
		}
		return paper.Paper{}, fmt.Errorf("hgetall %s: %w", r.paperKey(id), err)
	}
	return parseHashFields(id, m), nil
}

// Delete removes a paper and its index entry.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, r.paperKey(id)); err != nil {
		return fmt.Errorf("del %s: %w", r.paperKey(id), err)
	}
	if err := r.store.SRem(ctx, r.indexKey(), id); err != nil {
		return fmt.Errorf("srem %s: %w", r.indexKey(), err)
	}
	return nil
}

// List returns all papers passing the filters, ordered by id for determinism.
func (r *Repo) List(ctx context.Context, filters paper.Filters) ([]paper.Paper, error) {
	ids, err := r.store.SMembers(ctx, r.indexKey())
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", r.indexKey(), err)
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.paperKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi: %w", err)
	}

	out := make([]paper.Paper, 0, len(hashes))
	for i, m := range hashes {
		if len(m) == 0 {
			// Index entry without a hash: deleted concurrently, skip.
			continue
		}
		p := parseHashFields(ids[i], m)
		if filters.Matches(&p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// SaveEmbedding persists one freshly generated vector. This is a single
// independent write per paper, not batched with the rest of a search.
func (r *Repo) SaveEmbedding(ctx context.Context, id string, kind paper.EmbeddingKind, vec []float32) error {
	fields := map[string]string{
		embeddingField(kind): string(domain.EncodeVector(vec)),
		fieldUpdatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if err := r.store.HSet(ctx, r.paperKey(id), fields); err != nil {
		return fmt.Errorf("hset %s: %w", r.paperKey(id), err)
	}
	return nil
}
