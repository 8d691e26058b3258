package papers

import (
	"context"

	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/paper"
)

// fakeRepo implements Repository over a slice, preserving insertion order so
// tests control the pre-sort ordering.
type fakeRepo struct {
	rows    []paper.Paper
	listErr error
	saved   []string // "<id>/<kind>"
}

func (f *fakeRepo) Upsert(_ context.Context, p *paper.Paper) (bool, error) {
	for i := range f.rows {
		if f.rows[i].ID == p.ID {
			f.rows[i] = *p
			return false, nil
		}
	}
	f.rows = append(f.rows, *p)
	return true, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (paper.Paper, error) {
	for i := range f.rows {
		if f.rows[i].ID == id {
			return f.rows[i], nil
		}
	}
	return paper.Paper{}, domain.ErrPaperNotFound
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeRepo) List(_ context.Context, filters paper.Filters) ([]paper.Paper, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]paper.Paper, 0, len(f.rows))
	for i := range f.rows {
		if filters.Matches(&f.rows[i]) {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeRepo) SaveEmbedding(_ context.Context, id string, kind paper.EmbeddingKind, vec []float32) error {
	f.saved = append(f.saved, id+"/"+string(kind))
	for i := range f.rows {
		if f.rows[i].ID == id && kind == paper.EmbeddingGeneric {
			f.rows[i].EmbeddingGeneric = vec
		}
	}
	return nil
}

// fakeProvider returns a fixed vector unless embedFn overrides it.
type fakeProvider struct {
	embedFn    func(text string) []float32
	embedErr   error
	embedCalls []string
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls = append(f.embedCalls, text)
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if f.embedFn != nil {
		return f.embedFn(text), nil
	}
	return []float32{1, 0}, nil
}
