package recall

import (
	"context"

	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
)

// fakeStore implements CandidateStore over a fixed slice. SaveEmbedding
// writes back into the slice so persisted vectors survive across searches.
type fakeStore struct {
	rows    []paper.Paper
	listErr error
	saved   []string // "<id>/<kind>" in persistence order
}

func (f *fakeStore) List(_ context.Context, filters paper.Filters) ([]paper.Paper, error) {
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

func (f *fakeStore) SaveEmbedding(_ context.Context, id string, kind paper.EmbeddingKind, vec []float32) error {
	f.saved = append(f.saved, id+"/"+string(kind))
	for i := range f.rows {
		if f.rows[i].ID == id {
			if kind == paper.EmbeddingConcept {
				f.rows[i].EmbeddingConcept = vec
			} else {
				f.rows[i].EmbeddingMain = vec
			}
		}
	}
	return nil
}

// fakeProvider is a deterministic provider double.
type fakeProvider struct {
	expansion  domrecall.Expansion
	expandErr  error
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

func (f *fakeProvider) ExpandQuery(_ context.Context, _, _ string) (domrecall.Expansion, error) {
	if f.expandErr != nil {
		return domrecall.Expansion{}, f.expandErr
	}
	return f.expansion, nil
}
