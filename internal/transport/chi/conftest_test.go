package chi

import (
	"context"
	"strconv"

	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
)

// memRepo backs both the papers repository and the recall candidate store in
// handler tests.
type memRepo struct {
	rows   []paper.Paper
	nextID int
}

func (m *memRepo) Upsert(_ context.Context, p *paper.Paper) (bool, error) {
	if p.ID == "" {
		m.nextID++
		p.ID = "p" + strconv.Itoa(m.nextID)
	}
	for i := range m.rows {
		if m.rows[i].ID == p.ID {
			m.rows[i] = *p
			return false, nil
		}
	}
	m.rows = append(m.rows, *p)
	return true, nil
}

func (m *memRepo) Get(_ context.Context, id string) (paper.Paper, error) {
	for i := range m.rows {
		if m.rows[i].ID == id {
			return m.rows[i], nil
		}
	}
	return paper.Paper{}, domain.ErrPaperNotFound
}

func (m *memRepo) Delete(_ context.Context, id string) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memRepo) List(_ context.Context, filters paper.Filters) ([]paper.Paper, error) {
	out := make([]paper.Paper, 0, len(m.rows))
	for i := range m.rows {
		if filters.Matches(&m.rows[i]) {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func (m *memRepo) SaveEmbedding(_ context.Context, id string, kind paper.EmbeddingKind, vec []float32) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			switch kind {
			case paper.EmbeddingConcept:
				m.rows[i].EmbeddingConcept = vec
			case paper.EmbeddingGeneric:
				m.rows[i].EmbeddingGeneric = vec
			default:
				m.rows[i].EmbeddingMain = vec
			}
		}
	}
	return nil
}

// stubProvider satisfies the papers and recall provider contracts.
type stubProvider struct{}

func (stubProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (stubProvider) ExpandQuery(_ context.Context, _, _ string) (domrecall.Expansion, error) {
	return domrecall.Expansion{}, nil
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(_ context.Context) error { return p.err }
