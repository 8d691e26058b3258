package papers

import (
	"context"
	"errors"
	"testing"

	"github.com/refstack/paperdex/internal/db"
	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/paper"
)

func TestUpsertAssignsIDAndNormalizesTags(t *testing.T) {
	repo := New(newMemStore(), "test:")
	p := paper.Paper{Title: "T", Tags: []string{"a", "a", " b "}}

	created, err := repo.Upsert(context.Background(), &p)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !created {
		t.Error("expected created=true for blank id")
	}
	if p.ID == "" {
		t.Fatal("expected assigned id")
	}
	if len(p.Tags) != 2 || p.Tags[0] != "a" || p.Tags[1] != "b" {
		t.Errorf("tags = %v, want [a b]", p.Tags)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be stamped")
	}
}

func TestGetRoundTrip(t *testing.T) {
	repo := New(newMemStore(), "test:")
	in := paper.Paper{
		ID:               "p1",
		Title:            "Deep Learning for X",
		Abstract:         "abstract",
		Keywords:         "deep, learning",
		Year:             "2021",
		Tags:             []string{"ml"},
		EmbeddingMain:    []float32{0.5, -0.25},
		EmbeddingConcept: []float32{1, 2, 3},
	}
	if _, err := repo.Upsert(context.Background(), &in); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := repo.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != in.Title || got.Year != in.Year {
		t.Errorf("got %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "ml" {
		t.Errorf("tags = %v", got.Tags)
	}
	if len(got.EmbeddingMain) != 2 || got.EmbeddingMain[1] != -0.25 {
		t.Errorf("main embedding = %v", got.EmbeddingMain)
	}
	if len(got.EmbeddingConcept) != 3 {
		t.Errorf("concept embedding = %v", got.EmbeddingConcept)
	}
}

func TestGetMissing(t *testing.T) {
	repo := New(newMemStore(), "test:")
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrPaperNotFound) {
		t.Errorf("err = %v, want ErrPaperNotFound", err)
	}
}

// wrappedNotFoundStore returns the driver's wrapped form of a missing key.
type wrappedNotFoundStore struct {
	*memStore
}

func (s *wrappedNotFoundStore) HGetAll(context.Context, string) (map[string]string, error) {
	return nil, &db.Error{Op: db.OpHGetAll, Err: db.ErrKeyNotFound}
}

func TestGetMissingWrappedDriverError(t *testing.T) {
	repo := New(&wrappedNotFoundStore{newMemStore()}, "test:")
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrPaperNotFound) {
		t.Errorf("err = %v, want ErrPaperNotFound", err)
	}
}

func TestDeleteRemovesFromList(t *testing.T) {
	repo := New(newMemStore(), "test:")
	p := paper.Paper{ID: "p1", Title: "T"}
	if _, err := repo.Upsert(context.Background(), &p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := repo.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	rows, err := repo.List(context.Background(), paper.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("List after delete = %v", rows)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	repo := New(newMemStore(), "test:")
	seed := []paper.Paper{
		{ID: "b", Title: "Graph Networks", Year: "2020", Tags: []string{"graphs"}},
		{ID: "a", Title: "Deep Learning", Year: "2018", Tags: []string{"ml"}},
		{ID: "c", Title: "Quantum Computing", Year: "2022"},
	}
	for i := range seed {
		if _, err := repo.Upsert(context.Background(), &seed[i]); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	rows, err := repo.List(context.Background(), paper.Filters{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 3 || rows[0].ID != "a" || rows[1].ID != "b" || rows[2].ID != "c" {
		t.Fatalf("unexpected order: %v", ids(rows))
	}

	rows, err = repo.List(context.Background(), paper.Filters{YearFrom: 2019, YearTo: 2021})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "b" {
		t.Errorf("year range filter = %v", ids(rows))
	}

	rows, err = repo.List(context.Background(), paper.Filters{Tag: "ml"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "a" {
		t.Errorf("tag filter = %v", ids(rows))
	}
}

func TestSaveEmbeddingPersists(t *testing.T) {
	repo := New(newMemStore(), "test:")
	p := paper.Paper{ID: "p1", Title: "T"}
	if _, err := repo.Upsert(context.Background(), &p); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	vec := []float32{1, 2, 3}
	if err := repo.SaveEmbedding(context.Background(), "p1", paper.EmbeddingConcept, vec); err != nil {
		t.Fatalf("SaveEmbedding: %v", err)
	}

	got, err := repo.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.EmbeddingConcept) != 3 {
		t.Errorf("concept embedding = %v", got.EmbeddingConcept)
	}
	if got.EmbeddingMain != nil {
		t.Errorf("main embedding should stay nil, got %v", got.EmbeddingMain)
	}
}

func ids(rows []paper.Paper) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}
