package recall

import (
	"math"
	"sort"

	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
)

// rrfK is the Reciprocal Rank Fusion constant (standard value from Cormack et al. 2009).
const rrfK = 60

// ranked is one entry of a per-signal ranked list.
type ranked struct {
	id     string
	score  float64
	reason *domrecall.Reason
}

// docMeta tracks the running per-signal normalized maxima and evidence for
// one candidate across all expanded queries.
type docMeta struct {
	bm25       float64
	cosMain    float64
	cosConcept float64
	tagBoost   float64
	reasons    []domrecall.Reason
}

// searchContext carries all mutable state of one search invocation: the RRF
// accumulator, per-document signal maxima, the per-request embedding caches,
// and the generation counters. Each embedding space has its own counter
// capped at MaxGenerate, so a cold corpus cannot starve the concept space by
// spending the whole budget on main-space vectors. It is never shared
// between requests.
type searchContext struct {
	rrf       map[string]float64
	meta      map[string]*docMeta
	vectors   map[paper.EmbeddingKind]map[string][]float32
	generated map[paper.EmbeddingKind]int
}

func newSearchContext() *searchContext {
	return &searchContext{
		rrf:  make(map[string]float64),
		meta: make(map[string]*docMeta),
		vectors: map[paper.EmbeddingKind]map[string][]float32{
			paper.EmbeddingMain:    make(map[string][]float32),
			paper.EmbeddingConcept: make(map[string][]float32),
		},
		generated: make(map[paper.EmbeddingKind]int),
	}
}

func (sc *searchContext) metaFor(id string) *docMeta {
	m, ok := sc.meta[id]
	if !ok {
		m = &docMeta{}
		sc.meta[id] = m
	}
	return m
}

// applyRRF adds 1/(rrfK+rank) per entry, rank starting at 1.
func (sc *searchContext) applyRRF(top []ranked) {
	for i, item := range top {
		sc.rrf[item.id] += 1.0 / float64(rrfK+i+1)
	}
}

// addReason records evidence, deduplicated by (field, match).
func (sc *searchContext) addReason(id string, reason domrecall.Reason) {
	if reason.Match == "" {
		return
	}
	m := sc.metaFor(id)
	for _, existing := range m.reasons {
		if existing.Field == reason.Field && existing.Match == reason.Match {
			return
		}
	}
	m.reasons = append(m.reasons, reason)
}

// foldSignal normalizes one query's ranked list by its own top score and
// keeps each document's running maximum. Per-query normalization followed by
// a max across queries is intentional: it favors documents that rank highly
// under at least one rewrite.
func (sc *searchContext) foldSignal(top []ranked, assign func(m *docMeta, norm float64)) {
	if len(top) == 0 {
		return
	}
	max := top[0].score
	if max == 0 {
		max = 1
	}
	for _, item := range top {
		assign(sc.metaFor(item.id), item.score/max)
	}
}

// sortAndCut orders a signal list by score descending (ties by id ascending
// for determinism) and keeps the top k.
func sortAndCut(list []ranked, k int) []ranked {
	sort.Slice(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].id < list[j].id
	})
	if len(list) > k {
		list = list[:k]
	}
	return list
}

func (m *docMeta) setBM25(norm float64)       { m.bm25 = math.Max(m.bm25, norm) }
func (m *docMeta) setCosMain(norm float64)    { m.cosMain = math.Max(m.cosMain, norm) }
func (m *docMeta) setCosConcept(norm float64) { m.cosConcept = math.Max(m.cosConcept, norm) }
func (m *docMeta) setTagBoost(norm float64)   { m.tagBoost = math.Max(m.tagBoost, norm) }
