package recall

import "github.com/refstack/paperdex/internal/domain/paper"

// Mode identifies recall responses among the library's search modes.
const Mode = "ai_recall"

// MaxReasons caps the evidence entries returned per result.
const MaxReasons = 3

// Breakdown is the per-signal score decomposition of one result.
// All fields except RRF are normalized to [0,1].
type Breakdown struct {
	RRF        float64 `json:"rrf"`
	BM25       float64 `json:"bm25"`
	CosMain    float64 `json:"cos_main"`
	CosConcept float64 `json:"cos_concept"`
	TagBoost   float64 `json:"tag_boost"`
}

// Reason is one piece of match evidence, deduplicated by (Field, Match).
type Reason struct {
	Field   string `json:"field"`
	Match   string `json:"match"`
	Snippet string `json:"snippet"`
}

// Candidate is the scoring view of one result.
type Candidate struct {
	PaperID   string    `json:"paper_id"`
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	Reasons   []Reason  `json:"reasons"`
}

// Item is a full paper with its scoring attached.
type Item struct {
	paper.Paper
	Score     float64   `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
	Reasons   []Reason  `json:"reasons"`
}

// Response is one page of recall results.
type Response struct {
	Query         string      `json:"query"`
	Mode          string      `json:"mode"`
	RecallProfile string      `json:"recall_profile"`
	Total         int         `json:"total"`
	Page          int         `json:"page"`
	PageSize      int         `json:"pageSize"`
	Candidates    []Candidate `json:"candidates"`
	Items         []Item      `json:"items"`
}

// EmptyResponse builds the response for a blank query.
func EmptyResponse(profile string, page, pageSize int) Response {
	return Response{
		Query:         "",
		Mode:          Mode,
		RecallProfile: profile,
		Total:         0,
		Page:          page,
		PageSize:      pageSize,
		Candidates:    []Candidate{},
		Items:         []Item{},
	}
}
