package chi

import (
	"net/http"
	"strconv"

	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
	papersuc "github.com/refstack/paperdex/internal/usecase/papers"
)

// Error codes returned in JSON error bodies.
const (
	codeBadRequest            = "bad_request"
	codeUnauthorized          = "unauthorized"
	codePaperNotFound         = "paper_not_found"
	codeInvalidDimension      = "invalid_dimension"
	codeProviderNotConfigured = "provider_not_configured"
	codeProviderError         = "provider_error"
	codeInternalError         = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// recallSearchRequest is the POST /v1/search/recall body. semantic_enabled
// and profile default to the server's configured values when omitted.
type recallSearchRequest struct {
	Query           string        `json:"query"`
	Profile         string        `json:"profile"`
	SemanticEnabled *bool         `json:"semantic_enabled"`
	MinScore        *float64      `json:"min_score"`
	Page            int           `json:"page"`
	PageSize        int           `json:"pageSize"`
	Filters         paper.Filters `json:"filters"`
}

func (req recallSearchRequest) toDomain(defaultProfile string, defaultSemantic bool, defaultPageSize int) domrecall.Request {
	profile := req.Profile
	if profile == "" {
		profile = defaultProfile
	}
	semantic := defaultSemantic
	if req.SemanticEnabled != nil {
		semantic = *req.SemanticEnabled
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return domrecall.Request{
		Query:            req.Query,
		Filters:          req.Filters,
		Profile:          profile,
		SemanticEnabled:  semantic,
		MinScoreOverride: req.MinScore,
		Page:             req.Page,
		PageSize:         pageSize,
	}
}

type upsertPaperResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

type listPapersResponse struct {
	Items []paper.Paper `json:"items"`
	Total int           `json:"total"`
}

// semanticListRequest is the POST /v1/papers/search body.
type semanticListRequest struct {
	Query           string        `json:"query"`
	Filters         paper.Filters `json:"filters"`
	MinScore        float64       `json:"min_score"`
	GenerateMissing bool          `json:"generate_missing"`
	MaxGenerate     int           `json:"max_generate"`
	SortBy          string        `json:"sort_by"`
}

type semanticListResponse struct {
	Items []papersuc.Scored `json:"items"`
	Total int               `json:"total"`
}

type addTagsRequest struct {
	IDs  []string `json:"ids"`
	Tags string   `json:"tags"`
}

type addTagsResponse struct {
	Updated int `json:"updated"`
}

type statsResponse struct {
	Dimension string                `json:"dimension"`
	Items     []papersuc.StatBucket `json:"items"`
}

// filtersFromQuery reads the structured list filters from URL parameters.
func filtersFromQuery(r *http.Request) paper.Filters {
	q := r.URL.Query()
	yearFrom, _ := strconv.Atoi(q.Get("year_from"))
	yearTo, _ := strconv.Atoi(q.Get("year_to"))
	return paper.Filters{
		Search:   q.Get("search"),
		Year:     q.Get("year"),
		YearFrom: yearFrom,
		YearTo:   yearTo,
		Subject:  q.Get("subject"),
		Category: q.Get("category"),
		Journal:  q.Get("journal"),
		Tag:      q.Get("tag"),
	}
}
