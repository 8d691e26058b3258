// Package chi exposes the paper library and recall search over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/paper"
	domrecall "github.com/refstack/paperdex/internal/domain/recall"
	"github.com/refstack/paperdex/internal/metrics"
	healthuc "github.com/refstack/paperdex/internal/usecase/health"
	papersuc "github.com/refstack/paperdex/internal/usecase/papers"
	recalluc "github.com/refstack/paperdex/internal/usecase/recall"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server routes HTTP requests to the usecase services.
type Server struct {
	papers          *papersuc.Service
	recall          *recalluc.Service
	health          *healthuc.Service
	logger          *zap.Logger
	defaultProfile  string
	defaultSemantic bool
	defaultPageSize int
	errorHandlers   []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	papers *papersuc.Service,
	recall *recalluc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		papers:          papers,
		recall:          recall,
		health:          health,
		logger:          logger,
		defaultProfile:  domrecall.ProfileBalanced,
		defaultPageSize: domrecall.DefaultPageSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrPaperNotFound, http.StatusNotFound, codePaperNotFound),
		sentinelHandler(domain.ErrInvalidDimension, http.StatusBadRequest, codeInvalidDimension),
		sentinelHandler(domain.ErrProviderNotConfigured, http.StatusServiceUnavailable, codeProviderNotConfigured),
		sentinelHandler(domain.ErrProviderError, http.StatusBadGateway, codeProviderError),
	}
	return s
}

// WithSearchDefaults configures the profile, semantic toggle and page size
// applied when a recall request leaves them unset.
func (s *Server) WithSearchDefaults(profile string, semantic bool, pageSize int) *Server {
	if profile != "" {
		s.defaultProfile = profile
	}
	s.defaultSemantic = semantic
	if pageSize > 0 {
		s.defaultPageSize = pageSize
	}
	return s
}

// Router builds the routing table. apiKeys enables Bearer auth on /v1 when
// non-empty.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search/recall", s.handleRecallSearch)
		r.Route("/papers", func(r chi.Router) {
			r.Get("/", s.handleListPapers)
			r.Post("/", s.handleUpsertPaper)
			r.Post("/search", s.handleSemanticList)
			r.Post("/tags", s.handleAddTags)
			r.Get("/{id}", s.handleGetPaper)
			r.Delete("/{id}", s.handleDeletePaper)
		})
		r.Get("/stats/{dimension}", s.handleStats)
	})
	return r
}

// handleRecallSearch handles POST /v1/search/recall.
func (s *Server) handleRecallSearch(w http.ResponseWriter, r *http.Request) {
	var req recallSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := s.recall.Search(r.Context(), req.toDomain(s.defaultProfile, s.defaultSemantic, s.defaultPageSize))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListPapers handles GET /v1/papers.
func (s *Server) handleListPapers(w http.ResponseWriter, r *http.Request) {
	rows, err := s.papers.List(r.Context(), filtersFromQuery(r), r.URL.Query().Get("sort_by"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listPapersResponse{Items: rows, Total: len(rows)})
}

// handleUpsertPaper handles POST /v1/papers.
func (s *Server) handleUpsertPaper(w http.ResponseWriter, r *http.Request) {
	var p paper.Paper
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if p.Title == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "title is required")
		return
	}

	created, err := s.papers.Upsert(r.Context(), &p)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, upsertPaperResponse{ID: p.ID, Created: created})
}

// handleGetPaper handles GET /v1/papers/{id}.
func (s *Server) handleGetPaper(w http.ResponseWriter, r *http.Request) {
	p, err := s.papers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleDeletePaper handles DELETE /v1/papers/{id}.
func (s *Server) handleDeletePaper(w http.ResponseWriter, r *http.Request) {
	if err := s.papers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSemanticList handles POST /v1/papers/search.
func (s *Server) handleSemanticList(w http.ResponseWriter, r *http.Request) {
	var req semanticListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "query is required")
		return
	}

	items, err := s.papers.SemanticSearch(r.Context(), papersuc.SemanticRequest{
		Query:           req.Query,
		Filters:         req.Filters,
		MinScore:        req.MinScore,
		GenerateMissing: req.GenerateMissing,
		MaxGenerate:     req.MaxGenerate,
		SortBy:          req.SortBy,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, semanticListResponse{Items: items, Total: len(items)})
}

// handleStats handles GET /v1/stats/{dimension}.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	dimension := chi.URLParam(r, "dimension")
	buckets, err := s.papers.Stats(r.Context(), dimension)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Dimension: dimension, Items: buckets})
}

// handleAddTags handles POST /v1/papers/tags.
func (s *Server) handleAddTags(w http.ResponseWriter, r *http.Request) {
	var req addTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.IDs) == 0 {
		writeError(w, http.StatusBadRequest, codeBadRequest, "ids are required")
		return
	}

	updated, err := s.papers.AddTags(r.Context(), req.IDs, req.Tags)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, addTagsResponse{Updated: updated})
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// handleMetrics handles GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrPaperNotFound,
		domain.ErrInvalidDimension,
		domain.ErrProviderNotConfigured,
		domain.ErrProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
