// Package openai adapts an OpenAI-compatible API to the engine's provider
// contracts: text embedding and chat-based query expansion.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/refstack/paperdex/internal/domain"
	"github.com/refstack/paperdex/internal/domain/recall"
	"github.com/refstack/paperdex/internal/metrics"
)

// Provider calls an OpenAI-compatible endpoint for embeddings and expansions.
type Provider struct {
	client     *openai.Client
	embedModel openai.EmbeddingModel
	chatModel  string
	dimensions int
	logger     *zap.Logger
}

// Config holds the provider settings. Endpoint, models, and key are explicit
// construction inputs, never read from ambient state.
type Config struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
	ChatModel  string
	Dimensions int
	Logger     *zap.Logger
}

// New creates a provider for an OpenAI-compatible API.
func New(cfg *Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Provider{
		client:     openai.NewClientWithConfig(clientCfg),
		embedModel: openai.EmbeddingModel(cfg.EmbedModel),
		chatModel:  cfg.ChatModel,
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}
}

// Embed vectorizes one text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          p.embedModel,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	start := time.Now()
	resp, err := p.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(p.embedModel), "error").Inc()
		return nil, parseAPIError("embedding", err)
	}
	if len(resp.Data) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(string(p.embedModel), "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(string(p.embedModel), "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(string(p.embedModel)).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues(string(p.embedModel)).Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Data[0].Embedding, nil
}

const expandSystemPrompt = "You are a query expansion assistant. Return JSON only."

// ExpandQuery asks the chat model for recall expansions of the query.
// The raw model output is parsed leniently; the engine treats any error here
// as a degradation, never a search failure.
func (p *Provider) ExpandQuery(ctx context.Context, query, profile string) (recall.Expansion, error) {
	user := fmt.Sprintf(`Generate multi-query expansions for recall. Output JSON only with keys: rewrites, related_terms, excludes.

Rules:
- rewrites: 3-6 paraphrases, include abbreviations and synonyms when relevant.
- related_terms: 6-20 related concepts, methods, synonyms.
- excludes: terms the user wants to exclude if mentioned.

User query:
%s

Recall profile: %s
`, query, profile)

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: expandSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.2,
	})
	if err != nil {
		metrics.ExpansionsTotal.WithLabelValues("error").Inc()
		return recall.Expansion{}, parseAPIError("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		metrics.ExpansionsTotal.WithLabelValues("error").Inc()
		return recall.Expansion{}, fmt.Errorf("empty chat response: %w", domain.ErrProviderError)
	}

	expansion, err := parseExpansion(resp.Choices[0].Message.Content)
	if err != nil {
		metrics.ExpansionsTotal.WithLabelValues("malformed").Inc()
		return recall.Expansion{}, err
	}
	metrics.ExpansionsTotal.WithLabelValues("success").Inc()
	return expansion, nil
}

// HealthCheck verifies API availability via ListModels.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

type expansionPayload struct {
	Rewrites     []string `json:"rewrites"`
	RelatedTerms []string `json:"related_terms"`
	Excludes     []string `json:"excludes"`
}

// parseExpansion extracts the first JSON object from model output and maps it
// onto an Expansion. Missing fields default to empty lists.
func parseExpansion(raw string) (recall.Expansion, error) {
	blob, ok := extractJSON(raw)
	if !ok {
		return recall.Expansion{}, fmt.Errorf("model response not JSON: %w", domain.ErrProviderError)
	}
	var payload expansionPayload
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return recall.Expansion{}, fmt.Errorf("parse expansion: %w", err)
	}
	return recall.Expansion{
		Rewrites:     cleanTerms(payload.Rewrites),
		RelatedTerms: cleanTerms(payload.RelatedTerms),
		Excludes:     cleanTerms(payload.Excludes),
	}, nil
}

// extractJSON returns the span from the first '{' to the last '}'.
// Chat models habitually wrap JSON in prose or code fences.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}

// parseAPIError extracts a human-readable error from the API response.
// All errors unwrap to domain.ErrProviderError.
func parseAPIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, domain.ErrProviderError)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s API error %d: %w", op, reqErr.HTTPStatusCode, domain.ErrProviderError)
	}
	return fmt.Errorf("%s request failed: %w", op, domain.ErrProviderError)
}
