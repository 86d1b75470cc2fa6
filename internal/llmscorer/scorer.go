// Package llmscorer asks an OpenAI-compatible chat model to classify a
// bookmark into one of the configured categories. It is the most expensive
// and highest-weighted ensemble method, so it is rate limited and abstains
// on any failure rather than blocking a classification run.
package llmscorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"tidymark/internal/bookmark"
	"tidymark/internal/config"
	"tidymark/internal/ensemble"
	"tidymark/internal/logging"
)

const defaultTimeout = 30 * time.Second

// completer is the slice of the OpenAI client the scorer needs. Narrowed
// for tests.
type completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Scorer classifies bookmarks through a chat completion endpoint.
type Scorer struct {
	client     completer
	model      string
	categories []string
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     *slog.Logger
}

// NewScorer builds a scorer from the LLM configuration section. It returns
// nil when no API key is configured; the ensemble skips nil stages.
func NewScorer(cfg config.LLM, categories []string, logger *slog.Logger) *Scorer {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMin > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMin)/60.0), 1)
	}

	return &Scorer{
		client:     openai.NewClientWithConfig(clientConfig),
		model:      cfg.Model,
		categories: categories,
		limiter:    limiter,
		timeout:    timeout,
		logger:     logging.NewComponentLogger(logger, "llm"),
	}
}

// Name implements ensemble.Method.
func (s *Scorer) Name() string { return ensemble.MethodLLM }

// verdict is the JSON shape the model is instructed to reply with.
type verdict struct {
	Category     string  `json:"category"`
	Confidence   float64 `json:"confidence"`
	ResourceType string  `json:"resource_type"`
	Reasoning    string  `json:"reasoning"`
}

// Classify sends the bookmark to the model and parses its JSON verdict. Any
// transport, parsing, or rate-limit failure is an abstention, never an
// error; the rest of the ensemble still produces a result.
func (s *Scorer) Classify(ctx context.Context, features bookmark.Features) (ensemble.MethodResult, bool) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		s.logger.Debug("rate limiter wait aborted", logging.Error(err))
		return ensemble.MethodResult{}, false
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: s.systemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt(features),
			},
		},
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		s.logger.Warn("chat completion failed",
			logging.String(logging.FieldURL, features.URL),
			logging.Error(err))
		return ensemble.MethodResult{}, false
	}
	if len(resp.Choices) == 0 {
		return ensemble.MethodResult{}, false
	}

	var v verdict
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &v); err != nil {
		s.logger.Warn("model returned malformed verdict",
			logging.String(logging.FieldURL, features.URL),
			logging.Error(err))
		return ensemble.MethodResult{}, false
	}
	if v.Category == "" || v.Confidence <= 0 {
		return ensemble.MethodResult{}, false
	}
	if v.Confidence > 1 {
		v.Confidence = 1
	}

	result := ensemble.MethodResult{
		Category:   v.Category,
		Confidence: v.Confidence,
		Method:     ensemble.MethodLLM,
	}
	if v.ResourceType != "" {
		result.Facets = map[string]string{ensemble.FacetResourceType: v.ResourceType}
	}
	if v.Reasoning != "" {
		result.Reasoning = []string{v.Reasoning}
	}
	return result, true
}

func (s *Scorer) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You classify browser bookmarks into a fixed category list. ")
	b.WriteString("Reply with a single JSON object: ")
	b.WriteString(`{"category": string, "confidence": number between 0 and 1, "resource_type": string, "reasoning": string}. `)
	if len(s.categories) > 0 {
		b.WriteString("Choose category from: ")
		b.WriteString(strings.Join(s.categories, ", "))
		b.WriteString(". ")
	}
	b.WriteString("Use resource_type for what kind of page it is, for example article, video, tool, documentation.")
	return b.String()
}

func userPrompt(features bookmark.Features) string {
	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", features.URL)
	if features.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", features.Title)
	}
	if features.Domain != "" {
		fmt.Fprintf(&b, "Domain: %s\n", features.Domain)
	}
	if features.ContentType != "" && features.ContentType != bookmark.ContentTypeUnknown {
		fmt.Fprintf(&b, "Detected content type: %s\n", features.ContentType)
	}
	return b.String()
}
