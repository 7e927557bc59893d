// gemini.go - Gemini-backed Generator: generative-ai-go for plain and schema
// calls, google.golang.org/genai when search grounding is requested

package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/metrics"
	"github.com/bosocmputer/pharmacist_assistant/internal/ratelimit"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// maxOutputTokens is Gemini's output cap; set explicitly to avoid silent truncation
const maxOutputTokens int32 = 8192

// GeminiGenerator calls the Gemini API, rotating API keys per call.
type GeminiGenerator struct {
	keys            *KeyRotator
	limiter         *ratelimit.RateLimiter
	httpClient      *http.Client
	groundedBaseURL string // empty uses the SDK default endpoint
}

// NewGeminiGenerator builds a generator over the given key rotator.
// limiter may be nil for unlimited outbound calls.
func NewGeminiGenerator(keys *KeyRotator, limiter *ratelimit.RateLimiter) *GeminiGenerator {
	return &GeminiGenerator{
		keys:       keys,
		limiter:    limiter,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Generate performs one model call. Failed calls come back as *TransportError.
func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	if req.Grounding && req.Schema != nil {
		return nil, fmt.Errorf("gemini %s: search grounding cannot be combined with a response schema", req.Stage)
	}

	if err := g.limiter.Wait(ctx); err != nil {
		metrics.ObserveGeminiCall(req.Stage, "rate_limited", 0, 0)
		return nil, categorizeError(err)
	}

	var (
		resp *Response
		err  error
	)
	if req.Grounding {
		resp, err = g.groundedGenerate(ctx, g.keys.Next(), req)
	} else {
		resp, err = g.sdkGenerate(ctx, g.keys.Next(), req)
	}

	if err != nil {
		metrics.ObserveGeminiCall(req.Stage, "error", 0, 0)
		return nil, categorizeError(err)
	}

	outcome := "ok"
	switch {
	case resp.Blocked:
		outcome = "blocked"
	case resp.Truncated:
		outcome = "truncated"
	case resp.Text == "":
		outcome = "empty"
	}
	metrics.ObserveGeminiCall(req.Stage, outcome, resp.PromptTokens, resp.OutputTokens)
	return resp, nil
}

func (g *GeminiGenerator) sdkGenerate(ctx context.Context, apiKey string, req Request) (*Response, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(req.Model)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: ptr(maxOutputTokens),
	}
	if req.SystemInstruction != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemInstruction))
	}
	if req.Schema != nil {
		model.ResponseMIMEType = "application/json"
		model.ResponseSchema = req.Schema
	}

	result, err := model.GenerateContent(ctx, req.Parts...)
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return &Response{Blocked: true}, nil
		}
		return nil, err
	}

	resp := &Response{Text: firstText(result)}
	if result.UsageMetadata != nil {
		resp.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		resp.Truncated = true
	}
	return resp, nil
}

// firstText concatenates the text parts of the first candidate
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}

func ptr[T any](v T) *T {
	return &v
}
