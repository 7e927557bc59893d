// gemini_grounded.go - Google Search grounded calls through the google.golang.org/genai SDK

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	googlegenai "google.golang.org/genai"
	"google.golang.org/api/googleapi"
)

// groundedContents converts request parts to the grounding SDK's content
func groundedContents(req Request) ([]*googlegenai.Content, error) {
	parts := make([]*googlegenai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch v := p.(type) {
		case genai.Text:
			parts = append(parts, googlegenai.NewPartFromText(string(v)))
		case genai.Blob:
			parts = append(parts, googlegenai.NewPartFromBytes(v.Data, v.MIMEType))
		default:
			return nil, fmt.Errorf("unsupported part type %T for grounded call", p)
		}
	}
	return []*googlegenai.Content{googlegenai.NewContentFromParts(parts, googlegenai.RoleUser)}, nil
}

// groundedConfig enables the google_search tool
func groundedConfig(req Request) *googlegenai.GenerateContentConfig {
	config := &googlegenai.GenerateContentConfig{
		MaxOutputTokens: maxOutputTokens,
		Tools:           []*googlegenai.Tool{{GoogleSearch: &googlegenai.GoogleSearch{}}},
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = googlegenai.NewContentFromText(req.SystemInstruction, googlegenai.RoleUser)
	}
	return config
}

func (g *GeminiGenerator) groundedGenerate(ctx context.Context, apiKey string, req Request) (*Response, error) {
	contents, err := groundedContents(req)
	if err != nil {
		return nil, err
	}

	client, err := googlegenai.NewClient(ctx, &googlegenai.ClientConfig{
		APIKey:      apiKey,
		Backend:     googlegenai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: googlegenai.HTTPOptions{BaseURL: g.groundedBaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create grounded Gemini client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, req.Model, contents, groundedConfig(req))
	if err != nil {
		return nil, asGoogleAPIError(err)
	}

	resp := &Response{}
	if result.UsageMetadata != nil {
		resp.PromptTokens = int(result.UsageMetadata.PromptTokenCount)
		resp.OutputTokens = int(result.UsageMetadata.CandidatesTokenCount)
	}
	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		resp.Blocked = true
		return resp, nil
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return resp, nil
	}

	candidate := result.Candidates[0]
	switch string(candidate.FinishReason) {
	case "MAX_TOKENS":
		resp.Truncated = true
	case "SAFETY", "BLOCKLIST", "PROHIBITED_CONTENT", "SPII":
		resp.Blocked = true
		return resp, nil
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	resp.Text = strings.TrimSpace(b.String())
	return resp, nil
}

// asGoogleAPIError maps the grounding SDK's API error onto *googleapi.Error
// so categorizeError treats both SDKs alike
func asGoogleAPIError(err error) error {
	var apiErr googlegenai.APIError
	if errors.As(err, &apiErr) {
		gerr := &googleapi.Error{Code: apiErr.Code, Message: apiErr.Message}
		gerr.Wrap(err)
		return gerr
	}
	var apiErrPtr *googlegenai.APIError
	if errors.As(err, &apiErrPtr) {
		gerr := &googleapi.Error{Code: apiErrPtr.Code, Message: apiErrPtr.Message}
		gerr.Wrap(err)
		return gerr
	}
	return err
}
