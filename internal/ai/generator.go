// generator.go - Model API boundary used by the extraction and verification stages

package ai

import (
	"context"

	"github.com/google/generative-ai-go/genai"
)

// Generator is the black-box generative model capability. Implementations
// return *TransportError for failed calls; an empty Text is a valid
// response (nothing generated), not an error.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request describes one model call.
type Request struct {
	Model             string
	SystemInstruction string
	Parts             []genai.Part // genai.Text and genai.Blob
	Grounding         bool         // enable Google Search grounding
	Schema            *genai.Schema
	Stage             string // label for logs and metrics
}

// Response is the raw result of one model call.
type Response struct {
	Text         string
	PromptTokens int
	OutputTokens int
	Truncated    bool // finish reason MAX_TOKENS
	Blocked      bool
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (*Response, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
