package ai

import (
	"context"
	"sync"

	"github.com/bosocmputer/pharmacist_assistant/internal/common"
	"github.com/google/generative-ai-go/genai"
)

// stageGenerator answers by Request.Stage and records every call.
type stageGenerator struct {
	mu      sync.Mutex
	calls   []Request
	answers map[string]func(req Request) (*Response, error)
}

func newStageGenerator() *stageGenerator {
	return &stageGenerator{answers: map[string]func(req Request) (*Response, error){}}
}

func (g *stageGenerator) on(stage string, fn func(req Request) (*Response, error)) *stageGenerator {
	g.answers[stage] = fn
	return g
}

func (g *stageGenerator) text(stage, text string) *stageGenerator {
	return g.on(stage, func(Request) (*Response, error) {
		return &Response{Text: text, PromptTokens: 10, OutputTokens: 5}, nil
	})
}

func (g *stageGenerator) Generate(ctx context.Context, req Request) (*Response, error) {
	g.mu.Lock()
	g.calls = append(g.calls, req)
	fn := g.answers[req.Stage]
	g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, categorizeError(err)
	}
	if fn == nil {
		return &Response{}, nil
	}
	return fn(req)
}

func (g *stageGenerator) count(stage string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Stage == stage {
			n++
		}
	}
	return n
}

// firstTextPart returns the first genai.Text part of a request
func firstTextPart(req Request) string {
	for _, p := range req.Parts {
		if t, ok := p.(genai.Text); ok {
			return string(t)
		}
	}
	return ""
}

func testRequestContext() *common.RequestContext {
	return common.NewRequestContext("test")
}
