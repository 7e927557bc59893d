// verify.go - Three-step medication name verification with bounded fan-out

package ai

import (
	"context"
	"errors"
	"strings"

	"github.com/bosocmputer/pharmacist_assistant/internal/common"
	"github.com/bosocmputer/pharmacist_assistant/internal/models"
	"github.com/google/generative-ai-go/genai"
	"golang.org/x/sync/errgroup"
)

const defaultVerifyConcurrency = 8

// Verifier checks and corrects medication name spellings.
type Verifier struct {
	Gen            Generator
	Model          string
	Grounding      bool
	MaxConcurrency int
}

// Verify runs spell check, brand lookup and structuring for one name.
// Step failures come back as *VerificationError wrapping the step sentinel
// and, for transport failures, the *TransportError.
func (v *Verifier) Verify(ctx context.Context, name string, reqCtx *common.RequestContext) (*models.SpellCheckResult, error) {
	spell, err := v.Gen.Generate(ctx, Request{
		Model:             v.Model,
		SystemInstruction: SpellSystemPrompt,
		Parts:             []genai.Part{genai.Text(name)},
		Grounding:         v.Grounding,
		Stage:             "spell_check",
	})
	if err != nil {
		return nil, &VerificationError{Name: name, Step: ErrSpellCheckFailed, Cause: err}
	}
	v.addUsage(reqCtx, spell)
	if spell.Text == "" {
		return nil, &VerificationError{Name: name, Step: ErrSpellCheckFailed}
	}

	brands, err := v.Gen.Generate(ctx, Request{
		Model:     v.Model,
		Parts:     []genai.Part{genai.Text(BrandNamePrompt), genai.Text(spell.Text)},
		Grounding: v.Grounding,
		Stage:     "brand_lookup",
	})
	if err != nil {
		return nil, &VerificationError{Name: name, Step: ErrBrandLookupFailed, Cause: err}
	}
	v.addUsage(reqCtx, brands)
	if brands.Text == "" {
		return nil, &VerificationError{Name: name, Step: ErrBrandLookupFailed}
	}

	result, err := GenerateStructured[models.SpellCheckResult](ctx, v.Gen, Request{
		Model: v.Model,
		Parts: []genai.Part{
			genai.Text(SpellStructuredOutputPrompt),
			genai.Text(spell.Text),
			genai.Text(brands.Text),
		},
		Schema: SpellCheckResultSchema(),
		Stage:  "spell_structuring",
	}, "SpellCheckResult")
	v.addUsage(reqCtx, result.Usage)
	if err != nil {
		return nil, &VerificationError{Name: name, Step: ErrStructuredOutputFailed, Cause: err}
	}

	verdict := result.Parsed
	verdict.InputName = name
	verdict.CorrectedName = strings.TrimSpace(verdict.CorrectedName)
	if verdict.CorrectedName == "" {
		verdict.CorrectedName = models.UnknownName
	}
	verdict.Normalize()

	if !verdict.IsCorrect {
		reqCtx.LogInfo("✏️  %q → %q", name, verdict.CorrectedName)
	}
	return verdict, nil
}

// VerifyAll verifies names concurrently, at most MaxConcurrency at a time.
// Results keep the input order. The first failure cancels the remaining
// calls and is returned; no partial response is produced.
func (v *Verifier) VerifyAll(ctx context.Context, names []string, reqCtx *common.RequestContext) (*models.SpellCheckResponse, error) {
	out := models.NewSpellCheckResponse()
	if len(names) == 0 {
		return out, nil
	}

	limit := v.MaxConcurrency
	if limit <= 0 {
		limit = defaultVerifyConcurrency
	}

	results := make([]models.SpellCheckResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(len(names), limit))

	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdict, err := v.Verify(gctx, name, reqCtx)
			if err != nil {
				return err
			}
			results[i] = *verdict
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var verifyErr *VerificationError
		if errors.As(err, &verifyErr) {
			reqCtx.LogError("Verification failed for %q: %v", verifyErr.Name, err)
		}
		return nil, err
	}

	out.Drugs = results
	return out, nil
}

func (v *Verifier) addUsage(reqCtx *common.RequestContext, resp *Response) {
	if resp == nil {
		return
	}
	reqCtx.AddTokens(common.CalculateSpellTokenCost(resp.PromptTokens, resp.OutputTokens))
}
