// pipeline.go - Orchestrates extraction, verification and reconciliation for one prescription

package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/configs"
	"github.com/bosocmputer/pharmacist_assistant/internal/common"
	"github.com/bosocmputer/pharmacist_assistant/internal/metrics"
	"github.com/bosocmputer/pharmacist_assistant/internal/models"
)

// MedicationExtractor reads medications from a prescription image.
type MedicationExtractor interface {
	Extract(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*models.MedicationResponse, error)
}

// NameVerifier verifies a batch of medication names, results in input order.
type NameVerifier interface {
	VerifyAll(ctx context.Context, names []string, reqCtx *common.RequestContext) (*models.SpellCheckResponse, error)
}

// Pipeline runs the full prescription flow.
type Pipeline struct {
	Extractor    MedicationExtractor
	Verifier     NameVerifier
	Preprocess   bool
	MaxDimension int
	Timeout      time.Duration // whole-run deadline; zero means none
}

// Process extracts medications from image, verifies each distinct name once
// and applies corrections. Errors from the stages are returned unchanged.
func (p *Pipeline) Process(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*models.MedicationResponse, *models.SpellCheckResponse, error) {
	start := time.Now()

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	meds, verdicts, err := p.run(ctx, image, mimeType, reqCtx)

	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case len(meds.Medications) == 0:
		outcome = "empty"
	}
	metrics.ObservePipelineRun(outcome, time.Since(start))

	return meds, verdicts, err
}

func (p *Pipeline) run(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*models.MedicationResponse, *models.SpellCheckResponse, error) {
	if p.Preprocess {
		reqCtx.StartStep("preprocess_image")
		processed, processedMIME, err := PreprocessImage(image, mimeType, p.MaxDimension)
		if err != nil {
			reqCtx.LogWarning("Preprocessing failed, using original image: %v", err)
			reqCtx.EndStep("skipped", nil, nil)
		} else {
			reqCtx.LogInfo("🖼️  Image %d → %d bytes", len(image), len(processed))
			image, mimeType = processed, processedMIME
			reqCtx.EndStep("success", nil, nil)
		}
	}

	reqCtx.StartStep("extract_medications")
	before := reqCtx.Tokens()
	meds, err := p.Extractor.Extract(ctx, image, mimeType, reqCtx)
	if err != nil {
		reqCtx.EndStep("failed", nil, err)
		return nil, nil, err
	}
	reqCtx.EndStep("success", tokensSince(reqCtx, before), nil)

	names := UniqueNames(HarvestNames(meds))
	if len(names) == 0 {
		reqCtx.LogInfo("No medication names to verify")
		return models.NewMedicationResponse(), models.NewSpellCheckResponse(), nil
	}

	reqCtx.StartStep("verify_names")
	before = reqCtx.Tokens()
	verdicts, err := p.Verifier.VerifyAll(ctx, names, reqCtx)
	if err != nil {
		reqCtx.EndStep("failed", nil, err)
		return nil, nil, err
	}
	if len(verdicts.Drugs) != len(names) {
		err := fmt.Errorf("verifier returned %d results for %d names", len(verdicts.Drugs), len(names))
		reqCtx.EndStep("failed", nil, err)
		return nil, nil, err
	}
	reqCtx.EndStep("success", tokensSince(reqCtx, before), nil)

	reqCtx.StartStep("reconcile")
	meds, corrected := reconcile(meds, verdicts)
	metrics.MedicationsCorrectedTotal.Add(float64(corrected))
	reqCtx.LogInfo("🔄 %d name(s) corrected across %d medication(s)", corrected, len(meds.Medications))
	reqCtx.EndStep("success", nil, nil)

	return meds, verdicts, nil
}

// tokensSince returns usage accumulated after the before snapshot
func tokensSince(reqCtx *common.RequestContext, before common.TokenUsage) *common.TokenUsage {
	now := reqCtx.Tokens()
	return &common.TokenUsage{
		InputTokens:  now.InputTokens - before.InputTokens,
		OutputTokens: now.OutputTokens - before.OutputTokens,
		TotalTokens:  now.TotalTokens - before.TotalTokens,
		CostUSD:      now.CostUSD - before.CostUSD,
	}
}

// NewPipelineFromConfig builds a pipeline around the given stages using configs
func NewPipelineFromConfig(extractor MedicationExtractor, verifier NameVerifier) *Pipeline {
	return &Pipeline{
		Extractor:    extractor,
		Verifier:     verifier,
		Preprocess:   configs.ENABLE_IMAGE_PREPROCESSING,
		MaxDimension: configs.MAX_IMAGE_DIMENSION,
		Timeout:      time.Duration(configs.PIPELINE_TIMEOUT) * time.Second,
	}
}
