// extract.go - Two-pass prescription reading: free-text OCR, then JSON structuring

package ai

import (
	"context"
	"errors"

	"github.com/bosocmputer/pharmacist_assistant/internal/common"
	"github.com/bosocmputer/pharmacist_assistant/internal/models"
	"github.com/google/generative-ai-go/genai"
)

const defaultImageMIME = "image/jpeg"

// Extractor reads medications from a prescription image.
type Extractor struct {
	Gen       Generator
	Model     string
	Grounding bool
}

// Extract runs the free-text pass and, when it produced text, the structuring
// pass. A structuring result that does not match the schema is logged and an
// empty response returned. Transport failures are returned as *TransportError.
func (e *Extractor) Extract(ctx context.Context, image []byte, mimeType string, reqCtx *common.RequestContext) (*models.MedicationResponse, error) {
	if mimeType == "" {
		mimeType = defaultImageMIME
	}

	reqCtx.StartSubStep("ocr_free_text")
	freeText, err := e.Gen.Generate(ctx, Request{
		Model:             e.Model,
		SystemInstruction: OCRSystemPrompt,
		Parts:             []genai.Part{genai.Blob{MIMEType: mimeType, Data: image}},
		Grounding:         e.Grounding,
		Stage:             "ocr_free_text",
	})
	if err != nil {
		reqCtx.EndSubStep("❌ FAILED")
		return nil, err
	}
	reqCtx.AddTokens(common.CalculateOCRTokenCost(freeText.PromptTokens, freeText.OutputTokens))
	reqCtx.EndSubStep("")

	if freeText.Truncated {
		reqCtx.LogWarning("OCR output hit the token limit, medication list may be incomplete")
	}
	if freeText.Text == "" {
		if freeText.Blocked {
			reqCtx.LogWarning("OCR response was blocked by the model")
		} else {
			reqCtx.LogWarning("OCR returned no text, skipping structuring")
		}
		return models.NewMedicationResponse(), nil
	}
	reqCtx.LogInfo("📄 OCR text: %d chars", len(freeText.Text))

	reqCtx.StartSubStep("ocr_structuring")
	result, err := GenerateStructured[models.MedicationResponse](ctx, e.Gen, Request{
		Model:  e.Model,
		Parts:  []genai.Part{genai.Text(OCRStructuredOutputPrompt), genai.Text(freeText.Text)},
		Schema: MedicationResponseSchema(),
		Stage:  "ocr_structuring",
	}, "MedicationResponse")
	if result.Usage != nil {
		reqCtx.AddTokens(common.CalculateOCRTokenCost(result.Usage.PromptTokens, result.Usage.OutputTokens))
	}
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			reqCtx.EndSubStep("⚠️ INVALID JSON")
			reqCtx.LogWarning("Structured output rejected: %v", schemaErr)
			return models.NewMedicationResponse(), nil
		}
		reqCtx.EndSubStep("❌ FAILED")
		return nil, err
	}
	reqCtx.EndSubStep("")

	resp := result.Parsed
	resp.Normalize()
	reqCtx.LogInfo("💊 Extracted %d medication(s)", len(resp.Medications))
	return resp, nil
}
