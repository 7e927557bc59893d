// factory.go - Builds the Gemini generator and pipeline stages from configuration

package ai

import (
	"log"

	"github.com/bosocmputer/pharmacist_assistant/configs"
	"github.com/bosocmputer/pharmacist_assistant/internal/ratelimit"
)

// NewGeneratorFromConfig creates the Gemini generator from configs.
// It fails with *ConfigurationError when no API key is configured.
func NewGeneratorFromConfig() (*GeminiGenerator, error) {
	keys, err := NewKeyRotator(configs.GEMINI_API_KEYS)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewPerMinute(configs.GEMINI_RPM, configs.GEMINI_BURST)
	log.Printf("🔵 Gemini generator: %d API key(s), %d RPM (burst %d), grounding=%v",
		keys.Len(), configs.GEMINI_RPM, configs.GEMINI_BURST, configs.ENABLE_SEARCH_GROUNDING)

	return NewGeminiGenerator(keys, limiter), nil
}

// NewExtractorFromConfig wires the extraction stage to gen
func NewExtractorFromConfig(gen Generator) *Extractor {
	return &Extractor{
		Gen:       gen,
		Model:     configs.OCR_MODEL_NAME,
		Grounding: configs.ENABLE_SEARCH_GROUNDING,
	}
}

// NewVerifierFromConfig wires the verification stage to gen
func NewVerifierFromConfig(gen Generator) *Verifier {
	return &Verifier{
		Gen:            gen,
		Model:          configs.SPELL_MODEL_NAME,
		Grounding:      configs.ENABLE_SEARCH_GROUNDING,
		MaxConcurrency: configs.VERIFY_CONCURRENCY,
	}
}
