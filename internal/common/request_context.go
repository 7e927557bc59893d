// request_context.go - Request tracking and logging system

package common

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/configs"
	"github.com/google/uuid"
)

// RequestContext tracks the entire request lifecycle with timing and costs.
// Verification runs concurrently, so every method takes the mutex.
type RequestContext struct {
	RequestID           string
	Source              string // "http", "cli", ...
	StartTime           time.Time
	Steps               []StepLog
	TotalTokens         TokenUsage
	CurrentStep         string
	CurrentStepStart    time.Time
	CurrentSubSteps     []SubStepLog
	CurrentSubStep      string
	CurrentSubStepStart time.Time

	mu sync.Mutex
}

// StepLog represents a single processing step
type StepLog struct {
	Name      string       `json:"name"`
	StartTime time.Time    `json:"start_time"`
	Duration  int64        `json:"duration_ms"`
	Status    string       `json:"status"` // "success", "failed", "skipped"
	Tokens    *TokenUsage  `json:"tokens,omitempty"`
	Error     string       `json:"error,omitempty"`
	SubSteps  []SubStepLog `json:"sub_steps,omitempty"`
}

// SubStepLog represents a detailed sub-operation within a step
type SubStepLog struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Duration  int64     `json:"duration_ms"`
	Details   string    `json:"details,omitempty"`
}

// TokenUsage tracks API token consumption
type TokenUsage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Add accumulates other into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
	u.CostUSD += other.CostUSD
}

var stepDescriptions = map[string]string{
	"preprocess_image":    "🔧 Preprocess image",
	"extract_medications": "🔍 Read prescription (OCR)",
	"verify_names":        "💊 Verify medication names",
	"reconcile":           "🔄 Apply corrections",
}

var subStepDescriptions = map[string]string{
	"ocr_free_text":   "📖 Free-text extraction",
	"ocr_structuring": "📝 Structure as JSON",
}

// NewRequestContext creates a new request tracking context
func NewRequestContext(source string) *RequestContext {
	reqID := uuid.New().String()
	now := time.Now()

	log.Printf("[%s] 🚀 New request | source: %s | time: %s", reqID, source, now.Format("15:04:05"))

	return &RequestContext{
		RequestID: reqID,
		Source:    source,
		StartTime: now,
		Steps:     []StepLog{},
	}
}

// StartStep begins tracking a new processing step
func (rc *RequestContext) StartStep(stepName string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.CurrentStep = stepName
	rc.CurrentStepStart = time.Now()

	desc := stepDescriptions[stepName]
	if desc == "" {
		desc = stepName
	}

	log.Printf("[%s] ┌── %s", rc.RequestID, desc)
}

// EndStep completes the current step and records timing.
// Tokens passed here are for display only; AddTokens does the accounting.
func (rc *RequestContext) EndStep(status string, tokens *TokenUsage, err error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	duration := time.Since(rc.CurrentStepStart).Milliseconds()

	stepLog := StepLog{
		Name:      rc.CurrentStep,
		StartTime: rc.CurrentStepStart,
		Duration:  duration,
		Status:    status,
		Tokens:    tokens,
		SubSteps:  rc.CurrentSubSteps,
	}

	if err != nil {
		stepLog.Error = err.Error()
		log.Printf("[%s] ❌ FAILED - %s (%.2fs) - Error: %v",
			rc.RequestID, rc.CurrentStep, float64(duration)/1000, err)
	} else {
		logMsg := fmt.Sprintf("[%s] └── ✅ %s: %.2fs", rc.RequestID, status, float64(duration)/1000)

		if tokens != nil {
			logMsg += fmt.Sprintf(" | 🪙 Tokens: %d in + %d out = %d | 💰 $%.4f",
				tokens.InputTokens, tokens.OutputTokens, tokens.TotalTokens, tokens.CostUSD)
		}
		if len(rc.CurrentSubSteps) > 0 {
			logMsg += fmt.Sprintf(" | sub-steps: %d", len(rc.CurrentSubSteps))
		}

		log.Print(logMsg)
	}

	rc.Steps = append(rc.Steps, stepLog)
	rc.CurrentStep = ""
	rc.CurrentSubSteps = []SubStepLog{}
}

// AddTokens adds a single model call's usage to the request totals.
func (rc *RequestContext) AddTokens(tokens TokenUsage) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.TotalTokens.Add(tokens)
}

// Tokens returns a snapshot of the accumulated usage.
func (rc *RequestContext) Tokens() TokenUsage {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.TotalTokens
}

// CalculateOCRTokenCost prices a call made with the OCR model
func CalculateOCRTokenCost(inputTokens, outputTokens int) TokenUsage {
	return calculateCost(inputTokens, outputTokens,
		configs.OCR_INPUT_PRICE_PER_MILLION, configs.OCR_OUTPUT_PRICE_PER_MILLION)
}

// CalculateSpellTokenCost prices a call made with the spell-check model
func CalculateSpellTokenCost(inputTokens, outputTokens int) TokenUsage {
	return calculateCost(inputTokens, outputTokens,
		configs.SPELL_INPUT_PRICE_PER_MILLION, configs.SPELL_OUTPUT_PRICE_PER_MILLION)
}

func calculateCost(inputTokens, outputTokens int, inPrice, outPrice float64) TokenUsage {
	inputCost := float64(inputTokens) * inPrice / 1_000_000
	outputCost := float64(outputTokens) * outPrice / 1_000_000

	return TokenUsage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD:      inputCost + outputCost,
	}
}

// GetSummary returns a final summary of the entire request
func (rc *RequestContext) GetSummary() map[string]interface{} {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	totalDuration := time.Since(rc.StartTime).Milliseconds()

	stepBreakdown := make(map[string]int64)
	for _, step := range rc.Steps {
		stepBreakdown[step.Name] = step.Duration
	}

	summary := map[string]interface{}{
		"request_id":         rc.RequestID,
		"source":             rc.Source,
		"total_duration_ms":  totalDuration,
		"total_duration_sec": float64(totalDuration) / 1000,
		"step_breakdown":     stepBreakdown,
		"total_steps":        len(rc.Steps),
		"token_usage": map[string]interface{}{
			"input_tokens":  rc.TotalTokens.InputTokens,
			"output_tokens": rc.TotalTokens.OutputTokens,
			"total_tokens":  rc.TotalTokens.TotalTokens,
			"cost_usd":      fmt.Sprintf("$%.4f", rc.TotalTokens.CostUSD),
		},
	}

	log.Printf("[%s] ═══ 🎯 Summary ═══", rc.RequestID)
	log.Printf("[%s] ⏱️  Total: %.2fs | 📝 Steps: %d | 🪙 Tokens: %s in + %s out = %s | 💰 $%.4f",
		rc.RequestID,
		float64(totalDuration)/1000,
		len(rc.Steps),
		formatNumber(rc.TotalTokens.InputTokens),
		formatNumber(rc.TotalTokens.OutputTokens),
		formatNumber(rc.TotalTokens.TotalTokens),
		rc.TotalTokens.CostUSD)

	return summary
}

// StartSubStep begins tracking a detailed sub-operation
func (rc *RequestContext) StartSubStep(subStepName string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.CurrentSubStep = subStepName
	rc.CurrentSubStepStart = time.Now()

	desc := subStepDescriptions[subStepName]
	if desc == "" {
		desc = subStepName
	}

	log.Printf("[%s]    ├─ %s...", rc.RequestID, desc)
}

// EndSubStep completes the current sub-step and records timing
func (rc *RequestContext) EndSubStep(details string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.CurrentSubStep == "" {
		return
	}

	duration := time.Since(rc.CurrentSubStepStart).Milliseconds()

	rc.CurrentSubSteps = append(rc.CurrentSubSteps, SubStepLog{
		Name:      rc.CurrentSubStep,
		StartTime: rc.CurrentSubStepStart,
		Duration:  duration,
		Details:   details,
	})

	detailsMsg := ""
	if details != "" {
		detailsMsg = " | " + details
	}
	log.Printf("[%s]    └─ ✅ %.2fs%s", rc.RequestID, float64(duration)/1000, detailsMsg)

	rc.CurrentSubStep = ""
}

// LogInfo logs info-level message with request ID prefix
func (rc *RequestContext) LogInfo(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[%s] ℹ️  %s", rc.RequestID, msg)
}

// LogWarning logs warning-level message with request ID prefix
func (rc *RequestContext) LogWarning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[%s] ⚠️  %s", rc.RequestID, msg)
}

// LogError logs error-level message with request ID prefix
func (rc *RequestContext) LogError(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[%s] ❌ %s", rc.RequestID, msg)
}

// GetPartialSummary returns a summary of completed steps (for timeout scenarios)
func (rc *RequestContext) GetPartialSummary() map[string]interface{} {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	completedSteps := []string{}
	for _, step := range rc.Steps {
		if step.Status == "success" {
			completedSteps = append(completedSteps, step.Name)
		}
	}

	return map[string]interface{}{
		"completed_steps": completedSteps,
		"total_steps":     len(rc.Steps),
		"current_step":    rc.CurrentStep,
	}
}

// formatNumber adds comma separators to numbers
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%d,%03d", n/1000, n%1000)
	}
	return fmt.Sprintf("%d,%03d,%03d", n/1000000, (n%1000000)/1000, n%1000)
}
