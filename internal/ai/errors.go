// errors.go - Error taxonomy for the extraction and verification pipeline

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// ConfigurationError reports a setup problem such as missing API keys.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// TransportError is a failed call to the Gemini API itself.
type TransportError struct {
	OriginalError error
	Category      string
	StatusCode    int
	Message       string
	Retryable     bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("[%s] %s (status: %d, retryable: %v)", e.Category, e.Message, e.StatusCode, e.Retryable)
}

func (e *TransportError) Unwrap() error {
	return e.OriginalError
}

// SchemaError means a schema-constrained call returned text that does not
// match the declared schema.
type SchemaError struct {
	Schema string
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema %s: %s: %v", e.Schema, e.Reason, e.Err)
	}
	return fmt.Sprintf("schema %s: %s", e.Schema, e.Reason)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// Verification step failures.
var (
	ErrSpellCheckFailed       = errors.New("spell check failed")
	ErrBrandLookupFailed      = errors.New("brand name retrieval failed")
	ErrStructuredOutputFailed = errors.New("structured output generation failed")
)

// VerificationError is a terminal failure while verifying one medication name.
// Step is one of the Err* sentinels above; Cause carries the underlying
// transport or schema error when there is one.
type VerificationError struct {
	Name  string
	Step  error
	Cause error
}

func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("verify %q: %v: %v", e.Name, e.Step, e.Cause)
	}
	return fmt.Sprintf("verify %q: %v", e.Name, e.Step)
}

func (e *VerificationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Step}
	}
	return []error{e.Step, e.Cause}
}

// categorizeError turns an SDK or context error into a *TransportError
func categorizeError(err error) *TransportError {
	if err == nil {
		return nil
	}

	var already *TransportError
	if errors.As(err, &already) {
		return already
	}

	transportErr := &TransportError{
		OriginalError: err,
		Category:      "unknown",
		Message:       err.Error(),
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		transportErr.StatusCode = apiErr.Code

		switch apiErr.Code {
		case 400:
			transportErr.Category = "bad_request"
			transportErr.Message = "Invalid request format or parameters"

		case 401:
			transportErr.Category = "unauthorized"
			transportErr.Message = "Invalid API key or authentication failed"

		case 403:
			transportErr.Category = "forbidden"
			transportErr.Message = "API key lacks required permissions"

		case 404:
			transportErr.Category = "not_found"
			transportErr.Message = "Model not found or invalid endpoint"

		case 413:
			transportErr.Category = "payload_too_large"
			transportErr.Message = "Request size exceeds limit (reduce image size)"

		case 429:
			transportErr.Category = "rate_limit"
			transportErr.Message = "Rate limit exceeded - too many requests"
			transportErr.Retryable = true

		case 500, 502, 503, 504:
			transportErr.Category = "server_error"
			transportErr.Message = fmt.Sprintf("Gemini server error (%d)", apiErr.Code)
			transportErr.Retryable = true

		default:
			transportErr.Category = "unknown_api_error"
			transportErr.Message = fmt.Sprintf("API error: %s", apiErr.Message)
			transportErr.Retryable = apiErr.Code >= 500
		}

		return transportErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		transportErr.Category = "timeout"
		transportErr.Message = "Request timeout - processing took too long"
		transportErr.Retryable = true
		return transportErr
	}

	if errors.Is(err, context.Canceled) {
		transportErr.Category = "canceled"
		transportErr.Message = "Request was canceled"
		return transportErr
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "quota") {
		transportErr.Category = "quota_exceeded"
		transportErr.Message = "API quota exceeded - daily or monthly limit reached"
		return transportErr
	}

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline") {
		transportErr.Category = "timeout"
		transportErr.Message = "Request timeout"
		transportErr.Retryable = true
		return transportErr
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") {
		transportErr.Category = "network_error"
		transportErr.Message = "Network connection error"
		transportErr.Retryable = true
		return transportErr
	}

	return transportErr
}

// BuildUserFriendlyError converts a pipeline error to a response body
func BuildUserFriendlyError(err error) map[string]interface{} {
	var verifyErr *VerificationError
	if errors.As(err, &verifyErr) {
		body := map[string]interface{}{
			"error":      "Medication name verification failed",
			"category":   "verification_failed",
			"details":    verifyErr.Error(),
			"medication": verifyErr.Name,
			"suggestion": "The extracted names could not be verified. Please retry or check the prescription manually before ordering.",
		}
		var cause *TransportError
		if errors.As(verifyErr.Cause, &cause) {
			body["cause_category"] = cause.Category
			body["retry_recommended"] = cause.Retryable
		}
		return body
	}

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return map[string]interface{}{
			"error":      "Prescription processing failed",
			"category":   "unknown",
			"details":    err.Error(),
			"suggestion": "An unexpected error occurred. Please try again or contact support.",
		}
	}

	errorResponse := map[string]interface{}{
		"error":    "AI processing failed",
		"category": transportErr.Category,
		"details":  transportErr.Message,
	}

	switch transportErr.Category {
	case "rate_limit":
		errorResponse["suggestion"] = "Too many requests. Please wait a moment and try again."
		errorResponse["retry_after"] = "30-60 seconds"

	case "quota_exceeded":
		errorResponse["suggestion"] = "Daily API quota exceeded. Please contact support or try again tomorrow."
		errorResponse["action_required"] = "upgrade_plan"

	case "unauthorized":
		errorResponse["suggestion"] = "API authentication failed. Please contact system administrator."
		errorResponse["action_required"] = "check_api_key"

	case "payload_too_large":
		errorResponse["suggestion"] = "Image size is too large. Please use a smaller image (max 5MB recommended)."
		errorResponse["action_required"] = "reduce_image_size"

	case "timeout":
		errorResponse["suggestion"] = "Request took too long. Please try again with a clearer image."
		errorResponse["retry_recommended"] = true

	case "server_error":
		errorResponse["suggestion"] = "Gemini service is temporarily unavailable. Please try again in a few minutes."
		errorResponse["retry_recommended"] = true

	case "network_error":
		errorResponse["suggestion"] = "Network connection issue. Please check your internet connection and try again."
		errorResponse["retry_recommended"] = true

	default:
		errorResponse["suggestion"] = "An unexpected error occurred. Please try again or contact support."
		errorResponse["retry_recommended"] = false
	}

	return errorResponse
}
