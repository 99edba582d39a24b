// Package errors provides standardized error handling for the tutoring agent.
package errors

import (
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeMentionParseFailed ErrorCode = "MENTION_PARSE_FAILED"

	ErrCodeTemplateNotFound   ErrorCode = "TEMPLATE_NOT_FOUND"
	ErrCodeTemplateLoadFailed ErrorCode = "TEMPLATE_LOAD_FAILED"

	ErrCodeCoralUnavailable  ErrorCode = "CORAL_UNAVAILABLE"
	ErrCodeCoralTimeout      ErrorCode = "CORAL_TIMEOUT"
	ErrCodeSendMessageFailed ErrorCode = "SEND_MESSAGE_FAILED"

	ErrCodeLLMTimeout      ErrorCode = "LLM_TIMEOUT"
	ErrCodeLLMRefineFailed ErrorCode = "LLM_REFINE_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// NewMentionParseFailedError creates a non-retryable payload error.
// The agent still replies to the sender with an explanation.
func NewMentionParseFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMentionParseFailed,
		Message:   "Mention payload could not be parsed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateNotFoundError creates a non-retryable template error.
func NewTemplateNotFoundError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateNotFound,
		Message:   "Template not found in registry",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTemplateLoadFailedError creates a non-retryable startup error for a
// broken template directory.
func NewTemplateLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTemplateLoadFailed,
		Message:   "Template registry failed to load",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCoralUnavailableError creates a retryable connection error.
func NewCoralUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCoralUnavailable,
		Message:   "Coral server unreachable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCoralTimeoutError creates a retryable timeout error.
func NewCoralTimeoutError(operation string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCoralTimeout,
		Message:   "Coral server call timed out",
		Details:   fmt.Sprintf("operation: %s", operation),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSendMessageFailedError creates a retryable reply-delivery error.
func NewSendMessageFailedError(threadID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSendMessageFailed,
		Message:   "Reply could not be delivered",
		Details:   fmt.Sprintf("threadId: %s, error: %s", threadID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMTimeoutError creates a retryable LLM timeout error. The refine stage
// is best-effort, so callers fall back to the canned solution.
func NewLLMTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMTimeout,
		Message:   "LLM refinement timeout",
		Details:   "LLM call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLLMRefineFailedError creates a retryable LLM API error.
func NewLLMRefineFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLLMRefineFailed,
		Message:   "LLM refinement API error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error. Cache failures
// never fail a solve call.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Solution cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetRetryCount returns how many delivery attempts remain sensible for a
// given error code before the agent gives up on the current mention.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCoralUnavailable, ErrCodeCoralTimeout, ErrCodeSendMessageFailed:
		return 3
	case ErrCodeLLMTimeout, ErrCodeLLMRefineFailed:
		return 1
	default:
		return 0
	}
}
