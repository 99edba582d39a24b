// internal/common/errors/handler.go
package errors

import (
	"fmt"
	"time"
)

// Handler normalizes handler failures and formats the reply the agent sends
// back to the sender. The agent always answers a mention, even when the
// solver pipeline failed.
type Handler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Normalize ensures we always work with a StandardError.
func (h *Handler) Normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ReplyFor logs a failure and returns the apology message sent to the
// student in place of a solution.
func (h *Handler) ReplyFor(threadID string, err error) string {
	stdErr := h.Normalize(err)

	h.logger.Error("mention handling failed", map[string]interface{}{
		"threadId":  threadID,
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
		"details":   stdErr.Details,
		"retryable": stdErr.Retryable,
	})

	return fmt.Sprintf(
		"I ran into a problem while working on your question (%s). Please try rephrasing it or send it again in a moment.",
		stdErr.Code,
	)
}
