// internal/workers/tutoring/llm-refine/handler.go
package llmrefine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	TaskType = "llm-refine"
)

var (
	ErrRefineFailed     = errors.New("LLM_REFINE_FAILED")
	ErrRefineAPITimeout = errors.New("LLM_TIMEOUT")
)

const systemPrompt = "You are an economics tutor. You are given a student's question and a draft " +
	"step-by-step solution. Improve the draft's wording and tie it to the specifics of the " +
	"question. Keep the draft's structure, section headers, and any numerical results exactly " +
	"as they are. Reply with the improved solution only."

// Completer is the chat completion surface this worker needs.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config    *Config
	completer Completer
	logger    Logger
}

func NewHandler(config *Config, completer Completer, log Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Refine rewrites a drafted solution against the original question. Callers
// treat failures as advisory and fall back to the draft.
func (h *Handler) Refine(ctx context.Context, question, draft string) (string, error) {
	input := &Input{Question: question, Draft: draft}
	output, err := h.execute(ctx, input)
	if err != nil {
		return "", err
	}
	return output.Refined, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.Draft) == "" {
		return nil, fmt.Errorf("%w: empty draft", ErrRefineFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("Question:\n%s\n\nDraft solution:\n%s", input.Question, input.Draft)

	var refined string
	var lastErr error

	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrRefineAPITimeout
			}
		}

		refined, lastErr = h.completer.Complete(ctx, systemPrompt, userPrompt)

		if ctx.Err() != nil ||
			errors.Is(lastErr, context.DeadlineExceeded) ||
			errors.Is(lastErr, context.Canceled) {
			return nil, ErrRefineAPITimeout
		}

		if lastErr == nil {
			break
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrRefineAPITimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrRefineFailed, lastErr)
	}

	refined = strings.TrimSpace(refined)
	if refined == "" {
		return nil, fmt.Errorf("%w: empty completion", ErrRefineFailed)
	}

	h.logger.Info("solution refined", map[string]interface{}{
		"draftLength":   len(input.Draft),
		"refinedLength": len(refined),
	})

	return &Output{Refined: refined}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
