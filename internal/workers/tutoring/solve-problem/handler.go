// internal/workers/tutoring/solve-problem/handler.go
package solveproblem

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	stderrors "economics-agent/internal/common/errors"
	"economics-agent/internal/common/metrics"
	"economics-agent/internal/models"
	"economics-agent/internal/solver"
)

const (
	TaskType = "solve-problem"

	cacheKeyPrefix = "solution:"
)

// Refiner optionally rewrites a drafted solution. A nil Refiner disables the
// refinement stage.
type Refiner interface {
	Refine(ctx context.Context, question, draft string) (string, error)
}

// Cache is the subset of the Redis wrapper this worker uses.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config  *Config
	solver  *solver.Solver
	cache   Cache
	refiner Refiner
	logger  Logger
}

// NewHandler wires the solve-problem worker. cache and refiner may be nil;
// both stages are best-effort and never fail the reply.
func NewHandler(config *Config, s *solver.Solver, cache Cache, refiner Refiner, log Logger) *Handler {
	return &Handler{
		config:  config,
		solver:  s,
		cache:   cache,
		refiner: refiner,
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

// Handle satisfies the mention handler contract: it turns one mention into
// the reply text for its thread.
func (h *Handler) Handle(ctx context.Context, mention models.Mention) (string, error) {
	input := &Input{
		ThreadID: mention.ThreadID,
		SenderID: mention.SenderID,
		Problem:  mention.Content,
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, input)
	if err != nil {
		return "", err
	}
	return output.Solution, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if strings.TrimSpace(input.ThreadID) == "" {
		return nil, stderrors.NewMentionParseFailedError("missing threadId")
	}

	start := time.Now()
	key := cacheKey(input.Problem)

	if record, ok := h.cacheLookup(ctx, key); ok {
		h.logger.Info("solution served from cache", map[string]interface{}{
			"threadId": input.ThreadID,
			"category": record.Category,
		})
		metrics.SolutionsGenerated.WithLabelValues(record.Category).Inc()
		metrics.SolveDuration.WithLabelValues(record.Category).Observe(time.Since(start).Seconds())
		return &Output{
			Category: record.Category,
			Solution: record.Text,
			Refined:  record.Refined,
			Cached:   true,
		}, nil
	}

	solution := h.solver.Solve(input.Problem)
	category := string(solution.Category)

	text := solution.Text
	refined := false
	if h.refiner != nil {
		if improved, err := h.refiner.Refine(ctx, input.Problem, text); err != nil {
			metrics.LLMRefineFailures.Inc()
			h.logger.Warn("refinement failed, using canned solution", map[string]interface{}{
				"threadId": input.ThreadID,
				"category": category,
				"error":    err.Error(),
			})
		} else {
			text = improved
			refined = true
		}
	}

	h.cacheStore(ctx, key, models.SolutionRecord{
		Category:  category,
		Text:      text,
		Refined:   refined,
		CreatedAt: time.Now().UTC(),
	})

	metrics.SolutionsGenerated.WithLabelValues(category).Inc()
	metrics.SolveDuration.WithLabelValues(category).Observe(time.Since(start).Seconds())

	h.logger.Info("problem solved", map[string]interface{}{
		"threadId":   input.ThreadID,
		"category":   category,
		"refined":    refined,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Output{
		Category: category,
		Solution: text,
		Refined:  refined,
	}, nil
}

// cacheLookup is best-effort; a miss and a cache failure look the same.
func (h *Handler) cacheLookup(ctx context.Context, key string) (*models.SolutionRecord, bool) {
	if h.cache == nil {
		return nil, false
	}

	raw, err := h.cache.Get(ctx, key)
	if err != nil {
		if !isCacheMiss(err) {
			metrics.CacheLookups.WithLabelValues("error").Inc()
			h.logger.Warn("cache lookup failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
		return nil, false
	}

	var record models.SolutionRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return &record, true
}

func (h *Handler) cacheStore(ctx context.Context, key string, record models.SolutionRecord) {
	if h.cache == nil {
		return
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, string(payload), h.config.CacheTTL); err != nil {
		h.logger.Warn("cache store failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func isCacheMiss(err error) bool {
	return errors.Is(err, redis.Nil)
}

// cacheKey normalizes the problem text so reworded whitespace and case do
// not fragment the cache.
func cacheKey(problem string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(problem)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%s%s", cacheKeyPrefix, hex.EncodeToString(sum[:]))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
