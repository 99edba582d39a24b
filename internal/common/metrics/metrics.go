// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MentionsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_mentions_received_total",
			Help: "Total number of mentions received from the Coral server",
		},
	)

	SolutionsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_solutions_generated_total",
			Help: "Total number of solutions generated, by category",
		},
		[]string{"category"},
	)

	SolveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_solve_duration_seconds",
			Help: "Duration of mention handling in seconds",
		},
		[]string{"category"},
	)

	RepliesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_replies_failed_total",
			Help: "Total number of replies the agent failed to deliver",
		},
		[]string{"error_code"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_solution_cache_lookups_total",
			Help: "Solution cache lookups, by outcome (hit, miss, error)",
		},
		[]string{"outcome"},
	)

	LLMRefineFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_llm_refine_failures_total",
			Help: "Total number of best-effort LLM refinements that fell back to the canned solution",
		},
	)
)
