// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"economics-agent/internal/common/config"
	"economics-agent/internal/common/coral"
	"economics-agent/internal/common/database"
	"economics-agent/internal/common/errors"
	"economics-agent/internal/common/logger"
	"economics-agent/internal/models"
	"economics-agent/internal/solver"
	"economics-agent/pkg/templates"

	solveproblem "economics-agent/internal/workers/tutoring/solve-problem"
)

// Logger adapter to bridge logger.Logger to the worker-specific Logger interface
type solveProblemLoggerAdapter struct {
	logger.Logger
}

func (a *solveProblemLoggerAdapter) With(fields map[string]interface{}) solveproblem.Logger {
	return &solveProblemLoggerAdapter{a.Logger.With(fields)}
}

// fakeCoralServer is a scripted stand-in for the orchestration server. It
// serves one batch of mentions, then keeps answering 204 so the agent loop
// idles.
type fakeCoralServer struct {
	mu         sync.Mutex
	mentions   []models.Mention
	served     bool
	registered bool
	replies    []models.Message
}

func (f *fakeCoralServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/agents/register", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.registered = true
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/mentions/wait", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.served {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		f.served = true
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.WaitForMentionsResponse{Mentions: f.mentions})
	})

	mux.HandleFunc("/messages", func(w http.ResponseWriter, r *http.Request) {
		var msg models.Message
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.replies = append(f.replies, msg)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

func (f *fakeCoralServer) snapshot() (bool, []models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registered, append([]models.Message(nil), f.replies...)
}

func TestFullE2E(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Log("🚀 Starting full agent loop against a scripted orchestration server...")

	fake := &fakeCoralServer{
		mentions: []models.Mention{
			{
				MessageID: "m1",
				ThreadID:  "thread-supply",
				SenderID:  "student-1",
				Content:   "Explain the law of supply and demand.",
			},
			{
				MessageID: "m2",
				ThreadID:  "thread-elasticity",
				SenderID:  "student-2",
				Content:   "Calculate the price elasticity when purchases fall from 100 to 80 as price rises from 10 to 12",
			},
			{
				MessageID: "m3",
				ThreadID:  "thread-equilibrium",
				SenderID:  "student-3",
				Content:   "Given the demand function Qd = 100 - 2P and Qs = 20 + 2P, find the market equilibrium.",
			},
		},
	}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	// Redis-backed solution cache
	mr := miniredis.RunT(t)
	cache, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer cache.Close()
	require.NoError(t, cache.Ping(ctx), "redis ping failed")
	t.Log("✅ Redis connected")

	// Orchestration client
	client, err := coral.NewClient(&coral.ClientConfig{
		BaseURL:          server.URL,
		AgentID:          "economics_agent",
		AgentDescription: "economics tutoring agent",
		RetryConfig: &coral.RetryConfig{
			MaxRetries: 2,
			BaseDelay:  10 * time.Millisecond,
			MaxDelay:   50 * time.Millisecond,
		},
	})
	require.NoError(t, err)
	require.NoError(t, client.HealthCheck(ctx), "orchestration server health check failed")
	t.Log("✅ Orchestration server reachable")

	// Solver over the embedded templates
	registry, err := templates.Load("")
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	handler := solveproblem.NewHandler(
		solveproblem.LoadConfig(),
		solver.New(registry),
		cache,
		nil,
		&solveProblemLoggerAdapter{log},
	)

	agent := coral.NewAgent(client, handler, errors.NewHandler(log), nil, log, coral.AgentConfig{
		WaitTimeout:  200 * time.Millisecond,
		LoopSleep:    10 * time.Millisecond,
		ErrorBackoff: 10 * time.Millisecond,
	})

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- agent.Run(runCtx) }()

	replies := waitForReplies(t, fake, 3, 10*time.Second)
	stop()
	require.ErrorIs(t, <-done, context.Canceled)

	registered, _ := fake.snapshot()
	assert.True(t, registered, "agent never registered")

	byThread := make(map[string]models.Message, len(replies))
	for _, reply := range replies {
		byThread[reply.ThreadID] = reply
	}

	supply, ok := byThread["thread-supply"]
	require.True(t, ok, "no reply for the supply and demand thread")
	assert.Equal(t, "economics_agent", supply.SenderID)
	assert.Equal(t, []string{"student-1"}, supply.Mentions)
	assert.Contains(t, supply.Content, "**SUPPLY AND DEMAND ANALYSIS**")

	elasticity, ok := byThread["thread-elasticity"]
	require.True(t, ok, "no reply for the elasticity thread")
	assert.Equal(t, []string{"student-2"}, elasticity.Mentions)
	assert.Contains(t, elasticity.Content, "**ELASTICITY ANALYSIS**")
	assert.Contains(t, elasticity.Content, "Price Elasticity: |-20.00/20.00| = 1.00")

	// Equation-style problems mentioning demand route to supply and demand.
	equation, ok := byThread["thread-equilibrium"]
	require.True(t, ok, "no reply for the equation thread")
	assert.Contains(t, equation.Content, "**SUPPLY AND DEMAND ANALYSIS**")

	// Every solution ended up in the Redis cache
	keys := mr.Keys()
	assert.Len(t, keys, 3)
	for _, key := range keys {
		assert.True(t, strings.HasPrefix(key, "solution:"))
	}
	t.Log("✅ Full agent loop produced replies and populated the cache")
}

func waitForReplies(t *testing.T, fake *fakeCoralServer, want int, timeout time.Duration) []models.Message {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		_, replies := fake.snapshot()
		if len(replies) >= want {
			return replies
		}
		time.Sleep(10 * time.Millisecond)
	}
	_, replies := fake.snapshot()
	t.Fatalf("expected %d replies, got %d", want, len(replies))
	return replies
}
