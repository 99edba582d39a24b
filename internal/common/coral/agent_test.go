// internal/common/coral/agent_test.go
package coral

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"economics-agent/internal/common/errors"
	"economics-agent/internal/common/logger"
	"economics-agent/internal/models"
)

// fakeCoralServer serves one batch of mentions and records the replies.
type fakeCoralServer struct {
	mu       sync.Mutex
	mentions []models.Mention
	served   bool
	replies  []models.Message
}

func (f *fakeCoralServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/agents/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
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
		json.NewEncoder(w).Encode(models.WaitForMentionsResponse{Mentions: f.mentions})
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
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeCoralServer) recordedReplies() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Message, len(f.replies))
	copy(out, f.replies)
	return out
}

type scriptedHandler struct {
	replies map[string]string
	err     error
}

func (s *scriptedHandler) Handle(ctx context.Context, mention models.Mention) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.replies[mention.ThreadID], nil
}

func newTestAgent(t *testing.T, serverURL string, handler MentionHandler) *Agent {
	t.Helper()
	client := newTestClient(t, serverURL)
	log := logger.NewTestLogger(t)
	return NewAgent(client, handler, errors.NewHandler(log), nil, log, AgentConfig{
		WaitTimeout:  100 * time.Millisecond,
		LoopSleep:    10 * time.Millisecond,
		ErrorBackoff: 10 * time.Millisecond,
	})
}

func waitForReplies(t *testing.T, f *fakeCoralServer, n int) []models.Message {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if replies := f.recordedReplies(); len(replies) >= n {
			return replies
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d replies", n)
	return nil
}

func TestAgent_RepliesToMention(t *testing.T) {
	fake := &fakeCoralServer{
		mentions: []models.Mention{
			{MessageID: "m1", ThreadID: "t1", SenderID: "student-1", Content: "What is GDP?"},
		},
	}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	agent := newTestAgent(t, server.URL, &scriptedHandler{
		replies: map[string]string{"t1": "GDP measures total output."},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go agent.Run(ctx)

	replies := waitForReplies(t, fake, 1)
	cancel()

	assert.Equal(t, "t1", replies[0].ThreadID)
	assert.Equal(t, "economics_agent", replies[0].SenderID)
	assert.Equal(t, "GDP measures total output.", replies[0].Content)
	assert.Equal(t, []string{"student-1"}, replies[0].Mentions)
}

func TestAgent_RepliesToEveryMentionInBatch(t *testing.T) {
	fake := &fakeCoralServer{
		mentions: []models.Mention{
			{MessageID: "m1", ThreadID: "t1", SenderID: "s1", Content: "first"},
			{MessageID: "m2", ThreadID: "t2", SenderID: "s2", Content: "second"},
		},
	}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	agent := newTestAgent(t, server.URL, &scriptedHandler{
		replies: map[string]string{"t1": "answer one", "t2": "answer two"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go agent.Run(ctx)

	replies := waitForReplies(t, fake, 2)
	cancel()

	byThread := map[string]string{}
	for _, r := range replies {
		byThread[r.ThreadID] = r.Content
	}
	assert.Equal(t, "answer one", byThread["t1"])
	assert.Equal(t, "answer two", byThread["t2"])
}

func TestAgent_SendsApologyWhenHandlerFails(t *testing.T) {
	fake := &fakeCoralServer{
		mentions: []models.Mention{
			{MessageID: "m1", ThreadID: "t1", SenderID: "s1", Content: "broken"},
		},
	}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	agent := newTestAgent(t, server.URL, &scriptedHandler{
		err: fmt.Errorf("solver exploded"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go agent.Run(ctx)

	replies := waitForReplies(t, fake, 1)
	cancel()

	assert.Equal(t, "t1", replies[0].ThreadID)
	assert.Contains(t, replies[0].Content, "I ran into a problem")
	assert.Contains(t, replies[0].Content, "INTERNAL_ERROR")
}

func TestAgent_StopsOnContextCancel(t *testing.T) {
	fake := &fakeCoralServer{}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	agent := newTestAgent(t, server.URL, &scriptedHandler{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agent.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not stop after cancel")
	}
}
