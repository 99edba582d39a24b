// internal/common/coral/agent.go
package coral

import (
	"context"
	"time"

	"economics-agent/internal/common/errors"
	"economics-agent/internal/common/logger"
	"economics-agent/internal/common/metrics"
	"economics-agent/internal/common/observability"
	"economics-agent/internal/models"
)

// MentionHandler processes one mention and returns the reply text.
type MentionHandler interface {
	Handle(ctx context.Context, mention models.Mention) (string, error)
}

// AgentConfig tunes the mention loop.
type AgentConfig struct {
	WaitTimeout  time.Duration
	LoopSleep    time.Duration
	ErrorBackoff time.Duration
}

// Agent runs the wait-for-mentions loop: poll, dispatch to the handler, and
// always answer the sender, even when handling fails.
type Agent struct {
	client     *Client
	handler    MentionHandler
	errHandler *errors.Handler
	obs        *observability.Observability
	logger     logger.Logger
	config     AgentConfig
}

func NewAgent(
	client *Client,
	handler MentionHandler,
	errHandler *errors.Handler,
	obs *observability.Observability,
	log logger.Logger,
	config AgentConfig,
) *Agent {
	if config.WaitTimeout == 0 {
		config.WaitTimeout = 30 * time.Second
	}
	if config.LoopSleep == 0 {
		config.LoopSleep = 1 * time.Second
	}
	if config.ErrorBackoff == 0 {
		config.ErrorBackoff = 5 * time.Second
	}

	return &Agent{
		client:     client,
		handler:    handler,
		errHandler: errHandler,
		obs:        obs,
		logger:     log.With(map[string]interface{}{"agentId": client.AgentID()}),
		config:     config,
	}
}

// Run registers the agent and loops until the context is cancelled.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.client.Register(ctx); err != nil {
		return err
	}
	a.logger.Info("agent registered, entering mention loop", nil)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("mention loop stopped", nil)
			return ctx.Err()
		default:
		}

		if err := a.runOnce(ctx); err != nil {
			if ctx.Err() != nil {
				a.logger.Info("mention loop stopped", nil)
				return ctx.Err()
			}
			a.logger.Error("mention loop iteration failed", map[string]interface{}{
				"error": err.Error(),
			})
			a.sleep(ctx, a.config.ErrorBackoff)
			continue
		}

		a.sleep(ctx, a.config.LoopSleep)
	}
}

// runOnce performs a single poll-and-dispatch iteration.
func (a *Agent) runOnce(ctx context.Context) error {
	mentions, err := a.client.WaitForMentions(ctx, a.config.WaitTimeout)
	if err != nil {
		return err
	}
	if len(mentions) == 0 {
		a.logger.Debug("no mentions in poll window", nil)
		return nil
	}

	for _, mention := range mentions {
		metrics.MentionsReceived.Inc()
		a.processMention(ctx, mention)
	}
	return nil
}

// processMention handles one mention and delivers a reply. Handler failures
// produce an apology reply instead of silence; the conversation never stalls
// on an unanswered mention.
func (a *Agent) processMention(ctx context.Context, mention models.Mention) {
	log := a.logger.With(map[string]interface{}{
		"threadId": mention.ThreadID,
		"senderId": mention.SenderID,
	})
	log.Info("processing mention", map[string]interface{}{
		"contentLength": len(mention.Content),
	})

	start := time.Now()
	reply, err := a.handler.Handle(ctx, mention)
	status := "success"
	if err != nil {
		status = "error"
		reply = a.errHandler.ReplyFor(mention.ThreadID, err)
	}
	if a.obs != nil {
		a.obs.RecordMentionProcessed(ctx, status)
		a.obs.RecordMentionDuration(ctx, time.Since(start), status)
	}

	if sendErr := a.client.SendMessage(ctx, mention.ThreadID, reply, []string{mention.SenderID}); sendErr != nil {
		std := a.errHandler.Normalize(sendErr)
		metrics.RepliesFailed.WithLabelValues(string(std.Code)).Inc()
		log.Error("failed to deliver reply", map[string]interface{}{
			"error": sendErr.Error(),
		})
		return
	}

	log.Info("reply delivered", map[string]interface{}{
		"status":     status,
		"durationMs": time.Since(start).Milliseconds(),
	})
}

func (a *Agent) sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
