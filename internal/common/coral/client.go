// internal/common/coral/client.go
package coral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"economics-agent/internal/common/errors"
	httpclient "economics-agent/internal/common/http"
	"economics-agent/internal/common/validation"
	"economics-agent/internal/models"

	"github.com/google/uuid"
)

// Client talks to the Coral orchestration server over its HTTP API with
// retry logic for transient failures.
type Client struct {
	httpClient *httpclient.Client
	config     *ClientConfig
}

// ClientConfig holds configuration for the Coral client.
type ClientConfig struct {
	BaseURL          string
	AgentID          string
	AgentDescription string
	ConnectTimeout   time.Duration
	RequestTimeout   time.Duration
	RetryConfig      *RetryConfig
}

// RetryConfig defines retry behavior for transient failures.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryConfig provides sensible defaults.
var DefaultRetryConfig = &RetryConfig{
	MaxRetries: 3,
	BaseDelay:  1 * time.Second,
	MaxDelay:   10 * time.Second,
}

// NewClient creates a Coral client using explicit configuration.
func NewClient(config *ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("coral base URL is required")
	}
	if config.AgentID == "" {
		return nil, fmt.Errorf("coral agent ID is required")
	}
	if config.RetryConfig == nil {
		config.RetryConfig = DefaultRetryConfig
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 40 * time.Second
	}

	return &Client{
		// RequestTimeout bounds the long-poll, so it doubles as the
		// overall HTTP client timeout.
		httpClient: httpclient.NewClient(config.RequestTimeout),
		config:     config,
	}, nil
}

// AgentID returns the identity this client registered under.
func (c *Client) AgentID() string {
	return c.config.AgentID
}

// Register announces the agent to the server. The server treats repeated
// registrations as idempotent, so this is safe to retry on reconnect.
func (c *Client) Register(ctx context.Context) error {
	body := models.RegistrationRequest{
		AgentID:          c.config.AgentID,
		AgentDescription: c.config.AgentDescription,
	}

	endpoint := c.endpoint("/agents/register", url.Values{
		"agentId":          {c.config.AgentID},
		"agentDescription": {c.config.AgentDescription},
	})

	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	_, err := c.executeWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.postJSON(ctx, endpoint, body, nil)
	}, "register")
	return err
}

// WaitForMentions long-polls the server for messages mentioning this agent.
// A poll that expires without mentions returns an empty slice and nil error.
func (c *Client) WaitForMentions(ctx context.Context, timeout time.Duration) ([]models.Mention, error) {
	body := models.WaitForMentionsRequest{
		AgentID:   c.config.AgentID,
		TimeoutMs: int(timeout.Milliseconds()),
	}

	var resp struct {
		Mentions []json.RawMessage `json:"mentions"`
	}
	if err := c.postJSON(ctx, c.endpoint("/mentions/wait", nil), body, &resp); err != nil {
		return nil, err
	}

	// Malformed mentions are dropped rather than failing the whole poll.
	mentions := make([]models.Mention, 0, len(resp.Mentions))
	for _, raw := range resp.Mentions {
		result, err := validation.ValidateMention(raw)
		if err != nil || !result.Valid {
			continue
		}
		var m models.Mention
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		mentions = append(mentions, m)
	}
	return mentions, nil
}

// SendMessage posts a reply into a thread, mentioning the original sender.
func (c *Client) SendMessage(ctx context.Context, threadID, content string, mentions []string) error {
	msg := models.Message{
		ID:       uuid.New().String(),
		ThreadID: threadID,
		SenderID: c.config.AgentID,
		Content:  content,
		Mentions: mentions,
		SentAt:   time.Now().UTC().Format(time.RFC3339),
	}

	_, err := c.executeWithRetry(ctx, func(ctx context.Context) (interface{}, error) {
		return nil, c.postJSON(ctx, c.endpoint("/messages", nil), msg, nil)
	}, "send-message")
	if err != nil {
		return errors.NewSendMessageFailedError(threadID, err)
	}
	return nil
}

// HealthCheck verifies the server is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.ConnectTimeout)
	defer cancel()

	req, err := http.NewRequest(http.MethodGet, c.endpoint("/health", nil), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("coral health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("coral health check failed: status %d", resp.StatusCode)
	}
	return nil
}

// endpoint joins the base URL with a path and optional query parameters.
func (c *Client) endpoint(path string, query url.Values) string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	if len(query) == 0 {
		return base + path
	}
	return base + path + "?" + query.Encode()
}

// postJSON sends a JSON body and optionally decodes a JSON response into out.
// A 204 leaves out untouched.
func (c *Client) postJSON(ctx context.Context, endpoint string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("coral server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// executeWithRetry executes an operation with exponential backoff.
// Only retryable errors (timeouts, connection issues) are retried.
func (c *Client) executeWithRetry(
	ctx context.Context,
	commandFunc func(context.Context) (interface{}, error),
	operationName string,
) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryConfig.MaxRetries; attempt++ {
		result, err := commandFunc(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isRetryableCoralError(err) || attempt == c.config.RetryConfig.MaxRetries {
			return nil, c.mapCoralError(err, operationName, attempt)
		}

		delay := c.config.RetryConfig.BaseDelay * time.Duration(1<<attempt)
		if delay > c.config.RetryConfig.MaxDelay {
			delay = c.config.RetryConfig.MaxDelay
		}

		select {
		case <-time.After(delay):
			// Retry
		case <-ctx.Done():
			return nil, fmt.Errorf("operation %s cancelled after %d attempts: %w", operationName, attempt, ctx.Err())
		}
	}

	return nil, fmt.Errorf("operation %s failed after %d retries: %w", operationName, c.config.RetryConfig.MaxRetries, lastErr)
}

// isRetryableCoralError checks if the error is transient and should be retried.
func isRetryableCoralError(err error) bool {
	msg := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
		"status 502",
		"status 503",
		"status 504",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

// mapCoralError converts transport errors into standardized application errors.
func (c *Client) mapCoralError(err error, operation string, attempt int) error {
	msg := err.Error()
	lowerMsg := strings.ToLower(msg)

	enhancedMsg := fmt.Sprintf("coral operation '%s' failed", operation)
	if attempt > 0 {
		enhancedMsg += fmt.Sprintf(" after %d attempts", attempt)
	}

	switch {
	case strings.Contains(lowerMsg, "timeout") ||
		strings.Contains(lowerMsg, "deadline exceeded"):
		return errors.NewCoralTimeoutError(fmt.Sprintf("%s: %s", enhancedMsg, msg))

	case strings.Contains(lowerMsg, "connection refused") ||
		strings.Contains(lowerMsg, "connection reset") ||
		strings.Contains(lowerMsg, "unavailable") ||
		strings.Contains(lowerMsg, "unreachable"):
		return errors.NewCoralUnavailableError(fmt.Errorf("%s: %s", enhancedMsg, msg))

	default:
		return errors.NewCoralUnavailableError(fmt.Errorf("%s: %s", enhancedMsg, msg))
	}
}
