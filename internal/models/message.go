// internal/models/message.go
package models

import "time"

// Mention represents a message in which this agent was mentioned, as
// delivered by the Coral server's wait-for-mentions endpoint.
type Mention struct {
	MessageID string   `json:"id"`
	ThreadID  string   `json:"threadId"`
	SenderID  string   `json:"senderId"`
	Content   string   `json:"content"`
	Timestamp int64    `json:"timestamp,omitempty"`
	Mentions  []string `json:"mentions,omitempty"`
}

// Message is an outbound thread message.
type Message struct {
	ID       string   `json:"id,omitempty"`
	ThreadID string   `json:"threadId"`
	SenderID string   `json:"senderId"`
	Content  string   `json:"content"`
	Mentions []string `json:"mentions,omitempty"`
	SentAt   string   `json:"sentAt,omitempty"`
}

// SolutionRecord is the cached form of a solved problem.
type SolutionRecord struct {
	Category  string    `json:"category"`
	Text      string    `json:"text"`
	Refined   bool      `json:"refined"`
	CreatedAt time.Time `json:"createdAt"`
}

// RegistrationRequest announces this agent to the Coral server.
type RegistrationRequest struct {
	AgentID          string `json:"agentId"`
	AgentDescription string `json:"agentDescription"`
}

// WaitForMentionsRequest is the long-poll request body.
type WaitForMentionsRequest struct {
	AgentID   string `json:"agentId"`
	TimeoutMs int    `json:"timeoutMs"`
}

// WaitForMentionsResponse wraps the mentions returned by one poll.
type WaitForMentionsResponse struct {
	Mentions []Mention `json:"mentions"`
}
