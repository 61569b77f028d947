package models

import "time"

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatAction is a shortcut the assistant offers alongside a reply.
type ChatAction struct {
	Type  string                 `json:"type"`
	Label string                 `json:"label"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// ChatMetadata carries the optional extras of an assistant reply.
type ChatMetadata struct {
	Suggestions []string               `json:"suggestions,omitempty"`
	Actions     []ChatAction           `json:"actions,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
}

// ChatMessage is one entry of a chatbot conversation. It lives only as long
// as the widget session.
type ChatMessage struct {
	ID        string        `json:"id"`
	Role      ChatRole      `json:"role"`
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Metadata  *ChatMetadata `json:"metadata,omitempty"`
}

// ChatSession is returned when a conversation is created.
type ChatSession struct {
	SessionID string `json:"session_id"`
}

// ChatReply is the chatbot answer to a message.
type ChatReply struct {
	Message     string                 `json:"message"`
	SessionID   string                 `json:"session_id"`
	Suggestions []string               `json:"suggestions"`
	Actions     []ChatAction           `json:"actions"`
	Context     map[string]interface{} `json:"context"`
	Timestamp   time.Time              `json:"timestamp"`
}

// ChatHistory is the stored transcript of a session.
type ChatHistory struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}
