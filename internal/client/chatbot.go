package client

import (
	"context"

	"github.com/ukydev/ev-rental-console/internal/models"
)

// ChatbotService wraps the chatbot endpoints.
type ChatbotService struct {
	t *Transport
}

// NewChatbotService creates a chatbot service on top of t.
func NewChatbotService(t *Transport) *ChatbotService {
	return &ChatbotService{t: t}
}

// CreateSession starts a conversation and returns its session id.
func (s *ChatbotService) CreateSession(ctx context.Context) (string, error) {
	var out models.ChatSession
	if err := s.t.post(ctx, "/api/chatbot/conversations", struct{}{}, &out); err != nil {
		return "", err
	}
	if out.SessionID == "" {
		return "", &Error{Kind: KindRejected, Message: "backend returned an empty session id"}
	}
	return out.SessionID, nil
}

// Send posts a message to a session and returns the assistant reply.
func (s *ChatbotService) Send(ctx context.Context, message, sessionID string) (*models.ChatReply, error) {
	body := struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
	}{Message: message, SessionID: sessionID}

	var out models.ChatReply
	if err := s.t.post(ctx, "/api/chatbot/message", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History returns the stored transcript of a session.
func (s *ChatbotService) History(ctx context.Context, sessionID string) (*models.ChatHistory, error) {
	var out models.ChatHistory
	if err := s.t.get(ctx, "/api/chatbot/history/"+escape(sessionID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
