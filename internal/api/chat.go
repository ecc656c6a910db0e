package api

import (
	"context"
	"net/http"

	"shopfront/internal/models"
)

// ChatService sends support-chat conversations to the backend assistant.
type ChatService struct {
	client *Client
}

// NewChatService creates a new ChatService.
func NewChatService(client *Client) *ChatService {
	return &ChatService{client: client}
}

// Send posts the full message history and returns the assistant's reply.
func (s *ChatService) Send(ctx context.Context, messages []models.ChatMessage, userID string) (string, error) {
	req := models.ChatRequest{Messages: messages, UserID: userID}
	var resp models.ChatResponse
	if err := s.client.do(ctx, http.MethodPost, "/chat", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
