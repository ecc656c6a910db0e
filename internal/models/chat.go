package models

// Chat message roles as the backend expects them.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn of the support-chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest carries the whole visible history plus an optional visitor id
// so the backend can keep per-visitor context.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	UserID   string        `json:"user_id,omitempty"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Message string `json:"message"`
}
