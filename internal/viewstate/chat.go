package viewstate

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"shopfront/internal/api"
	"shopfront/internal/models"
)

// chatFallback is appended as an assistant message when the send fails;
// the chat never shows an error banner.
const chatFallback = "Sorry, something went wrong. Please try again."

// ChatThread is the support-chat widget state: the visible history plus a
// stable visitor id. One send is in flight at a time; further sends are
// ignored until it resolves.
type ChatThread struct {
	mu       sync.Mutex
	chat     *api.ChatService
	userID   string
	messages []models.ChatMessage
	sending  bool
}

// NewChatThread creates an empty thread with a fresh visitor id.
func NewChatThread(chat *api.ChatService) *ChatThread {
	return &ChatThread{
		chat:   chat,
		userID: uuid.New().String(),
	}
}

// Send appends the visitor's message and asks the backend for a reply.
// Blank input and sends issued while another is in flight are dropped; the
// return value reports whether the message was accepted.
func (t *ChatThread) Send(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}

	t.mu.Lock()
	if t.sending {
		t.mu.Unlock()
		return false
	}
	t.sending = true
	t.messages = append(t.messages, models.ChatMessage{Role: models.ChatRoleUser, Content: input})
	history := make([]models.ChatMessage, len(t.messages))
	copy(history, t.messages)
	t.mu.Unlock()

	reply, err := t.chat.Send(ctx, history, t.userID)
	if err != nil {
		reply = chatFallback
	}

	t.mu.Lock()
	t.messages = append(t.messages, models.ChatMessage{Role: models.ChatRoleAssistant, Content: reply})
	t.sending = false
	t.mu.Unlock()
	return true
}

// Messages returns a copy of the visible history.
func (t *ChatThread) Messages() []models.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.ChatMessage, len(t.messages))
	copy(out, t.messages)
	return out
}

// UserID returns the stable visitor id sent with every chat request.
func (t *ChatThread) UserID() string {
	return t.userID
}
