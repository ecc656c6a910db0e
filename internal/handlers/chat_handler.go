package handlers

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopfront/internal/api"
	"shopfront/internal/viewstate"
)

// chatCookie identifies a visitor's chat thread across requests.
const chatCookie = "chat_id"

// ChatHandler owns the support-chat widget state: one thread per visitor,
// keyed by cookie.
type ChatHandler struct {
	chat    *api.ChatService
	mu      sync.Mutex
	threads map[string]*viewstate.ChatThread
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat *api.ChatService) *ChatHandler {
	return &ChatHandler{
		chat:    chat,
		threads: make(map[string]*viewstate.ChatThread),
	}
}

// RegisterRoutes registers the chat routes.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/chat", h.HandleGetThread)
	router.Post("/chat", h.HandleSend)
}

// HandleGetThread renders the visitor's message history.
func (h *ChatHandler) HandleGetThread(c *fiber.Ctx) error {
	thread := h.threadFor(c)
	return c.JSON(fiber.Map{"messages": thread.Messages()})
}

// HandleSend posts one visitor message and renders the updated history.
// Blank messages and sends racing an in-flight one are ignored rather than
// treated as errors; the thread itself appends a fallback assistant reply
// when the backend call fails.
func (h *ChatHandler) HandleSend(c *fiber.Ctx) error {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	thread := h.threadFor(c)
	accepted := thread.Send(c.Context(), body.Message)

	return c.JSON(fiber.Map{
		"accepted": accepted,
		"messages": thread.Messages(),
	})
}

// threadFor finds or creates the thread behind the visitor's chat cookie.
func (h *ChatHandler) threadFor(c *fiber.Ctx) *viewstate.ChatThread {
	id := c.Cookies(chatCookie)
	if id == "" {
		id = uuid.New().String()
		c.Cookie(&fiber.Cookie{Name: chatCookie, Value: id, HTTPOnly: true})
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	thread, ok := h.threads[id]
	if !ok {
		thread = viewstate.NewChatThread(h.chat)
		h.threads[id] = thread
	}
	return thread
}
