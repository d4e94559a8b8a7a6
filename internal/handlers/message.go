package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/delitruck/delitruck-backend/internal/middleware"
	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// MessageHandler handles chat history requests. Live delivery happens
// over the websocket; this surface is for backfill and admin cleanup.
type MessageHandler struct {
	store storage.Store
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(store storage.Store) *MessageHandler {
	return &MessageHandler{store: store}
}

// GetAllMessages returns the chat history with sender names
func (h *MessageHandler) GetAllMessages(c *fiber.Ctx) error {
	messages, err := h.store.GetAllMessages()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch messages",
		})
	}
	return c.JSON(messages)
}

// CreateMessage stores a message without broadcasting it. Used by
// clients without a live socket.
func (h *MessageHandler) CreateMessage(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
		Type    string `json:"type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content is required",
		})
	}
	if req.Type != "" && req.Type != models.MessageTypeText && req.Type != models.MessageTypeImage {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid message type",
		})
	}

	senderID, _ := c.Locals(middleware.UserIDKey).(string)
	msg, err := h.store.CreateMessage(&models.Message{
		SenderID: senderID,
		Content:  req.Content,
		Type:     req.Type,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create message",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

// DeleteMessage removes one message by ID
func (h *MessageHandler) DeleteMessage(c *fiber.Ctx) error {
	if err := h.store.DeleteMessage(c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Message not found",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Message deleted successfully",
	})
}
