package services

import (
	"encoding/json"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// ChatService persists group chat messages and fans them out through
// the hub. The hub itself keeps no history.
type ChatService struct {
	store storage.Store
	hub   Broadcaster
}

// NewChatService creates a new chat service
func NewChatService(store storage.Store, hub Broadcaster) *ChatService {
	return &ChatService{store: store, hub: hub}
}

// Send stores the message, joins the sender's name and broadcasts the
// result to every connection.
func (s *ChatService) Send(senderID, content, messageType string) (*models.MessageWithSender, error) {
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	msg, err := s.store.CreateMessage(&models.Message{
		SenderID: senderID,
		Content:  content,
		Type:     messageType,
	})
	if err != nil {
		return nil, err
	}

	senderName := "Unknown"
	if sender, err := s.store.GetUser(senderID); err == nil {
		senderName = sender.Name
	}

	out := &models.MessageWithSender{Message: *msg, SenderName: senderName}
	payload, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	s.hub.Broadcast(payload)

	return out, nil
}
