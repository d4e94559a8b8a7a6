package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message content types
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// Message is a chat message in the fleet group chat. Immutable once
// created; removed only by the retention job or an explicit delete.
type Message struct {
	ID       string `json:"id" gorm:"primaryKey"`
	SenderID string `json:"senderId" gorm:"index"`
	Content  string `json:"content"`
	Type     string `json:"type" gorm:"default:text"`

	CreatedAt time.Time `json:"createdAt"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Type == "" {
		m.Type = MessageTypeText
	}
	return nil
}

// MessageWithSender joins the sender's display name onto a message for
// broadcast and listing.
type MessageWithSender struct {
	Message
	SenderName string `json:"senderName"`
}
