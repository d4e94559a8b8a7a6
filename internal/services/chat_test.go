package services

import (
	"encoding/json"
	"testing"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

func TestSendPersistsAndBroadcasts(t *testing.T) {
	store := storage.NewMemoryStore()
	sender, _ := store.CreateUser(&models.User{Name: "Ravi", Email: "ravi@delitruck.in"})
	hub := &fakeHub{}
	svc := NewChatService(store, hub)

	msg, err := svc.Send(sender.ID, "loading done at Majestic", "")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.Type != models.MessageTypeText {
		t.Errorf("empty type defaulted to %q, want %q", msg.Type, models.MessageTypeText)
	}
	if msg.SenderName != "Ravi" {
		t.Errorf("sender name = %q, want Ravi", msg.SenderName)
	}

	all, _ := store.GetAllMessages()
	if len(all) != 1 {
		t.Fatalf("stored messages = %d, want 1", len(all))
	}

	if len(hub.payloads) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(hub.payloads))
	}
	var frame models.MessageWithSender
	if err := json.Unmarshal(hub.payloads[0], &frame); err != nil {
		t.Fatalf("broadcast payload is not JSON: %v", err)
	}
	if frame.Content != "loading done at Majestic" {
		t.Errorf("broadcast content = %q", frame.Content)
	}
	if frame.SenderName != "Ravi" {
		t.Errorf("broadcast sender name = %q, want Ravi", frame.SenderName)
	}
}

func TestSendUnknownSenderStillDelivers(t *testing.T) {
	store := storage.NewMemoryStore()
	hub := &fakeHub{}
	svc := NewChatService(store, hub)

	msg, err := svc.Send("ghost", "hello", models.MessageTypeText)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.SenderName != "Unknown" {
		t.Errorf("sender name = %q, want Unknown", msg.SenderName)
	}
	if len(hub.payloads) != 1 {
		t.Errorf("broadcasts = %d, want 1", len(hub.payloads))
	}
}

func TestSendImageMessage(t *testing.T) {
	store := storage.NewMemoryStore()
	sender, _ := store.CreateUser(&models.User{Name: "Asha", Email: "asha@delitruck.in"})
	svc := NewChatService(store, &fakeHub{})

	msg, err := svc.Send(sender.ID, "data:image/jpeg;base64,...", models.MessageTypeImage)
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.Type != models.MessageTypeImage {
		t.Errorf("type = %q, want %q", msg.Type, models.MessageTypeImage)
	}
}
