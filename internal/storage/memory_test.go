package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/delitruck/delitruck-backend/internal/models"
)

func TestSaveDailyBalanceUpsert(t *testing.T) {
	store := NewMemoryStore()
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	first := &models.CrateDailyBalance{
		RouteID:      "route-1",
		Date:         day,
		OpeningCount: 100,
		ClosingCount: 95,
	}
	if err := store.SaveDailyBalance(first); err != nil {
		t.Fatalf("SaveDailyBalance() error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("first save did not assign an ID")
	}

	// A second save for the same (route, day) replaces the row but keeps
	// its identity.
	second := &models.CrateDailyBalance{
		RouteID:      "route-1",
		Date:         day,
		OpeningCount: 100,
		ClosingCount: 90,
	}
	if err := store.SaveDailyBalance(second); err != nil {
		t.Fatalf("second SaveDailyBalance() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert changed the row ID: %q -> %q", first.ID, second.ID)
	}

	got, err := store.GetDailyBalance("route-1", day)
	if err != nil {
		t.Fatalf("GetDailyBalance() error = %v", err)
	}
	if got.ClosingCount != 90 {
		t.Errorf("closing = %d, want 90", got.ClosingCount)
	}
}

func TestGetDailyBalanceSeparatesDays(t *testing.T) {
	store := NewMemoryStore()
	monday := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	tuesday := monday.Add(24 * time.Hour)

	_ = store.SaveDailyBalance(&models.CrateDailyBalance{RouteID: "route-1", Date: monday, ClosingCount: 95})
	_ = store.SaveDailyBalance(&models.CrateDailyBalance{RouteID: "route-1", Date: tuesday, ClosingCount: 80})

	got, err := store.GetDailyBalance("route-1", monday)
	if err != nil {
		t.Fatalf("GetDailyBalance(monday) error = %v", err)
	}
	if got.ClosingCount != 95 {
		t.Errorf("monday closing = %d, want 95", got.ClosingCount)
	}

	if _, err := store.GetDailyBalance("route-1", tuesday.Add(24*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing day error = %v, want ErrNotFound", err)
	}
}

func TestGetAllMessagesJoinsSenderName(t *testing.T) {
	store := NewMemoryStore()
	sender, _ := store.CreateUser(&models.User{Name: "Ravi", Email: "ravi@delitruck.in"})
	_, _ = store.CreateMessage(&models.Message{SenderID: sender.ID, Content: "first"})
	_, _ = store.CreateMessage(&models.Message{SenderID: "deleted-user", Content: "second"})

	messages, err := store.GetAllMessages()
	if err != nil {
		t.Fatalf("GetAllMessages() error = %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	byContent := make(map[string]string)
	for _, msg := range messages {
		byContent[msg.Content] = msg.SenderName
	}
	if byContent["first"] != "Ravi" {
		t.Errorf("sender name = %q, want Ravi", byContent["first"])
	}
	if byContent["second"] != "Unknown" {
		t.Errorf("orphaned message sender name = %q, want Unknown", byContent["second"])
	}
}

func TestUpdateStatusUnknownID(t *testing.T) {
	store := NewMemoryStore()
	if err := store.UpdateUserStatus("nope", models.UserStatusAvailable); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateUserStatus() error = %v, want ErrNotFound", err)
	}
	if err := store.UpdateTruckStatus("nope", models.TruckStatusAvailable); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateTruckStatus() error = %v, want ErrNotFound", err)
	}
}
