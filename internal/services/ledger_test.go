package services

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

func seedRoute(t *testing.T, store *storage.MemoryStore, crateCount int) *models.Route {
	t.Helper()
	route, err := store.CreateRoute(&models.Route{
		RouteName:  "Yeshwanthpur - Hoskote",
		CrateCount: crateCount,
	})
	if err != nil {
		t.Fatalf("seed route: %v", err)
	}
	return route
}

func TestAdjustSeedsFromRouteDefault(t *testing.T) {
	store := storage.NewMemoryStore()
	route := seedRoute(t, store, 100)
	svc := NewCrateService(store)
	day := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)

	balance, err := svc.Adjust(route.ID, day, -5, "admin-1", "two crates broken, three lost")
	if err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}
	if balance.OpeningCount != 100 {
		t.Errorf("opening = %d, want 100", balance.OpeningCount)
	}
	if balance.ClosingCount != 95 {
		t.Errorf("closing = %d, want 95", balance.ClosingCount)
	}

	adjustments, err := svc.Adjustments(balance.ID)
	if err != nil {
		t.Fatalf("Adjustments() error = %v", err)
	}
	if len(adjustments) != 1 {
		t.Fatalf("adjustment rows = %d, want 1", len(adjustments))
	}
	if adjustments[0].Delta != -5 {
		t.Errorf("delta = %d, want -5", adjustments[0].Delta)
	}
	if adjustments[0].ActorID != "admin-1" {
		t.Errorf("actor = %q, want admin-1", adjustments[0].ActorID)
	}
}

func TestAdjustAccumulates(t *testing.T) {
	store := storage.NewMemoryStore()
	route := seedRoute(t, store, 100)
	svc := NewCrateService(store)
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	deltas := []int{-5, -3, 2, -1}
	var balance *models.CrateDailyBalance
	var err error
	for _, d := range deltas {
		balance, err = svc.Adjust(route.ID, day, d, "admin-1", "")
		if err != nil {
			t.Fatalf("Adjust(%d) error = %v", d, err)
		}
	}

	// closing == opening + sum of audited deltas, always.
	want := 100
	for _, d := range deltas {
		want += d
	}
	if balance.ClosingCount != want {
		t.Errorf("closing = %d, want %d", balance.ClosingCount, want)
	}

	adjustments, _ := svc.Adjustments(balance.ID)
	if len(adjustments) != len(deltas) {
		t.Errorf("adjustment rows = %d, want %d", len(adjustments), len(deltas))
	}
	sum := balance.OpeningCount
	for _, adj := range adjustments {
		sum += adj.Delta
	}
	if sum != balance.ClosingCount {
		t.Errorf("opening + deltas = %d, closing = %d", sum, balance.ClosingCount)
	}
}

func TestSetIsAuditedAsDelta(t *testing.T) {
	store := storage.NewMemoryStore()
	route := seedRoute(t, store, 100)
	svc := NewCrateService(store)
	day := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

	balance, err := svc.Set(route.ID, day, 90, "admin-1", "evening recount")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if balance.ClosingCount != 90 {
		t.Errorf("closing = %d, want 90", balance.ClosingCount)
	}

	adjustments, _ := svc.Adjustments(balance.ID)
	if len(adjustments) != 1 {
		t.Fatalf("adjustment rows = %d, want 1", len(adjustments))
	}
	if adjustments[0].Delta != -10 {
		t.Errorf("audited delta = %d, want -10", adjustments[0].Delta)
	}
}

func TestSetToCurrentValueWritesNoAudit(t *testing.T) {
	store := storage.NewMemoryStore()
	route := seedRoute(t, store, 100)
	svc := NewCrateService(store)
	day := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

	balance, err := svc.Set(route.ID, day, 100, "admin-1", "confirmed count")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if balance.ClosingCount != 100 {
		t.Errorf("closing = %d, want 100", balance.ClosingCount)
	}
	adjustments, _ := svc.Adjustments(balance.ID)
	if len(adjustments) != 0 {
		t.Errorf("same-value set wrote %d adjustment rows, want 0", len(adjustments))
	}
}

func TestAdjustZeroDeltaWritesNoAudit(t *testing.T) {
	store := storage.NewMemoryStore()
	route := seedRoute(t, store, 100)
	svc := NewCrateService(store)
	day := time.Date(2026, 8, 21, 0, 0, 0, 0, time.UTC)

	balance, err := svc.Adjust(route.ID, day, 0, "admin-1", "")
	if err != nil {
		t.Fatalf("Adjust(0) error = %v", err)
	}
	adjustments, _ := svc.Adjustments(balance.ID)
	if len(adjustments) != 0 {
		t.Errorf("zero adjust wrote %d adjustment rows, want 0", len(adjustments))
	}
}

func TestAdjustUnknownRoute(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewCrateService(store)

	if _, err := svc.Adjust("nope", time.Now(), -1, "admin-1", ""); err == nil {
		t.Error("Adjust() on unknown route succeeded, want error")
	}
}

func TestSameDayDifferentHoursShareBalance(t *testing.T) {
	store := storage.NewMemoryStore()
	route := seedRoute(t, store, 50)
	svc := NewCrateService(store)

	morning := time.Date(2026, 8, 22, 6, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 8, 22, 21, 45, 0, 0, time.UTC)

	first, err := svc.Adjust(route.ID, morning, -2, "admin-1", "")
	if err != nil {
		t.Fatalf("morning Adjust() error = %v", err)
	}
	second, err := svc.Adjust(route.ID, evening, -3, "admin-1", "")
	if err != nil {
		t.Fatalf("evening Adjust() error = %v", err)
	}
	if first.ID != second.ID {
		t.Error("same-day adjustments landed on different balance rows")
	}
	if second.ClosingCount != 45 {
		t.Errorf("closing = %d, want 45", second.ClosingCount)
	}
}

func TestConcurrentAdjustsLoseNothing(t *testing.T) {
	store := storage.NewMemoryStore()
	route := seedRoute(t, store, 1000)
	svc := NewCrateService(store)
	day := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if _, err := svc.Adjust(route.ID, day, -1, "admin-1", fmt.Sprintf("worker %d", n)); err != nil {
				t.Errorf("Adjust() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	balance, err := store.GetDailyBalance(route.ID, day)
	if err != nil {
		t.Fatalf("GetDailyBalance() error = %v", err)
	}
	if balance.ClosingCount != 1000-workers {
		t.Errorf("closing = %d, want %d", balance.ClosingCount, 1000-workers)
	}
	adjustments, _ := svc.Adjustments(balance.ID)
	if len(adjustments) != workers {
		t.Errorf("adjustment rows = %d, want %d", len(adjustments), workers)
	}
}

func TestDailyBalancesRange(t *testing.T) {
	store := storage.NewMemoryStore()
	routeA := seedRoute(t, store, 100)
	routeB := seedRoute(t, store, 80)
	svc := NewCrateService(store)

	days := []time.Time{
		time.Date(2026, 8, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
	}
	for _, day := range days {
		if _, err := svc.Adjust(routeA.ID, day, -1, "admin-1", ""); err != nil {
			t.Fatalf("Adjust() error = %v", err)
		}
	}
	if _, err := svc.Adjust(routeB.ID, days[1], -4, "admin-1", ""); err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}

	got, err := svc.DailyBalances([]string{routeA.ID, routeB.ID}, days[1], days[2])
	if err != nil {
		t.Fatalf("DailyBalances() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("balances in range = %d, want 3", len(got))
	}
	for _, b := range got {
		if b.Date.Before(days[1]) || b.Date.After(days[2]) {
			t.Errorf("balance for %s outside requested range", b.Date.Format("2006-01-02"))
		}
	}
}

func TestDailyBalancesNoRoutes(t *testing.T) {
	svc := NewCrateService(storage.NewMemoryStore())
	got, err := svc.DailyBalances(nil, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("DailyBalances() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("balances = %d, want 0", len(got))
	}
}
