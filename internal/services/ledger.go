package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/delitruck/delitruck-backend/internal/models"
	"github.com/delitruck/delitruck-backend/internal/storage"
)

// CrateService is the per-route, per-day crate ledger. Every observable
// change to a closing count goes through applyDelta, so each change is
// paired with exactly one adjustment row (a zero delta is the only
// exception).
type CrateService struct {
	store storage.Store

	// Serializes racing mutations of the same (route, day) balance so
	// a concurrent adjust cannot lose an update between load and save.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCrateService creates a new crate ledger service
func NewCrateService(store storage.Store) *CrateService {
	return &CrateService{
		store: store,
		locks: make(map[string]*sync.Mutex),
	}
}

// Adjust applies a signed delta to the balance for (routeID, date),
// seeding the day from the route's default crate count when absent.
func (s *CrateService) Adjust(routeID string, date time.Time, delta int, actorID, remarks string) (*models.CrateDailyBalance, error) {
	day := normalizeDate(date)
	unlock := s.lockDay(routeID, day)
	defer unlock()

	balance, err := s.loadOrSeed(routeID, day)
	if err != nil {
		return nil, err
	}
	return s.applyDelta(balance, delta, actorID, remarks)
}

// Set moves the balance for (routeID, date) to an absolute count. The
// change is expressed as a delta against the current closing count and
// fed through the same apply-and-audit path as Adjust; setting the
// balance to its current value writes no adjustment row.
func (s *CrateService) Set(routeID string, date time.Time, count int, actorID, remarks string) (*models.CrateDailyBalance, error) {
	day := normalizeDate(date)
	unlock := s.lockDay(routeID, day)
	defer unlock()

	balance, err := s.loadOrSeed(routeID, day)
	if err != nil {
		return nil, err
	}
	return s.applyDelta(balance, count-balance.ClosingCount, actorID, remarks)
}

// DailyBalances returns the recorded balances for the given routes
// between start and end inclusive. Days without a recorded row are not
// synthesized; callers back-fill from the route's default count.
func (s *CrateService) DailyBalances(routeIDs []string, start, end time.Time) ([]*models.CrateDailyBalance, error) {
	if len(routeIDs) == 0 {
		return nil, nil
	}
	return s.store.GetDailyBalancesByDateRange(routeIDs, normalizeDate(start), normalizeDate(end))
}

// Adjustments returns the audit trail for one balance row.
func (s *CrateService) Adjustments(balanceID string) ([]*models.CrateAdjustment, error) {
	return s.store.GetAdjustmentsByBalance(balanceID)
}

// applyDelta is the single mutation primitive: upsert the new closing
// count, then append the audit row recording how it was reached.
func (s *CrateService) applyDelta(balance *models.CrateDailyBalance, delta int, actorID, remarks string) (*models.CrateDailyBalance, error) {
	balance.ClosingCount += delta
	if err := s.store.SaveDailyBalance(balance); err != nil {
		return nil, err
	}
	if delta == 0 {
		return balance, nil
	}

	_, err := s.store.CreateCrateAdjustment(&models.CrateAdjustment{
		BalanceID: balance.ID,
		Delta:     delta,
		ActorID:   actorID,
		Remarks:   remarks,
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// loadOrSeed fetches the day's balance or builds a fresh one opening at
// the route's default crate count.
func (s *CrateService) loadOrSeed(routeID string, day time.Time) (*models.CrateDailyBalance, error) {
	balance, err := s.store.GetDailyBalance(routeID, day)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	route, err := s.store.GetRoute(routeID)
	if err != nil {
		return nil, fmt.Errorf("route: %w", err)
	}
	return &models.CrateDailyBalance{
		RouteID:      routeID,
		Date:         day,
		OpeningCount: route.CrateCount,
		ClosingCount: route.CrateCount,
	}, nil
}

// lockDay takes the mutex for one (route, day) pair.
func (s *CrateService) lockDay(routeID string, day time.Time) func() {
	key := fmt.Sprintf("%s|%s", routeID, day.Format("2006-01-02"))

	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// normalizeDate truncates to UTC midnight so every sample within a day
// lands on the same balance row.
func normalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
