package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CrateDailyBalance is the per-route, per-day crate count. Date is
// truncated to UTC midnight. Invariant: ClosingCount equals
// OpeningCount plus the sum of all adjustment deltas for this row.
type CrateDailyBalance struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	RouteID      string    `json:"routeId" gorm:"uniqueIndex:idx_route_date"`
	Date         time.Time `json:"date" gorm:"uniqueIndex:idx_route_date"`
	OpeningCount int       `json:"openingCount"`
	ClosingCount int       `json:"closingCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *CrateDailyBalance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// CrateAdjustment is one append-only audit row recording how a daily
// balance changed. Never updated or deleted.
type CrateAdjustment struct {
	ID        string `json:"id" gorm:"primaryKey"`
	BalanceID string `json:"balanceId" gorm:"index"`
	Delta     int    `json:"delta"`
	ActorID   string `json:"actorId"`
	Remarks   string `json:"remarks"`

	CreatedAt time.Time `json:"createdAt"`
}

func (a *CrateAdjustment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
