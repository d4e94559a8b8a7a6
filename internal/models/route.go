package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCrateCount seeds a route's daily crate balance when no count
// was recorded for a day yet.
const DefaultCrateCount = 100

// Route represents a recurring delivery route
type Route struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	RouteName   string `json:"routeName"`
	Notes       string `json:"notes"`
	CrateCount  int    `json:"crateCount" gorm:"default:100"` // default crates loaded per day

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CrateCount == 0 {
		r.CrateCount = DefaultCrateCount
	}
	return nil
}
