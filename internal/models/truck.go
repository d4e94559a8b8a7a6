package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Truck availability status
const (
	TruckStatusAvailable     = "available"
	TruckStatusOnTrip        = "on_trip"
	TruckStatusOnMaintenance = "on_maintenance"
)

// Truck represents a vehicle in the fleet
type Truck struct {
	ID          string `json:"id" gorm:"primaryKey"`
	TruckNumber string `json:"truckNumber" gorm:"uniqueIndex"`
	Capacity    int    `json:"capacity"` // in crates
	Status      string `json:"status" gorm:"default:available"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook to auto-generate the ID and normalize the truck number
func (t *Truck) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.TruckNumber = strings.ToUpper(strings.ReplaceAll(t.TruckNumber, " ", ""))
	if t.Status == "" {
		t.Status = TruckStatusAvailable
	}
	return nil
}
