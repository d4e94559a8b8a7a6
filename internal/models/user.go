package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
)

// Driver availability status
const (
	UserStatusAvailable = "available"
	UserStatusOnTrip    = "on_trip"
	UserStatusOnLeave   = "on_leave"
)

// User represents an admin or a driver account
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Password string `json:"-"` // bcrypt hash, never serialized
	Role     string `json:"role" gorm:"default:driver"`
	Status   string `json:"status" gorm:"default:available"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate hook to auto-generate the ID and default the role/status
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = RoleDriver
	}
	if u.Status == "" {
		u.Status = UserStatusAvailable
	}
	return nil
}

// IsDriver reports whether the user can be assigned to trips
func (u *User) IsDriver() bool {
	return u.Role == RoleDriver
}
