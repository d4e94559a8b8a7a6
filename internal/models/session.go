package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionTTL is how long a login session stays valid.
const SessionTTL = 7 * 24 * time.Hour

// Session is an opaque login session. The cookie carries the session
// ID; the user ID is only ever read back through the session store.
type Session struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"index"`
	ExpiresAt time.Time `json:"expiresAt"`

	CreatedAt time.Time `json:"createdAt"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = time.Now().Add(SessionTTL)
	}
	return nil
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
