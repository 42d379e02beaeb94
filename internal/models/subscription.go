package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscription records a user's paid plan. A user with no row, or an expired
// row, is on the free tier.
type Subscription struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Tier      string     `gorm:"not null;default:'free'" json:"tier"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Active reports whether the subscription still grants its tier.
func (s *Subscription) Active() bool {
	return s.ExpiresAt == nil || s.ExpiresAt.After(time.Now())
}

func (Subscription) TableName() string {
	return "subscriptions"
}
