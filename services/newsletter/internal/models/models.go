package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Subscriber emails are stored trimmed and lowercased. Verified has no
// column default because gorm would skip an explicit false.
type Subscriber struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Email     string    `gorm:"uniqueIndex;not null"  json:"email"`
	Verified  bool      `gorm:"not null;index"        json:"verified"`
	CreatedAt time.Time `gorm:"index"                 json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
