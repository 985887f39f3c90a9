package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a caller identity. Subject is the token subject, or "system" for the built-in user.
type User struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Subject string    `gorm:"type:text;not null;uniqueIndex" json:"subject"`
	Name    string    `gorm:"type:text;not null" json:"name"`
	Email   string    `gorm:"type:text;not null;default:''" json:"email,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

const SystemSubject = "system"

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
