package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered player. The Reference value is a stable external
// identifier that can be shared with other systems without leaking the
// sequential primary key.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Reference    uuid.UUID `json:"reference" gorm:"type:uuid;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
