package models

import (
	"time"
)

// Attempt is a payment-gated secret guess. The unique index on PaymentID is
// the authoritative guard: a paid payment authorizes exactly one attempt,
// even under concurrent identical submissions.
type Attempt struct {
	ID              int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID          int64     `json:"user_id" gorm:"index;not null"`
	ChallengeID     int64     `json:"challenge_id" gorm:"index;not null"`
	PaymentID       int64     `json:"payment_id" gorm:"uniqueIndex;not null"`
	SubmittedSecret string    `json:"submitted_secret" gorm:"type:text;not null"`
	IsCorrect       bool      `json:"is_correct" gorm:"not null"`
	CreatedAt       time.Time `json:"created_at"`
}
