package models

import (
	"time"
)

// Payment is a one-off order that buys the right to submit a single secret
// guess for a challenge. Provider statuses are stored verbatim.
type Payment struct {
	ID                int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID            int64     `json:"user_id" gorm:"index;not null"`
	ChallengeID       int64     `json:"challenge_id" gorm:"index;not null"`
	ProviderPaymentID *string   `json:"provider_payment_id,omitempty" gorm:"uniqueIndex"`
	AmountCents       int64     `json:"amount_cents" gorm:"not null"`
	Status            string    `json:"status" gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Payment/purchase status values. StatusPending is local-only (no provider
// reference yet); the provider's status domain is opaque beyond "paid", the
// only value that triggers economic effects.
const (
	StatusPending  = "pending"
	StatusOpen     = "open"
	StatusPaid     = "paid"
	StatusFailed   = "failed"
	StatusExpired  = "expired"
	StatusCanceled = "canceled"
)
