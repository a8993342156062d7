package models

import (
	"time"
)

// CreditWallet holds a user's spendable credit balance. One wallet per user,
// created lazily on first need. Every mutation goes through the wallet
// ledger while holding the row lock; the balance never goes negative.
type CreditWallet struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID         int64     `json:"user_id" gorm:"uniqueIndex;not null"`
	BalanceCredits int64     `json:"balance_credits" gorm:"not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreditTransaction is an immutable ledger row. Rows are append-only: the sum
// of deltas for a user always equals the wallet balance.
type CreditTransaction struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID           int64     `json:"user_id" gorm:"index;not null"`
	ChallengeID      *int64    `json:"challenge_id,omitempty"`
	CreditPurchaseID *int64    `json:"credit_purchase_id,omitempty"`
	DeltaCredits     int64     `json:"delta_credits" gorm:"not null"`
	TransactionType  string    `json:"transaction_type" gorm:"not null"`
	CreatedAt        time.Time `json:"created_at"`
}

// Ledger transaction type tags.
const (
	TransactionTypePurchase    = "purchase"
	TransactionTypeAttackSpend = "attack_spend"
)

// CreditPurchase is a credit top-up order backed by a hosted checkout.
// ProviderPaymentID stays nil until the provider assigns a reference; the
// wallet is credited exactly once, on the first transition into "paid".
type CreditPurchase struct {
	ID                int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID            int64     `json:"user_id" gorm:"index;not null"`
	ProviderPaymentID *string   `json:"provider_payment_id,omitempty" gorm:"uniqueIndex"`
	AmountCents       int64     `json:"amount_cents" gorm:"not null"`
	CreditsPurchased  int64     `json:"credits_purchased" gorm:"not null"`
	Status            string    `json:"status" gorm:"not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
