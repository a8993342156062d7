package models

import (
	"time"
)

// Challenge is a prompt-injection puzzle. The secret is never serialized in
// API responses; the prize pool grows with every attack message and its row
// is locked FOR UPDATE by every mutating path.
type Challenge struct {
	ID                  int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title               string    `json:"title" gorm:"not null"`
	Slug                string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description         string    `json:"description" gorm:"type:text;not null"`
	Difficulty          string    `json:"difficulty" gorm:"not null"`
	Secret              string    `json:"-" gorm:"not null"`
	CostPerAttemptCents int64     `json:"cost_per_attempt_cents" gorm:"not null"`
	AttackCostCredits   int64     `json:"attack_cost_credits" gorm:"not null"`
	PrizePoolCents      int64     `json:"prize_pool_cents" gorm:"not null"`
	IsActive            bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Supported difficulty labels.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)
