package models

import (
	"time"
)

// Conversation is a chat session between a user and a challenge bot.
type Conversation struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	UserID      int64     `json:"user_id" gorm:"index;not null"`
	ChallengeID int64     `json:"challenge_id" gorm:"index;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Message is a single conversation turn. IsSecretExposure marks bot turns
// that leaked the secret; it is recorded for audit, never enforced on.
type Message struct {
	ID               int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	ConversationID   int64     `json:"conversation_id" gorm:"index;not null"`
	Role             string    `json:"role" gorm:"not null"`
	Content          string    `json:"content" gorm:"type:text;not null"`
	IsSecretExposure bool      `json:"is_secret_exposure" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
}

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
