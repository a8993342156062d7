package services

import "errors"

// Sentinel errors crossing the service/handler boundary. Handlers map these
// to HTTP statuses; everything else is an internal error.
var (
	ErrInsufficientCredits  = errors.New("insufficient credits")
	ErrProviderUnavailable  = errors.New("payment provider unavailable")
	ErrChallengeNotFound    = errors.New("challenge not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrPaymentRequired      = errors.New("paid payment required")
	ErrPaymentAlreadyUsed   = errors.New("payment already used for an attempt")
)
