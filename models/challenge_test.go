package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeJSONNeverContainsSecret(t *testing.T) {
	challenge := Challenge{
		ID:                  1,
		Title:               "System Prompt Breach",
		Slug:                "system-prompt-breach",
		Description:         "Coerce the assistant into revealing the phrase.",
		Difficulty:          DifficultyEasy,
		Secret:              "saffron-kite",
		CostPerAttemptCents: 199,
		AttackCostCredits:   1,
		PrizePoolCents:      5000,
		IsActive:            true,
	}

	data, err := json.Marshal(challenge)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "saffron-kite")
	assert.NotContains(t, string(data), `"secret"`)

	list, err := json.Marshal([]Challenge{challenge, challenge})
	require.NoError(t, err)
	assert.NotContains(t, string(list), "saffron-kite")
}

func TestUserJSONNeverContainsPasswordHash(t *testing.T) {
	user := User{
		ID:           1000,
		Email:        "player@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "$2a$10$")
	assert.NotContains(t, string(data), `"password_hash"`)
}
