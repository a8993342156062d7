package services

import (
	"testing"

	"prompt-arena/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: 1042, Email: "player@example.com"}

	token, err := CreateAccessToken(user, "test-secret", 24)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := DecodeAccessToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, int64(1042), userID)
}

func TestDecodeAccessTokenWrongSecret(t *testing.T) {
	user := &models.User{ID: 1042, Email: "player@example.com"}
	token, err := CreateAccessToken(user, "test-secret", 24)
	require.NoError(t, err)

	_, err = DecodeAccessToken(token, "other-secret")
	assert.Error(t, err)
}

func TestDecodeAccessTokenExpired(t *testing.T) {
	user := &models.User{ID: 1042, Email: "player@example.com"}
	token, err := CreateAccessToken(user, "test-secret", -1)
	require.NoError(t, err)

	_, err = DecodeAccessToken(token, "test-secret")
	assert.Error(t, err)
}

func TestDecodeAccessTokenGarbage(t *testing.T) {
	_, err := DecodeAccessToken("not.a.token", "test-secret")
	assert.Error(t, err)

	_, err = DecodeAccessToken("", "test-secret")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
	assert.False(t, VerifyPassword("", hash))
}
