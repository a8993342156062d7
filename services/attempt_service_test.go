package services

import (
	"errors"
	"testing"

	"prompt-arena/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNormalizeSecretMatchesCaseAndWhitespaceInsensitive(t *testing.T) {
	assert.Equal(t, NormalizeSecret("Saffron-Kite "), NormalizeSecret("saffron-kite"))
	assert.Equal(t, NormalizeSecret("  AMBER-VAULT-42\n"), NormalizeSecret("amber-vault-42"))
}

func TestNormalizeSecretRejectsNearMisses(t *testing.T) {
	assert.NotEqual(t, NormalizeSecret("saffron-kite-x"), NormalizeSecret("saffron-kite"))
	assert.NotEqual(t, NormalizeSecret("saffron kite"), NormalizeSecret("saffron-kite"))
	// Interior whitespace is significant; only surrounding whitespace is trimmed.
	assert.NotEqual(t, NormalizeSecret("saffron- kite"), NormalizeSecret("saffron-kite"))
}

func TestAdmitAttempt(t *testing.T) {
	assert.ErrorIs(t, AdmitAttempt(nil, 0), ErrPaymentRequired)

	open := &models.Payment{ID: 1000, Status: models.StatusOpen}
	assert.ErrorIs(t, AdmitAttempt(open, 0), ErrPaymentRequired)

	pending := &models.Payment{ID: 1000, Status: models.StatusPending}
	assert.ErrorIs(t, AdmitAttempt(pending, 0), ErrPaymentRequired)

	paid := &models.Payment{ID: 1000, Status: models.StatusPaid}
	require.NoError(t, AdmitAttempt(paid, 0))
}

func TestPaymentAuthorizesAtMostOneAttempt(t *testing.T) {
	paid := &models.Payment{ID: 1000, Status: models.StatusPaid}
	require.NoError(t, AdmitAttempt(paid, 0))
	assert.ErrorIs(t, AdmitAttempt(paid, 1), ErrPaymentAlreadyUsed)
	assert.ErrorIs(t, AdmitAttempt(paid, 3), ErrPaymentAlreadyUsed)

	// The losing side of a concurrent duplicate insert resolves to the same
	// conflict as the admission pre-check.
	assert.ErrorIs(t, settleInsertError(gorm.ErrDuplicatedKey), ErrPaymentAlreadyUsed)

	dbErr := errors.New("connection reset")
	assert.Equal(t, dbErr, settleInsertError(dbErr))
}
