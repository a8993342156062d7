package services

import (
	"testing"

	"prompt-arena/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPurchaseTransitionFirstPaid(t *testing.T) {
	effect, changed := PlanPurchaseTransition(models.StatusOpen, models.StatusPaid)
	require.True(t, changed)
	assert.Equal(t, models.StatusPaid, effect.NextStatus)
	assert.True(t, effect.CreditWallet)
}

func TestPlanPurchaseTransitionReplayIsNoOp(t *testing.T) {
	// Re-delivery of an already-synchronized status must do nothing,
	// no matter how many times it arrives.
	for i := 0; i < 5; i++ {
		_, changed := PlanPurchaseTransition(models.StatusPaid, models.StatusPaid)
		assert.False(t, changed)
	}
	_, changed := PlanPurchaseTransition(models.StatusOpen, models.StatusOpen)
	assert.False(t, changed)
	_, changed = PlanPurchaseTransition(models.StatusPending, models.StatusPending)
	assert.False(t, changed)
}

func TestPlanPurchaseTransitionNonPaidChange(t *testing.T) {
	effect, changed := PlanPurchaseTransition(models.StatusPending, models.StatusOpen)
	require.True(t, changed)
	assert.Equal(t, models.StatusOpen, effect.NextStatus)
	assert.False(t, effect.CreditWallet)

	effect, changed = PlanPurchaseTransition(models.StatusOpen, models.StatusExpired)
	require.True(t, changed)
	assert.Equal(t, models.StatusExpired, effect.NextStatus)
	assert.False(t, effect.CreditWallet)
}

func TestPlanPurchaseTransitionLeavingPaidNeverCreditsAgain(t *testing.T) {
	// A provider status moving away from paid still must not credit.
	effect, changed := PlanPurchaseTransition(models.StatusPaid, models.StatusCanceled)
	require.True(t, changed)
	assert.False(t, effect.CreditWallet)
}

func TestPlanPurchaseTransitionOpaqueStatusPassThrough(t *testing.T) {
	effect, changed := PlanPurchaseTransition(models.StatusOpen, "authorized")
	require.True(t, changed)
	assert.Equal(t, "authorized", effect.NextStatus)
	assert.False(t, effect.CreditWallet)
}

func TestPlanPaymentTransition(t *testing.T) {
	next, changed := PlanPaymentTransition(models.StatusOpen, models.StatusPaid)
	require.True(t, changed)
	assert.Equal(t, models.StatusPaid, next)

	_, changed = PlanPaymentTransition(models.StatusPaid, models.StatusPaid)
	assert.False(t, changed)
}

func TestCreditsForAmount(t *testing.T) {
	credits, err := CreditsForAmount(1200, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(120), credits)

	_, err = CreditsForAmount(125, 10)
	assert.Error(t, err)

	_, err = CreditsForAmount(0, 10)
	assert.Error(t, err)

	_, err = CreditsForAmount(-100, 10)
	assert.Error(t, err)

	credits, err = CreditsForAmount(10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), credits)
}
