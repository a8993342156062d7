package services

import (
	"os"
	"testing"
	"time"

	"prompt-arena/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openWalletTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CreditWallet{}, &models.CreditTransaction{}))
	require.NoError(t, EnsureSequences(db))
	return db
}

// Two sessions racing to create the same user's wallet: the loser's insert
// hits the unique index, and it must then proceed against the winner's row
// instead of failing the request.
func TestGetOrCreateForUpdateCreationRace(t *testing.T) {
	db := openWalletTestDB(t)
	svc := NewWalletService(db)
	userID := time.Now().UnixNano()

	tx1 := db.Begin()
	require.NoError(t, tx1.Error)
	winner, err := svc.GetOrCreateForUpdate(tx1, userID)
	require.NoError(t, err)

	type result struct {
		wallet *models.CreditWallet
		err    error
	}
	done := make(chan result, 1)
	go func() {
		var loser *models.CreditWallet
		err := db.Transaction(func(tx *gorm.DB) error {
			var err error
			loser, err = svc.GetOrCreateForUpdate(tx, userID)
			return err
		})
		done <- result{wallet: loser, err: err}
	}()

	// Let the second session reach its insert and block on the winner's
	// uncommitted unique index entry, then commit the winner.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, tx1.Commit().Error)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.NotNil(t, res.wallet)
		assert.Equal(t, winner.ID, res.wallet.ID)
	case <-time.After(10 * time.Second):
		t.Fatal("racing session did not finish")
	}

	var count int64
	require.NoError(t, db.Model(&models.CreditWallet{}).
		Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApplyDeltaBalanceNeverNegative(t *testing.T) {
	db := openWalletTestDB(t)
	svc := NewWalletService(db)
	userID := time.Now().UnixNano()

	err := db.Transaction(func(tx *gorm.DB) error {
		wallet, err := svc.GetOrCreateForUpdate(tx, userID)
		require.NoError(t, err)

		_, err = svc.ApplyDelta(tx, wallet, 5, models.TransactionTypePurchase, nil, nil)
		require.NoError(t, err)
		_, err = svc.ApplyDelta(tx, wallet, -3, models.TransactionTypeAttackSpend, nil, nil)
		require.NoError(t, err)

		_, err = svc.ApplyDelta(tx, wallet, -10, models.TransactionTypeAttackSpend, nil, nil)
		assert.ErrorIs(t, err, ErrInsufficientCredits)
		assert.Equal(t, int64(2), wallet.BalanceCredits)
		return nil
	})
	require.NoError(t, err)

	// Ledger sum equals the balance.
	var sum int64
	require.NoError(t, db.Model(&models.CreditTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(delta_credits), 0)").
		Scan(&sum).Error)
	assert.Equal(t, int64(2), sum)

	var wallet models.CreditWallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	assert.Equal(t, int64(2), wallet.BalanceCredits)
}
