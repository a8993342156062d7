package services

import (
	"errors"
	"time"

	"prompt-arena/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletService owns all credit balance mutation. Callers run inside a
// database transaction; the wallet row lock acquired here is held until that
// transaction ends, serializing concurrent economic operations per user.
type WalletService struct {
	DB *gorm.DB
}

func NewWalletService(db *gorm.DB) *WalletService {
	return &WalletService{DB: db}
}

// GetOrCreateForUpdate returns the user's wallet under a FOR UPDATE lock,
// creating a zero-balance wallet when none exists. A creation race is
// resolved by retrying the locked lookup after the uniqueness conflict.
func (s *WalletService) GetOrCreateForUpdate(tx *gorm.DB, userID int64) (*models.CreditWallet, error) {
	var wallet models.CreditWallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	id, err := NextID(tx, SeqCreditWallets)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	wallet = models.CreditWallet{
		ID:             id,
		UserID:         userID,
		BalanceCredits: 0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	// The insert runs under a savepoint so that losing the creation race
	// does not poison the surrounding transaction. Without it Postgres
	// aborts the whole transaction on the unique violation and the retry
	// below could never read the winner's row.
	err = tx.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&wallet).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the creation race; lock the winner's row instead.
		var existing models.CreditWallet
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&existing).Error; err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ApplyDelta mutates the locked wallet and appends exactly one ledger row in
// the same transaction. Debits that would drive the balance negative fail
// with ErrInsufficientCredits and leave no partial effects.
func (s *WalletService) ApplyDelta(
	tx *gorm.DB,
	wallet *models.CreditWallet,
	delta int64,
	transactionType string,
	challengeID *int64,
	creditPurchaseID *int64,
) (*models.CreditTransaction, error) {
	if wallet.BalanceCredits+delta < 0 {
		return nil, ErrInsufficientCredits
	}

	now := time.Now().UTC()
	wallet.BalanceCredits += delta
	wallet.UpdatedAt = now
	if err := tx.Model(&models.CreditWallet{}).
		Where("id = ?", wallet.ID).
		Updates(map[string]interface{}{
			"balance_credits": wallet.BalanceCredits,
			"updated_at":      now,
		}).Error; err != nil {
		return nil, err
	}

	id, err := NextID(tx, SeqCreditTransactions)
	if err != nil {
		return nil, err
	}
	entry := &models.CreditTransaction{
		ID:               id,
		UserID:           wallet.UserID,
		ChallengeID:      challengeID,
		CreditPurchaseID: creditPurchaseID,
		DeltaCredits:     delta,
		TransactionType:  transactionType,
		CreatedAt:        now,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
