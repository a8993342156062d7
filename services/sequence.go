package services

import (
	"fmt"

	"gorm.io/gorm"
)

// Database sequences used for primary-key issuance. Sequences are the sole
// id source; auto-increment is bypassed so ids stay unique and monotonic
// across all concurrent callers and process restarts.
const (
	SeqUsers              = "user_id_seq"
	SeqChallenges         = "challenge_id_seq"
	SeqConversations      = "conversation_id_seq"
	SeqMessages           = "message_id_seq"
	SeqCreditWallets      = "credit_wallet_id_seq"
	SeqCreditTransactions = "credit_transaction_id_seq"
	SeqCreditPurchases    = "credit_purchase_id_seq"
	SeqPayments           = "payment_id_seq"
	SeqAttempts           = "attempt_id_seq"
)

var allSequences = []string{
	SeqUsers,
	SeqChallenges,
	SeqConversations,
	SeqMessages,
	SeqCreditWallets,
	SeqCreditTransactions,
	SeqCreditPurchases,
	SeqPayments,
	SeqAttempts,
}

// EnsureSequences creates every id sequence at startup. Sequences start at
// 1000 so seeded rows keep their fixed low ids.
func EnsureSequences(db *gorm.DB) error {
	for _, name := range allSequences {
		stmt := fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START WITH 1000", name)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create sequence %s: %w", name, err)
		}
	}
	return nil
}

// NextID fetches the next value from a named sequence inside the caller's
// transaction. A failure here aborts the enclosing unit of work.
func NextID(tx *gorm.DB, sequence string) (int64, error) {
	var id int64
	if err := tx.Raw(fmt.Sprintf("SELECT nextval('%s')", sequence)).Scan(&id).Error; err != nil {
		return 0, fmt.Errorf("nextval %s: %w", sequence, err)
	}
	return id, nil
}
