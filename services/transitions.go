package services

import (
	"fmt"

	"prompt-arena/models"
)

// PurchaseEffect describes what a credit-purchase webhook delivery must do:
// persist the new status, and optionally credit the wallet. Modeling the
// decision as a pure function keeps the exactly-once guarantee testable
// without HTTP or database plumbing.
type PurchaseEffect struct {
	NextStatus   string
	CreditWallet bool
}

// PlanPurchaseTransition compares the stored status with the provider's
// authoritative status. Returns changed=false when the delivery is a replay.
// The wallet is credited only on the first transition into "paid".
func PlanPurchaseTransition(stored, fetched string) (PurchaseEffect, bool) {
	if stored == fetched {
		return PurchaseEffect{}, false
	}
	return PurchaseEffect{
		NextStatus:   fetched,
		CreditWallet: stored != models.StatusPaid && fetched == models.StatusPaid,
	}, true
}

// PlanPaymentTransition is the attempt-payment counterpart. Payments carry no
// side effect beyond status persistence, so the plan is just the new status.
func PlanPaymentTransition(stored, fetched string) (string, bool) {
	if stored == fetched {
		return "", false
	}
	return fetched, true
}

// CreditsForAmount validates a top-up amount against the conversion rate and
// returns the credits it buys. The amount must be a positive exact multiple
// of centsPerCredit; validation happens before any external call.
func CreditsForAmount(amountCents int64, centsPerCredit int) (int64, error) {
	rate := int64(centsPerCredit)
	if amountCents <= 0 || amountCents%rate != 0 {
		return 0, fmt.Errorf("amount_cents must be a positive multiple of %d", rate)
	}
	return amountCents / rate, nil
}
