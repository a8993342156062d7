package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"prompt-arena/config"
	"prompt-arena/models"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreditService manages credit top-up purchases. The critical invariant: the
// wallet is credited exactly once, on the first transition into "paid", no
// matter how many times the provider re-delivers the webhook.
type CreditService struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Provider PaymentProvider
	Wallets  *WalletService
}

func NewCreditService(db *gorm.DB, cfg *config.Config, provider PaymentProvider, wallets *WalletService) *CreditService {
	return &CreditService{DB: db, Cfg: cfg, Provider: provider, Wallets: wallets}
}

type purchaseCreateRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// CreatePurchase validates the amount against the conversion rate before any
// external call, then opens the checkout inside one transaction.
func (s *CreditService) CreatePurchase(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	var req purchaseCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}

	creditsPurchased, err := CreditsForAmount(req.AmountCents, s.Cfg.CentsPerCredit)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var (
		purchase    models.CreditPurchase
		checkoutURL string
	)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		id, err := NextID(tx, SeqCreditPurchases)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		purchase = models.CreditPurchase{
			ID:               id,
			UserID:           user.ID,
			AmountCents:      req.AmountCents,
			CreditsPurchased: creditsPurchased,
			Status:           models.StatusPending,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		redirectBase := strings.TrimRight(s.Cfg.RedirectBaseURL, "/")
		webhookBase := strings.TrimRight(s.Cfg.WebhookBaseURL, "/")
		result, err := s.Provider.CreatePayment(CreatePaymentRequest{
			AmountCents: purchase.AmountCents,
			Description: fmt.Sprintf("Credit purchase #%d", purchase.ID),
			RedirectURL: fmt.Sprintf("%s/challenges?credit_purchase_id=%d", redirectBase, purchase.ID),
			WebhookURL:  webhookBase + "/credits/purchases/webhook",
			Metadata: map[string]string{
				"credit_purchase_id": strconv.FormatInt(purchase.ID, 10),
				"user_id":            strconv.FormatInt(user.ID, 10),
				"credits_purchased":  strconv.FormatInt(creditsPurchased, 10),
			},
		})
		if err != nil {
			return err
		}

		checkoutURL = result.CheckoutURL
		providerID := result.ProviderID
		purchase.ProviderPaymentID = &providerID
		purchase.Status = result.Status
		purchase.UpdatedAt = time.Now().UTC()
		return tx.Model(&models.CreditPurchase{}).
			Where("id = ?", purchase.ID).
			Updates(map[string]interface{}{
				"provider_payment_id": providerID,
				"status":              purchase.Status,
				"updated_at":          purchase.UpdatedAt,
			}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrProviderUnavailable):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment provider unavailable"})
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Failed to create credit purchase"})
		}
		log.WithError(err).Error("failed to create credit purchase")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create credit purchase"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"credit_purchase_id": purchase.ID,
		"credits_purchased":  purchase.CreditsPurchased,
		"amount_cents":       purchase.AmountCents,
		"status":             purchase.Status,
		"checkout_url":       checkoutURL,
	})
}

// Webhook handles provider callbacks for purchases. The economic effects run
// in ApplyProviderStatus under the purchase row lock.
func (s *CreditService) Webhook(c *fiber.Ctx) error {
	providerID := strings.TrimSpace(c.FormValue("id"))
	if providerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing payment id"})
	}

	var purchase models.CreditPurchase
	if err := s.DB.Where("provider_payment_id = ?", providerID).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"status": "ignored"})
		}
		log.WithError(err).Error("DB error looking up purchase for webhook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	fetched, err := s.Provider.GetPayment(providerID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment provider unavailable"})
	}

	if err := s.ApplyProviderStatus(purchase.ID, fetched.Status); err != nil {
		log.WithError(err).Error("failed to apply purchase status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update purchase"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// ApplyProviderStatus applies the provider's authoritative status to one
// purchase as a single atomic unit: wallet credit, ledger row, and status
// persistence all commit or none do. The transition is re-planned under the
// purchase row lock so concurrent replays serialize and credit exactly once.
func (s *CreditService) ApplyProviderStatus(purchaseID int64, fetchedStatus string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var purchase models.CreditPurchase
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", purchaseID).
			First(&purchase).Error; err != nil {
			return err
		}

		effect, changed := PlanPurchaseTransition(purchase.Status, fetchedStatus)
		if !changed {
			return nil
		}

		if effect.CreditWallet {
			wallet, err := s.Wallets.GetOrCreateForUpdate(tx, purchase.UserID)
			if err != nil {
				return err
			}
			creditPurchaseID := purchase.ID
			if _, err := s.Wallets.ApplyDelta(tx, wallet, purchase.CreditsPurchased,
				models.TransactionTypePurchase, nil, &creditPurchaseID); err != nil {
				return err
			}
		}

		return tx.Model(&models.CreditPurchase{}).
			Where("id = ?", purchase.ID).
			Updates(map[string]interface{}{
				"status":     effect.NextStatus,
				"updated_at": time.Now().UTC(),
			}).Error
	})
}

// GetPurchase returns one purchase for its owner; non-owners see not-found.
func (s *CreditService) GetPurchase(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	purchaseID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid credit purchase id"})
	}

	var purchase models.CreditPurchase
	if err := s.DB.Where("id = ? AND user_id = ?", purchaseID, user.ID).First(&purchase).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Credit purchase not found"})
		}
		log.WithError(err).Error("DB error fetching credit purchase")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(purchase)
}

// GetBalance returns the caller's credit balance; users with no wallet yet
// read as zero.
func (s *CreditService) GetBalance(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)

	var wallet models.CreditWallet
	if err := s.DB.Where("user_id = ?", user.ID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"balance_credits": 0})
		}
		log.WithError(err).Error("DB error fetching wallet balance")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(fiber.Map{"balance_credits": wallet.BalanceCredits})
}
