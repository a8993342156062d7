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
)

// PaymentService manages the lifecycle of one-off attempt payments:
// pending -> provider status -> terminal. Webhook deliveries only persist
// status; crediting never happens here.
type PaymentService struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Provider PaymentProvider
}

func NewPaymentService(db *gorm.DB, cfg *config.Config, provider PaymentProvider) *PaymentService {
	return &PaymentService{DB: db, Cfg: cfg, Provider: provider}
}

type paymentCreateRequest struct {
	ChallengeID int64 `json:"challenge_id"`
}

// CreatePayment opens a hosted checkout for one challenge attempt. The local
// row and the provider call share a transaction: a gateway failure rolls the
// row back so no orphan pending payments survive.
func (s *PaymentService) CreatePayment(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	var req paymentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}

	var (
		payment     models.Payment
		checkoutURL string
	)
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var challenge models.Challenge
		if err := tx.Where("id = ? AND is_active = ?", req.ChallengeID, true).
			First(&challenge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}

		id, err := NextID(tx, SeqPayments)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		payment = models.Payment{
			ID:          id,
			UserID:      user.ID,
			ChallengeID: challenge.ID,
			AmountCents: challenge.CostPerAttemptCents,
			Status:      models.StatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		redirectBase := strings.TrimRight(s.Cfg.RedirectBaseURL, "/")
		webhookBase := strings.TrimRight(s.Cfg.WebhookBaseURL, "/")
		result, err := s.Provider.CreatePayment(CreatePaymentRequest{
			AmountCents: payment.AmountCents,
			Description: fmt.Sprintf("Challenge attempt #%d", challenge.ID),
			RedirectURL: fmt.Sprintf("%s/challenges/%d?payment_id=%d", redirectBase, challenge.ID, payment.ID),
			WebhookURL:  webhookBase + "/payments/webhook",
			Metadata: map[string]string{
				"payment_id":   strconv.FormatInt(payment.ID, 10),
				"challenge_id": strconv.FormatInt(challenge.ID, 10),
				"user_id":      strconv.FormatInt(user.ID, 10),
			},
		})
		if err != nil {
			return err
		}

		checkoutURL = result.CheckoutURL
		providerID := result.ProviderID
		payment.ProviderPaymentID = &providerID
		payment.Status = result.Status
		payment.UpdatedAt = time.Now().UTC()
		return tx.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"provider_payment_id": providerID,
				"status":              payment.Status,
				"updated_at":          payment.UpdatedAt,
			}).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrChallengeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
		case errors.Is(err, ErrProviderUnavailable):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment provider unavailable"})
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Failed to create payment"})
		}
		log.WithError(err).Error("failed to create payment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create payment"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"payment_id":   payment.ID,
		"checkout_url": checkoutURL,
		"status":       payment.Status,
	})
}

// Webhook handles provider callbacks. Unknown references are acknowledged as
// ignored. The provider controls retry cadence and must not be made to
// retry forever for state we do not track.
func (s *PaymentService) Webhook(c *fiber.Ctx) error {
	providerID := strings.TrimSpace(c.FormValue("id"))
	if providerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing payment id"})
	}

	var payment models.Payment
	if err := s.DB.Where("provider_payment_id = ?", providerID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{"status": "ignored"})
		}
		log.WithError(err).Error("DB error looking up payment for webhook")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	fetched, err := s.Provider.GetPayment(providerID)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Payment provider unavailable"})
	}

	if err := s.ApplyProviderStatus(payment.ID, fetched.Status); err != nil {
		log.WithError(err).Error("failed to persist payment status")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update payment"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// ApplyProviderStatus persists the provider's authoritative status for one
// payment. Replays (unchanged status) are no-ops. Shared by the webhook and
// the reconciler.
func (s *PaymentService) ApplyProviderStatus(paymentID int64, fetchedStatus string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("id = ?", paymentID).First(&payment).Error; err != nil {
			return err
		}
		next, changed := PlanPaymentTransition(payment.Status, fetchedStatus)
		if !changed {
			return nil
		}
		return tx.Model(&models.Payment{}).
			Where("id = ?", payment.ID).
			Updates(map[string]interface{}{
				"status":     next,
				"updated_at": time.Now().UTC(),
			}).Error
	})
}

// GetPayment returns one payment for its owner. Anyone else sees not-found.
func (s *PaymentService) GetPayment(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	paymentID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payment id"})
	}

	var payment models.Payment
	if err := s.DB.Where("id = ? AND user_id = ?", paymentID, user.ID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Payment not found"})
		}
		log.WithError(err).Error("DB error fetching payment")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(payment)
}
