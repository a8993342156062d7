package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"prompt-arena/models"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AttemptService settles secret guesses: a paid payment authorizes exactly
// one attempt, and correctness is a normalized exact match.
type AttemptService struct {
	DB *gorm.DB
}

func NewAttemptService(db *gorm.DB) *AttemptService {
	return &AttemptService{DB: db}
}

// NormalizeSecret prepares a secret for comparison: surrounding whitespace
// is ignored and matching is case-insensitive. Nothing fuzzier than that.
func NormalizeSecret(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AdmitAttempt decides whether a payment authorizes a new attempt: it must
// exist, be paid, and not already be consumed by a prior attempt.
func AdmitAttempt(payment *models.Payment, priorAttempts int64) error {
	if payment == nil || payment.Status != models.StatusPaid {
		return ErrPaymentRequired
	}
	if priorAttempts > 0 {
		return ErrPaymentAlreadyUsed
	}
	return nil
}

// settleInsertError maps a losing concurrent insert, surfacing as a duplicate
// key on attempts.payment_id, to the same conflict as the admission pre-check.
func settleInsertError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrPaymentAlreadyUsed
	}
	return err
}

type secretSubmitRequest struct {
	ChallengeID     int64  `json:"challenge_id"`
	PaymentID       int64  `json:"payment_id"`
	SubmittedSecret string `json:"submitted_secret"`
}

// SubmitAttempt consumes a paid payment to resolve one guess. The select
// before insert is a fast path; the unique index on attempts.payment_id is
// what actually guards against concurrent duplicate submissions.
func (s *AttemptService) SubmitAttempt(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	var req secretSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	if strings.TrimSpace(req.SubmittedSecret) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "submitted_secret is required"})
	}

	var attempt models.Attempt
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.Where("id = ? AND user_id = ? AND challenge_id = ?",
			req.PaymentID, user.ID, req.ChallengeID).
			First(&payment).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentRequired
			}
			return err
		}
		var used int64
		if err := tx.Model(&models.Attempt{}).
			Where("payment_id = ?", payment.ID).
			Count(&used).Error; err != nil {
			return err
		}
		if err := AdmitAttempt(&payment, used); err != nil {
			return err
		}

		var challenge models.Challenge
		if err := tx.Where("id = ?", req.ChallengeID).First(&challenge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}

		id, err := NextID(tx, SeqAttempts)
		if err != nil {
			return err
		}
		attempt = models.Attempt{
			ID:              id,
			UserID:          user.ID,
			ChallengeID:     challenge.ID,
			PaymentID:       payment.ID,
			SubmittedSecret: req.SubmittedSecret,
			IsCorrect:       NormalizeSecret(req.SubmittedSecret) == NormalizeSecret(challenge.Secret),
			CreatedAt:       time.Now().UTC(),
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return settleInsertError(err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrPaymentRequired):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": "A paid payment is required before submitting a secret",
			})
		case errors.Is(err, ErrPaymentAlreadyUsed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Payment already used for an attempt",
			})
		case errors.Is(err, ErrChallengeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
		}
		log.WithError(err).Error("failed to submit attempt")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to submit attempt"})
	}

	message := "Incorrect secret submitted. Please try again with a new payment."
	if attempt.IsCorrect {
		message = "Correct secret submitted. Your attempt is successful."
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"attempt": attempt,
		"message": message,
	})
}

// ListAttempts returns the caller's attempts, newest first, optionally
// filtered by challenge.
func (s *AttemptService) ListAttempts(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)

	query := s.DB.Where("user_id = ?", user.ID)
	if raw := c.Query("challenge_id"); raw != "" {
		challengeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge_id"})
		}
		query = query.Where("challenge_id = ?", challengeID)
	}

	var attempts []models.Attempt
	if err := query.Order("id DESC").Find(&attempts).Error; err != nil {
		log.WithError(err).Error("DB error listing attempts")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(attempts)
}
