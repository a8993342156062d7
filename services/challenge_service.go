package services

import (
	"errors"
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

// ChallengeService covers public challenge browsing, conversations, and the
// attack-message economy: every user turn charges credits and grows the
// challenge prize pool inside one transaction.
type ChallengeService struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Wallets *WalletService
	Bot     *BotService
}

func NewChallengeService(db *gorm.DB, cfg *config.Config, wallets *WalletService, bot *BotService) *ChallengeService {
	return &ChallengeService{DB: db, Cfg: cfg, Wallets: wallets, Bot: bot}
}

// ListChallenges returns active challenges for public browsing. The secret
// column never serializes (json:"-" on the model).
func (s *ChallengeService) ListChallenges(c *fiber.Ctx) error {
	var challenges []models.Challenge
	if err := s.DB.Where("is_active = ?", true).Order("id ASC").Find(&challenges).Error; err != nil {
		log.WithError(err).Error("DB error listing challenges")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(challenges)
}

// GetChallenge returns one active challenge by id.
func (s *ChallengeService) GetChallenge(c *fiber.Ctx) error {
	challengeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge id"})
	}
	var challenge models.Challenge
	if err := s.DB.Where("id = ? AND is_active = ?", challengeID, true).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
		}
		log.WithError(err).Error("DB error fetching challenge")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(challenge)
}

// CreateConversation opens a chat session against an active challenge.
func (s *ChallengeService) CreateConversation(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	challengeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge id"})
	}

	var conversation models.Conversation
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Challenge{}).
			Where("id = ? AND is_active = ?", challengeID, true).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrChallengeNotFound
		}

		id, err := NextID(tx, SeqConversations)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		conversation = models.Conversation{
			ID:          id,
			UserID:      user.ID,
			ChallengeID: challengeID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&conversation).Error
	})
	if err != nil {
		if errors.Is(err, ErrChallengeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
		}
		log.WithError(err).Error("failed to create conversation")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create conversation"})
	}
	return c.Status(fiber.StatusCreated).JSON(conversation)
}

// ListConversations returns the caller's conversations for one challenge,
// newest first.
func (s *ChallengeService) ListConversations(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	challengeID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid challenge id"})
	}
	var conversations []models.Conversation
	if err := s.DB.
		Where("user_id = ? AND challenge_id = ?", user.ID, challengeID).
		Order("id DESC").
		Find(&conversations).Error; err != nil {
		log.WithError(err).Error("DB error listing conversations")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(conversations)
}

// ListMessages returns the message history of an owned conversation.
// Non-owner lookups read as not-found.
func (s *ChallengeService) ListMessages(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	var conversation models.Conversation
	if err := s.DB.Where("id = ? AND user_id = ?", conversationID, user.ID).First(&conversation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
		}
		log.WithError(err).Error("DB error fetching conversation")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var messages []models.Message
	if err := s.DB.Where("conversation_id = ?", conversationID).Order("id ASC").Find(&messages).Error; err != nil {
		log.WithError(err).Error("DB error listing messages")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}
	return c.JSON(messages)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage handles one attack turn. The challenge row and the wallet row
// are both locked for the whole turn, so concurrent messages against the
// same challenge or wallet serialize instead of losing updates.
func (s *ChallengeService) SendMessage(c *fiber.Ctx) error {
	user := c.Locals("current_user").(*models.User)
	conversationID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid conversation id"})
	}

	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "content is required"})
	}

	var (
		userMessage      models.Message
		botMessage       models.Message
		creditsCharged   int64
		remainingCredits int64
		prizePoolCents   int64
	)
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var conversation models.Conversation
		if err := tx.Where("id = ? AND user_id = ?", conversationID, user.ID).
			First(&conversation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}

		var challenge models.Challenge
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_active = ?", conversation.ChallengeID, true).
			First(&challenge).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrChallengeNotFound
			}
			return err
		}

		wallet, err := s.Wallets.GetOrCreateForUpdate(tx, user.ID)
		if err != nil {
			return err
		}

		creditsCharged = challenge.AttackCostCredits
		challengeID := challenge.ID
		if _, err := s.Wallets.ApplyDelta(tx, wallet, -creditsCharged,
			models.TransactionTypeAttackSpend, &challengeID, nil); err != nil {
			return err
		}
		remainingCredits = wallet.BalanceCredits

		now := time.Now().UTC()
		prizePoolCents = challenge.PrizePoolCents + creditsCharged*int64(s.Cfg.CentsPerCredit)
		if err := tx.Model(&models.Challenge{}).
			Where("id = ?", challenge.ID).
			Updates(map[string]interface{}{
				"prize_pool_cents": prizePoolCents,
				"updated_at":       now,
			}).Error; err != nil {
			return err
		}

		userMessageID, err := NextID(tx, SeqMessages)
		if err != nil {
			return err
		}
		userMessage = models.Message{
			ID:             userMessageID,
			ConversationID: conversationID,
			Role:           models.RoleUser,
			Content:        content,
			CreatedAt:      now,
		}
		if err := tx.Create(&userMessage).Error; err != nil {
			return err
		}

		reply := s.Bot.Reply(challenge.Secret)
		botMessageID, err := NextID(tx, SeqMessages)
		if err != nil {
			return err
		}
		botMessage = models.Message{
			ID:               botMessageID,
			ConversationID:   conversationID,
			Role:             models.RoleAssistant,
			Content:          reply.Content,
			IsSecretExposure: reply.DidExposeSecret,
			CreatedAt:        now,
		}
		if err := tx.Create(&botMessage).Error; err != nil {
			return err
		}

		return tx.Model(&models.Conversation{}).
			Where("id = ?", conversationID).
			Update("updated_at", now).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrConversationNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
		case errors.Is(err, ErrChallengeNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Challenge not found"})
		case errors.Is(err, ErrInsufficientCredits):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": "Insufficient credits to perform attack message",
			})
		}
		log.WithError(err).Error("attack message transaction failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to send message"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user_message":             userMessage,
		"bot_message":              botMessage,
		"did_expose_secret":        botMessage.IsSecretExposure,
		"credits_charged":          creditsCharged,
		"remaining_credits":        remainingCredits,
		"updated_prize_pool_cents": prizePoolCents,
	})
}
