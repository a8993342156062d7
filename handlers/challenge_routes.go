package handlers

import (
	"prompt-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupChallengeRoutes(app *fiber.App, challengeService *services.ChallengeService, requireAuth fiber.Handler) {
	// Public browsing, never includes the secret.
	app.Get("/challenges", challengeService.ListChallenges)
	app.Get("/challenges/:id", challengeService.GetChallenge)

	app.Post("/challenges/:id/conversations", requireAuth, challengeService.CreateConversation)
	app.Get("/challenges/:id/conversations", requireAuth, challengeService.ListConversations)
	app.Get("/conversations/:id/messages", requireAuth, challengeService.ListMessages)
	app.Post("/conversations/:id/messages", requireAuth, challengeService.SendMessage)
}
