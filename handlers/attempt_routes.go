package handlers

import (
	"prompt-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAttemptRoutes(app *fiber.App, attemptService *services.AttemptService, requireAuth fiber.Handler) {
	app.Post("/attempts", requireAuth, attemptService.SubmitAttempt)
	app.Get("/attempts", requireAuth, attemptService.ListAttempts)
}
