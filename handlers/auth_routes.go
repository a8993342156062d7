package handlers

import (
	"prompt-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService, requireAuth fiber.Handler) {
	app.Post("/auth/register", authService.Register)
	app.Post("/auth/login", authService.Login)
	app.Get("/auth/me", requireAuth, authService.Me)
}
