package handlers

import (
	"prompt-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupCreditRoutes(app *fiber.App, creditService *services.CreditService, requireAuth fiber.Handler) {
	app.Post("/credits/purchases", requireAuth, creditService.CreatePurchase)
	app.Post("/credits/purchases/webhook", creditService.Webhook)
	app.Get("/credits/balance", requireAuth, creditService.GetBalance)
	app.Get("/credits/purchases/:id", requireAuth, creditService.GetPurchase)
}
