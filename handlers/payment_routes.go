package handlers

import (
	"prompt-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(app *fiber.App, paymentService *services.PaymentService, requireAuth fiber.Handler) {
	app.Post("/payments", requireAuth, paymentService.CreatePayment)
	// Webhook is unauthenticated: the provider calls it server-to-server.
	// Registered before /payments/:id so it is not captured as an id.
	app.Post("/payments/webhook", paymentService.Webhook)
	app.Get("/payments/:id", requireAuth, paymentService.GetPayment)
}
