package routes

import (
	"github.com/edusphere/admissions_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/payments/webhook", handlers.HandleGatewayWebhook)

	api.Post("/payments/orders", handlers.CreatePaymentOrder)
	api.Post("/payments/manual", handlers.SubmitManualPayment)
}
