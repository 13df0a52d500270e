package routes

import (
	"github.com/edusphere/admissions_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Get("/uploads/signature", handlers.GenerateUploadSignature)
}
