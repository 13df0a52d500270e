package routes

import (
	"github.com/edusphere/admissions_backend/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/applications", handlers.SubmitApplication)
	api.Get("/applications/:applicantId/status", handlers.GetApplicationStatus)

	api.Post("/rewards/claim", handlers.ClaimReward)
}
