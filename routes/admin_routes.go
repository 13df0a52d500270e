package routes

import (
	"github.com/edusphere/admissions_backend/handlers"
	"github.com/edusphere/admissions_backend/middleware"
	"github.com/gofiber/fiber/v2"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	applicants := admin.Group("/applicants")
	applicants.Get("", handlers.ListApplicants)
	applicants.Post("/:applicantId/review", handlers.BeginReview)
	applicants.Put("/:applicantId/review", handlers.ReviewApplication)
	applicants.Delete("/:applicantId", handlers.AdminDeleteApplicant)

	scholarships := admin.Group("/scholarships")
	scholarships.Get("", handlers.ListScholarshipClaims)
	scholarships.Post("/:claimId/verify", handlers.VerifyScholarship)

	payments := admin.Group("/payments")
	payments.Get("", handlers.AdminListPayments)
	payments.Post("/:attemptId/verify", handlers.VerifyManualPayment)

	rewards := admin.Group("/rewards")
	rewards.Get("", handlers.AdminListRewardClaims)
	rewards.Post("/:claimId/verify", handlers.VerifyReward)
	rewards.Post("/:claimId/process", handlers.ProcessReward)

	admin.Get("/installments", handlers.ListInstallments)
	admin.Get("/dashboard-summary", handlers.GetDashboardSummary)

	app.Use("/ws", handlers.WebsocketUpgrade)
	app.Get("/ws/admin/:userId", handlers.AdminEventStream)
}
