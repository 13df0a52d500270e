package handlers

import (
	"github.com/edusphere/admissions_backend/database"
	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/notifications"
	"github.com/edusphere/admissions_backend/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func adminIDFromToken(c *fiber.Ctx) (uuid.UUID, error) {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	return uuid.Parse(claims["id"].(string))
}

func ListApplicants(c *fiber.Ctx) error {
	query := database.DB.Model(&models.Applicant{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var applicants []models.Applicant
	if err := query.Find(&applicants).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(applicants)
}

func BeginReview(c *fiber.Ctx) error {
	applicantID, err := uuid.Parse(c.Params("applicantId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid applicant ID format"})
	}
	adminID, err := adminIDFromToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	applicant, err := enrollment.BeginReview(applicantID, adminID)
	if err != nil {
		return respondWorkflowError(c, err)
	}
	return c.JSON(applicant)
}

func ReviewApplication(c *fiber.Ctx) error {
	applicantID, err := uuid.Parse(c.Params("applicantId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid applicant ID format"})
	}
	adminID, err := adminIDFromToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	var req services.ReviewApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	applicant, err := enrollment.ReviewApplication(applicantID, adminID, req)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	if applicant.Email != nil {
		switch applicant.Status {
		case models.StatusApproved:
			go notifications.SendEmail(
				applicant.FullName,
				*applicant.Email,
				"Your Application has been Approved!",
				"<h1>Congratulations!</h1><p>Your application has been approved. Log in to view your fee details and complete the payment to confirm your seat.</p>",
			)
		case models.StatusRejected:
			go notifications.SendEmail(
				applicant.FullName,
				*applicant.Email,
				"Update on Your Application",
				"<h1>Application Update</h1><p>We regret to inform you that after careful review, your application was not approved at this time.</p>",
			)
		}
	}

	return c.JSON(fiber.Map{"message": "Application review recorded", "applicant": applicant})
}

func ListScholarshipClaims(c *fiber.Ctx) error {
	query := database.DB.Model(&models.ScholarshipClaim{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var claims []models.ScholarshipClaim
	if err := query.Find(&claims).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(claims)
}

type VerifyDecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=verify reject"`
}

func VerifyScholarship(c *fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("claimId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid claim ID format"})
	}
	adminID, err := adminIDFromToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	var req VerifyDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	claim, err := enrollment.VerifyScholarship(claimID, adminID, req.Decision)
	if err != nil {
		return respondWorkflowError(c, err)
	}
	return c.JSON(claim)
}

func ListInstallments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.InstallmentSchedule{}).Order("due_date ASC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var installments []models.InstallmentSchedule
	if err := query.Find(&installments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(installments)
}

func AdminDeleteApplicant(c *fiber.Ctx) error {
	applicantID, err := uuid.Parse(c.Params("applicantId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid applicant ID format"})
	}

	if err := enrollment.DeleteApplicant(applicantID); err != nil {
		return respondWorkflowError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func GetDashboardSummary(c *fiber.Ctx) error {
	type statusCount struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}

	var byStatus []statusCount
	if err := database.DB.Model(&models.Applicant{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&byStatus).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	var pendingPayments int64
	database.DB.Model(&models.PaymentAttempt{}).
		Where("status = ?", models.PaymentPendingVerification).
		Count(&pendingPayments)

	var pendingRewards int64
	database.DB.Model(&models.RewardClaim{}).
		Where("status = ?", models.RewardPending).
		Count(&pendingRewards)

	return c.JSON(fiber.Map{
		"applicants_by_status":     byStatus,
		"payments_awaiting_review": pendingPayments,
		"reward_claims_to_review":  pendingRewards,
	})
}
