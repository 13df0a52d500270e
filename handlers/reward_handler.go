package handlers

import (
	"fmt"

	"github.com/edusphere/admissions_backend/database"
	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ClaimRewardRequest struct {
	ApplicantID string  `json:"applicant_id" validate:"required,uuid4"`
	Type        string  `json:"type" validate:"required"`
	ProofURL    *string `json:"proof_url"`
	PayoutUPIID *string `json:"payout_upi_id"`
}

func ClaimReward(c *fiber.Ctx) error {
	var req ClaimRewardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	applicantID, err := uuid.Parse(req.ApplicantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid applicant ID format"})
	}

	claim, err := enrollment.ClaimReward(applicantID, req.Type, req.ProofURL, req.PayoutUPIID)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	go websocket.NotifyAdmins(websocket.EventRewardClaimed, claim.ApplicantID,
		fmt.Sprintf("Reward claim of type %s submitted", claim.Type))

	return c.Status(fiber.StatusCreated).JSON(claim)
}

func VerifyReward(c *fiber.Ctx) error {
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

	claim, err := enrollment.VerifyReward(claimID, adminID, req.Decision)
	if err != nil {
		return respondWorkflowError(c, err)
	}
	return c.JSON(claim)
}

func ProcessReward(c *fiber.Ctx) error {
	claimID, err := uuid.Parse(c.Params("claimId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid claim ID format"})
	}

	claim, err := enrollment.ProcessReward(claimID)
	if err != nil {
		return respondWorkflowError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reward marked as processed", "claim": claim})
}

func AdminListRewardClaims(c *fiber.Ctx) error {
	query := database.DB.Model(&models.RewardClaim{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var claims []models.RewardClaim
	if err := query.Find(&claims).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(claims)
}
