package handlers

import (
	"fmt"

	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/notifications"
	"github.com/edusphere/admissions_backend/services"
	"github.com/edusphere/admissions_backend/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SubmitApplication(c *fiber.Ctx) error {
	var req services.SubmitApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	applicant, err := enrollment.SubmitApplication(req)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	go websocket.NotifyAdmins(websocket.EventApplicationSubmitted, applicant.ID,
		fmt.Sprintf("New application from %s for %s", applicant.FullName, applicant.CourseInterest))

	if applicant.Email != nil {
		go notifications.SendEmail(
			applicant.FullName,
			*applicant.Email,
			"We Received Your Application!",
			"<h1>Application Received</h1><p>Thanks for your interest. Our team will review your application and get back to you with the fee details shortly.</p>",
		)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Application received. We will contact you after review.",
		"applicant": applicant,
	})
}

// applicantStatusMessage keeps applicant-facing wording out of the
// state machine. Admins see raw states; applicants see these.
func applicantStatusMessage(status string) string {
	switch status {
	case models.StatusNew, models.StatusUnderReview:
		return "Your application is being reviewed."
	case models.StatusApproved:
		return "Your application is approved. You can proceed to payment."
	case models.StatusOrderCreated:
		return "Your payment is in progress."
	case models.StatusPendingVerification:
		return "Payment verification pending."
	case models.StatusPartialPayment:
		return "First installment received. Your second installment is scheduled."
	case models.StatusEnrolled:
		return "You are enrolled. Welcome aboard!"
	case models.StatusRejected:
		return "Your application was not approved this time."
	default:
		return "Awaiting fee approval."
	}
}

func GetApplicationStatus(c *fiber.Ctx) error {
	applicantID, err := uuid.Parse(c.Params("applicantId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid applicant ID format"})
	}

	var applicant models.Applicant
	if err := enrollment.DB().First(&applicant, "id = ?", applicantID).Error; err != nil {
		return respondWorkflowError(c, err)
	}

	return c.JSON(fiber.Map{
		"status":    applicant.Status,
		"message":   applicantStatusMessage(applicant.Status),
		"final_fee": applicant.FinalFee,
	})
}
