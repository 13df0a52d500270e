package handlers

import (
	"fmt"

	"github.com/edusphere/admissions_backend/database"
	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/notifications"
	"github.com/edusphere/admissions_backend/services"
	"github.com/edusphere/admissions_backend/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	ApplicantID string `json:"applicant_id" validate:"required,uuid4"`
	Scheme      string `json:"scheme" validate:"required,oneof=full installment"`
}

func CreatePaymentOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
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

	attempt, err := enrollment.CreatePaymentOrder(applicantID, req.Scheme)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_id": attempt.GatewayOrderID,
		"amount":   attempt.Amount,
		"currency": attempt.Currency,
		"attempt":  attempt,
	})
}

type GatewayWebhookPayload struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// HandleGatewayWebhook processes the payment gateway callback. The
// gateway delivers at-least-once, so a replay must come back 200
// without re-running side effects.
func HandleGatewayWebhook(c *fiber.Ctx) error {
	var payload GatewayWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse webhook payload"})
	}
	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	attempt, err := enrollment.CompleteGatewayPayment(payload.OrderID, payload.PaymentID, payload.Signature)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	notifyPaymentOutcome(attempt)

	return c.JSON(fiber.Map{"message": "Webhook processed successfully"})
}

type ManualPaymentRequest struct {
	ApplicantID string  `json:"applicant_id" validate:"required,uuid4"`
	Amount      float64 `json:"amount"`
	EvidenceURL string  `json:"evidence_url"`
	Method      string  `json:"method"`
}

func SubmitManualPayment(c *fiber.Ctx) error {
	var req ManualPaymentRequest
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

	attempt, err := enrollment.SubmitManualPayment(applicantID, services.ManualPaymentRequest{
		Amount:      req.Amount,
		EvidenceURL: req.EvidenceURL,
		Method:      req.Method,
	})
	if err != nil {
		return respondWorkflowError(c, err)
	}

	go websocket.NotifyAdmins(websocket.EventPaymentPending, attempt.ApplicantID,
		fmt.Sprintf("Manual payment of %.2f awaiting verification", attempt.Amount))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Payment submitted. We will verify it and confirm your enrollment.",
		"attempt": attempt,
	})
}

type VerifyPaymentRequest struct {
	Approved bool   `json:"approved"`
	Notes    string `json:"notes"`
}

func VerifyManualPayment(c *fiber.Ctx) error {
	attemptID, err := uuid.Parse(c.Params("attemptId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid payment attempt ID format"})
	}
	adminID, err := adminIDFromToken(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}

	var req VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	attempt, err := enrollment.VerifyManualPayment(attemptID, adminID, req.Approved, req.Notes)
	if err != nil {
		return respondWorkflowError(c, err)
	}

	if req.Approved {
		notifyPaymentOutcome(attempt)
	}

	return c.JSON(fiber.Map{"message": "Payment verification recorded", "attempt": attempt})
}

func AdminListPayments(c *fiber.Ctx) error {
	query := database.DB.Model(&models.PaymentAttempt{}).Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var attempts []models.PaymentAttempt
	if err := query.Find(&attempts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(attempts)
}

// notifyPaymentOutcome fires the post-completion side effects that live
// outside the transaction: confirmation email, admin event, and the
// admission receipt once the applicant is enrolled.
func notifyPaymentOutcome(attempt *models.PaymentAttempt) {
	var applicant models.Applicant
	if err := enrollment.DB().First(&applicant, "id = ?", attempt.ApplicantID).Error; err != nil {
		return
	}

	if applicant.Email != nil {
		subject := "Payment Received!"
		body := "<h1>Payment Confirmed</h1><p>We have received your payment. Thank you!</p>"
		if applicant.Status == models.StatusEnrolled {
			subject = "You're Enrolled!"
			body = "<h1>Welcome!</h1><p>Your fee is fully paid and your enrollment is confirmed. Your admission receipt will be available shortly.</p>"
		} else if applicant.Status == models.StatusPartialPayment {
			body = "<h1>Installment Received</h1><p>Your first installment is confirmed. We will remind you before the next one is due.</p>"
		}
		go notifications.SendEmail(applicant.FullName, *applicant.Email, subject, body)
	}

	if applicant.Status == models.StatusEnrolled {
		go websocket.NotifyAdmins(websocket.EventApplicantEnrolled, applicant.ID,
			fmt.Sprintf("%s completed payment and is now enrolled", applicant.FullName))
		go services.GenerateAdmissionReceipt(enrollment.DB(), applicant.ID)
	}
}
