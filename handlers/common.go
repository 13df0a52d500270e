package handlers

import (
	"errors"
	"log"

	"github.com/edusphere/admissions_backend/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var validate = validator.New()

var enrollment *services.EnrollmentService

// InitEnrollmentService wires the workflow engine into the handler
// package. Called once from main before routes are registered.
func InitEnrollmentService(svc *services.EnrollmentService) {
	enrollment = svc
}

// respondWorkflowError maps the workflow error taxonomy onto HTTP.
// Signature and invariant failures are logged for operators; the rest
// carry enough detail for the caller to correct the request.
func respondWorkflowError(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
	}

	var preconditionErr *services.PreconditionError
	if errors.As(err, &preconditionErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": preconditionErr.Reason})
	}

	var stateErr *services.InvalidStateError
	if errors.As(err, &stateErr) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": stateErr.Error()})
	}

	var signatureErr *services.SignatureError
	if errors.As(err, &signatureErr) {
		log.Printf("🚨 SECURITY: %v | Path: %s | IP: %s", signatureErr, c.Path(), c.IP())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "payment signature verification failed"})
	}

	var invariantErr *services.InvariantViolation
	if errors.As(err, &invariantErr) {
		log.Printf("🔥 INVARIANT: %v | Path: %s", invariantErr, c.Path())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": invariantErr.Error()})
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Record not found"})
	}

	log.Printf("🔥 Unhandled workflow error: %v | Path: %s", err, c.Path())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Something went wrong"})
}
