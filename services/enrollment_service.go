package services

import (
	"errors"
	"regexp"
	"strings"
	"time"

	config "github.com/edusphere/admissions_backend/configs"
	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/payments"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnrollmentService owns the applicant lifecycle from first inquiry to
// paid enrollment. All mutations go through here; handlers only parse,
// authenticate and map errors to HTTP.
type EnrollmentService struct {
	db            *gorm.DB
	policy        config.Policy
	gateway       payments.OrderCreator
	gatewaySecret []byte
}

func NewEnrollmentService(db *gorm.DB, policy config.Policy, gateway payments.OrderCreator, gatewaySecret string) *EnrollmentService {
	return &EnrollmentService{
		db:            db,
		policy:        policy,
		gateway:       gateway,
		gatewaySecret: []byte(gatewaySecret),
	}
}

func (s *EnrollmentService) DB() *gorm.DB { return s.db }

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
var digitsOnly = regexp.MustCompile(`[^0-9]`)

// NormalizePhone reduces a raw phone string to a 10-digit national
// number, tolerating the usual +91 / 0 prefixes and separators.
func NormalizePhone(raw string) (string, bool) {
	digits := digitsOnly.ReplaceAllString(raw, "")
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	if len(digits) == 11 && strings.HasPrefix(digits, "0") {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", false
	}
	return digits, true
}

type ScholarshipInput struct {
	Tier          string  `json:"tier" validate:"required"`
	SchoolingInfo *string `json:"schooling_info"`
	IncomeBracket *string `json:"income_bracket"`
	DocumentURL   *string `json:"document_url"`
}

type RewardInput struct {
	Type        string  `json:"type" validate:"required"`
	ProofURL    *string `json:"proof_url"`
	PayoutUPIID *string `json:"payout_upi_id"`
}

type SubmitApplicationRequest struct {
	FullName       string            `json:"full_name"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
	CourseInterest string            `json:"course_interest"`
	Source         *string           `json:"source"`
	Scholarship    *ScholarshipInput `json:"scholarship"`
	Rewards        []RewardInput     `json:"rewards"`
}

// SubmitApplication creates an Applicant in state "new", or updates the
// existing one matched by email or phone. The upsert is deliberate:
// duplicate applicants would corrupt payment linkage downstream.
func (s *EnrollmentService) SubmitApplication(req SubmitApplicationRequest) (*models.Applicant, error) {
	fields := map[string]string{}

	if strings.TrimSpace(req.FullName) == "" {
		fields["full_name"] = "full name is required"
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email != "" && !emailPattern.MatchString(email) {
		fields["email"] = "email address is not valid"
	}

	var phone string
	if strings.TrimSpace(req.Phone) != "" {
		normalized, ok := NormalizePhone(req.Phone)
		if !ok {
			fields["phone"] = "phone number must be a valid 10-digit number"
		}
		phone = normalized
	}

	if email == "" && strings.TrimSpace(req.Phone) == "" {
		fields["contact"] = "at least one of email or phone is required"
	}

	if strings.TrimSpace(req.CourseInterest) == "" {
		fields["course_interest"] = "course interest is required"
	}

	if req.Scholarship != nil {
		if _, ok := s.policy.ScholarshipDiscounts[req.Scholarship.Tier]; !ok {
			fields["scholarship.tier"] = "unknown scholarship tier"
		}
	}
	for _, rc := range req.Rewards {
		if _, ok := s.policy.RewardAmounts[rc.Type]; !ok {
			fields["rewards.type"] = "unknown reward type"
		}
	}

	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var applicant models.Applicant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&models.Applicant{})
		switch {
		case email != "" && phone != "":
			query = query.Where("email = ? OR phone = ?", email, phone)
		case email != "":
			query = query.Where("email = ?", email)
		default:
			query = query.Where("phone = ?", phone)
		}

		err := query.First(&applicant).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			applicant = models.Applicant{
				ID:       uuid.New(),
				FullName: req.FullName,
				Status:   models.StatusNew,
				Source:   req.Source,
			}
		}

		applicant.FullName = req.FullName
		applicant.CourseInterest = req.CourseInterest
		if email != "" {
			applicant.Email = &email
		}
		if phone != "" {
			applicant.Phone = &phone
		}

		if err := tx.Save(&applicant).Error; err != nil {
			return err
		}

		if req.Scholarship != nil {
			var existing models.ScholarshipClaim
			err := tx.Where("applicant_id = ? AND status IN ?", applicant.ID,
				[]string{models.ScholarshipPending, models.ScholarshipVerified}).
				First(&existing).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				claim := models.ScholarshipClaim{
					ID:              uuid.New(),
					ApplicantID:     applicant.ID,
					Tier:            req.Scholarship.Tier,
					SchoolingInfo:   req.Scholarship.SchoolingInfo,
					IncomeBracket:   req.Scholarship.IncomeBracket,
					DocumentURL:     req.Scholarship.DocumentURL,
					DiscountPercent: s.policy.ScholarshipDiscounts[req.Scholarship.Tier],
					Status:          models.ScholarshipPending,
				}
				if err := tx.Create(&claim).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
		}

		for _, rc := range req.Rewards {
			if _, err := s.upsertRewardClaim(tx, applicant.ID, rc.Type, rc.ProofURL, rc.PayoutUPIID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &applicant, nil
}

// BeginReview moves a fresh application into under_review when an admin
// opens it. Re-opening an application already under review is a no-op.
func (s *EnrollmentService) BeginReview(applicantID, adminID uuid.UUID) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := s.db.First(&applicant, "id = ?", applicantID).Error; err != nil {
		return nil, err
	}

	switch applicant.Status {
	case models.StatusUnderReview:
		return &applicant, nil
	case models.StatusNew:
	default:
		return nil, &InvalidStateError{Op: "begin review", Status: applicant.Status}
	}

	now := time.Now()
	applicant.Status = models.StatusUnderReview
	applicant.ReviewedBy = &adminID
	applicant.ReviewedAt = &now
	if err := s.db.Save(&applicant).Error; err != nil {
		return nil, err
	}
	return &applicant, nil
}

type ReviewApplicationRequest struct {
	Decision    string  `json:"decision"`
	AssignedFee float64 `json:"assigned_fee"`
	BatchID     *string `json:"batch_id"`
	Notes       string  `json:"notes"`
}

// ReviewApplication approves or rejects an application. Approval can be
// repeated to change the assigned fee until a payment order exists;
// rejection is terminal. Fees are recomputed against the scholarship
// claim on every approval, never read from a stale stored value.
func (s *EnrollmentService) ReviewApplication(applicantID, adminID uuid.UUID, req ReviewApplicationRequest) (*models.Applicant, error) {
	fields := map[string]string{}
	switch req.Decision {
	case "approve":
		if req.AssignedFee <= 0 {
			fields["assigned_fee"] = "assigned fee must be greater than zero"
		}
	case "reject":
		if strings.TrimSpace(req.Notes) == "" {
			fields["notes"] = "a rejection reason is required"
		}
	default:
		fields["decision"] = "decision must be approve or reject"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var applicant models.Applicant
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&applicant, "id = ?", applicantID).Error; err != nil {
			return err
		}

		switch applicant.Status {
		case models.StatusNew, models.StatusUnderReview, models.StatusApproved:
		default:
			return &InvalidStateError{Op: "review application", Status: applicant.Status}
		}

		now := time.Now()
		applicant.ReviewedBy = &adminID
		applicant.ReviewedAt = &now
		if req.Notes != "" {
			applicant.ReviewNotes = &req.Notes
		}

		if req.Decision == "reject" {
			applicant.Status = models.StatusRejected
			return tx.Save(&applicant).Error
		}

		applicant.Status = models.StatusApproved
		applicant.AssignedFee = req.AssignedFee
		if req.BatchID != nil {
			applicant.BatchID = req.BatchID
		}
		if err := s.recomputeFees(tx, &applicant); err != nil {
			return err
		}
		return tx.Save(&applicant).Error
	})
	if err != nil {
		return nil, err
	}
	return &applicant, nil
}

// recomputeFees derives discount and final fee from the assigned fee and
// the latest scholarship claim. Deterministic: re-running it after a fee
// change yields the discount for the new fee, not the stored one. While
// a claim is still pending the final fee stays unset so payment orders
// are held back until verification.
func (s *EnrollmentService) recomputeFees(tx *gorm.DB, applicant *models.Applicant) error {
	if applicant.AssignedFee <= 0 {
		return nil
	}

	var claim models.ScholarshipClaim
	err := tx.Where("applicant_id = ?", applicant.ID).
		Order("created_at DESC").
		First(&claim).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	switch {
	case err == nil && claim.Status == models.ScholarshipPending:
		applicant.DiscountAmount = 0
		applicant.FinalFee = 0
	case err == nil && claim.Status == models.ScholarshipVerified:
		applicant.DiscountAmount = applicant.AssignedFee * claim.DiscountPercent / 100
		applicant.FinalFee = applicant.AssignedFee - applicant.DiscountAmount
	default:
		applicant.DiscountAmount = 0
		applicant.FinalFee = applicant.AssignedFee
	}
	return nil
}

// DeleteApplicant removes an applicant and every dependent record in a
// fixed order: rewards, installments, payments, scholarship claims,
// student record, then the applicant row itself.
func (s *EnrollmentService) DeleteApplicant(applicantID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var applicant models.Applicant
		if err := tx.First(&applicant, "id = ?", applicantID).Error; err != nil {
			return err
		}

		if err := tx.Delete(&models.RewardClaim{}, "applicant_id = ?", applicantID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.InstallmentSchedule{}, "applicant_id = ?", applicantID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.PaymentAttempt{}, "applicant_id = ?", applicantID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ScholarshipClaim{}, "applicant_id = ?", applicantID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.StudentRecord{}, "applicant_id = ?", applicantID).Error; err != nil {
			return err
		}
		return tx.Delete(&applicant).Error
	})
}
