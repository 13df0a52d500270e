package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/payments"
	"github.com/edusphere/admissions_backend/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *EnrollmentService) completedTotal(tx *gorm.DB, applicantID uuid.UUID) (float64, error) {
	var total float64
	err := tx.Model(&models.PaymentAttempt{}).
		Where("applicant_id = ? AND status = ?", applicantID, models.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

func (s *EnrollmentService) completedCount(tx *gorm.DB, applicantID uuid.UUID) (int64, error) {
	var count int64
	err := tx.Model(&models.PaymentAttempt{}).
		Where("applicant_id = ? AND status = ?", applicantID, models.PaymentCompleted).
		Count(&count).Error
	return count, err
}

// dueAmount derives what the next payment should be worth, from the
// final fee and what has already been settled. Installment 1 is half
// the fee rounded up, everything after that is the open remainder.
func dueAmount(finalFee, alreadyPaid float64, scheme string, installmentIndex int) float64 {
	if scheme == models.SchemeInstallment && installmentIndex == 1 {
		return math.Ceil(finalFee / 2)
	}
	return finalFee - alreadyPaid
}

func (s *EnrollmentService) checkPayable(applicant *models.Applicant) error {
	switch applicant.Status {
	case models.StatusRejected, models.StatusEnrolled:
		return &InvalidStateError{Op: "payment", Status: applicant.Status}
	case models.StatusNew, models.StatusUnderReview:
		return &PreconditionError{Reason: "awaiting fee approval"}
	}

	if applicant.FinalFee <= 0 {
		var pending int64
		s.db.Model(&models.ScholarshipClaim{}).
			Where("applicant_id = ? AND status = ?", applicant.ID, models.ScholarshipPending).
			Count(&pending)
		if pending > 0 {
			return &PreconditionError{Reason: "awaiting scholarship verification"}
		}
		return &PreconditionError{Reason: "awaiting fee approval"}
	}
	return nil
}

// CreatePaymentOrder asks the gateway for a fresh order and records a
// pending PaymentAttempt for it. The gateway call happens before any
// row is written, so a gateway failure leaves nothing behind.
func (s *EnrollmentService) CreatePaymentOrder(applicantID uuid.UUID, scheme string) (*models.PaymentAttempt, error) {
	if scheme != models.SchemeFull && scheme != models.SchemeInstallment {
		return nil, &ValidationError{Fields: map[string]string{"scheme": "scheme must be full or installment"}}
	}

	var applicant models.Applicant
	if err := s.db.First(&applicant, "id = ?", applicantID).Error; err != nil {
		return nil, err
	}
	if applicant.Status == models.StatusPendingVerification {
		return nil, &PreconditionError{Reason: "payment verification pending"}
	}
	if err := s.checkPayable(&applicant); err != nil {
		return nil, err
	}

	paid, err := s.completedTotal(s.db, applicant.ID)
	if err != nil {
		return nil, err
	}
	if scheme == models.SchemeFull && paid > 0 {
		return nil, &PreconditionError{Reason: "an installment plan is already in progress"}
	}

	installmentIndex := 0
	if scheme == models.SchemeInstallment {
		count, err := s.completedCount(s.db, applicant.ID)
		if err != nil {
			return nil, err
		}
		installmentIndex = int(count) + 1
	}

	amount := dueAmount(applicant.FinalFee, paid, scheme, installmentIndex)
	if amount <= 0 {
		return nil, &InvalidStateError{Op: "create payment order", Status: applicant.Status}
	}

	order, err := s.gateway.CreateOrder(amount, s.policy.Currency, utils.NewReference("rcpt"))
	if err != nil {
		return nil, fmt.Errorf("gateway order creation failed: %w", err)
	}

	attempt := models.PaymentAttempt{
		ID:               uuid.New(),
		ApplicantID:      applicant.ID,
		Amount:           amount,
		Currency:         s.policy.Currency,
		Method:           models.MethodGatewayOrder,
		Scheme:           scheme,
		InstallmentIndex: installmentIndex,
		GatewayOrderID:   &order.ID,
		Status:           models.PaymentPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}
		if applicant.Status == models.StatusApproved {
			applicant.Status = models.StatusOrderCreated
			return tx.Save(&applicant).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// CompleteGatewayPayment handles the gateway's completion callback. The
// signature is checked before anything else; a replayed callback for an
// already-completed attempt returns success without side effects.
func (s *EnrollmentService) CompleteGatewayPayment(orderRef, paymentRef, signature string) (*models.PaymentAttempt, error) {
	if len(s.gatewaySecret) == 0 {
		return nil, errors.New("gateway webhook secret is not configured")
	}
	if !payments.VerifyPaymentSignature(orderRef, paymentRef, signature, s.gatewaySecret) {
		return nil, &SignatureError{OrderRef: orderRef}
	}

	var attempt models.PaymentAttempt
	if err := s.db.First(&attempt, "gateway_order_id = ?", orderRef).Error; err != nil {
		return nil, err
	}

	if attempt.Status == models.PaymentCompleted {
		return &attempt, nil
	}
	if attempt.Status != models.PaymentPending {
		return nil, &InvalidStateError{Op: "complete payment", Status: attempt.Status}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var applicant models.Applicant
		if err := tx.First(&applicant, "id = ?", attempt.ApplicantID).Error; err != nil {
			return err
		}

		// Re-derive what this payment should be worth instead of
		// trusting the stored amount against a fee that may have moved.
		paid, err := s.completedTotal(tx, applicant.ID)
		if err != nil {
			return err
		}
		expected := dueAmount(applicant.FinalFee, paid, attempt.Scheme, attempt.InstallmentIndex)
		// Amounts round-trip through numeric(10,2); anything within
		// half a paisa is the same amount.
		if math.Abs(attempt.Amount-expected) > 0.005 {
			return &InvariantViolation{Rule: fmt.Sprintf(
				"payment amount %.2f no longer matches expected %.2f for order %s",
				attempt.Amount, expected, orderRef)}
		}

		attempt.GatewayPaymentID = &paymentRef
		return s.finalizePayment(tx, &attempt, &applicant, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

type ManualPaymentRequest struct {
	Amount      float64 `json:"amount"`
	EvidenceURL string  `json:"evidence_url"`
	Method      string  `json:"method"`
}

// SubmitManualPayment records an offline payment (screenshot or bank
// transfer) for human verification, and books the pending
// direct-payment bonus the applicant is entitled to claim for paying
// without the gateway.
func (s *EnrollmentService) SubmitManualPayment(applicantID uuid.UUID, req ManualPaymentRequest) (*models.PaymentAttempt, error) {
	fields := map[string]string{}
	if req.Amount <= 0 {
		fields["amount"] = "amount must be greater than zero"
	}
	if strings.TrimSpace(req.EvidenceURL) == "" {
		fields["evidence_url"] = "payment evidence is required"
	}
	if req.Method != models.MethodManualScreenshot && req.Method != models.MethodBankTransfer {
		fields["method"] = "method must be manual_screenshot or bank_transfer"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	var applicant models.Applicant
	if err := s.db.First(&applicant, "id = ?", applicantID).Error; err != nil {
		return nil, err
	}
	if err := s.checkPayable(&applicant); err != nil {
		return nil, err
	}

	var attempt models.PaymentAttempt
	err := s.db.Transaction(func(tx *gorm.DB) error {
		paid, err := s.completedTotal(tx, applicant.ID)
		if err != nil {
			return err
		}
		count, err := s.completedCount(tx, applicant.ID)
		if err != nil {
			return err
		}

		scheme := models.SchemeFull
		installmentIndex := 0
		if req.Amount < applicant.FinalFee-paid {
			scheme = models.SchemeInstallment
			installmentIndex = int(count) + 1
		}

		attempt = models.PaymentAttempt{
			ID:               uuid.New(),
			ApplicantID:      applicant.ID,
			Amount:           req.Amount,
			Currency:         s.policy.Currency,
			Method:           req.Method,
			Scheme:           scheme,
			InstallmentIndex: installmentIndex,
			EvidenceURL:      &req.EvidenceURL,
			Status:           models.PaymentPendingVerification,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return err
		}

		if _, err := s.upsertRewardClaim(tx, applicant.ID, models.RewardTypeDirectPaymentBonus, nil, nil); err != nil {
			return err
		}

		if applicant.Status == models.StatusApproved || applicant.Status == models.StatusOrderCreated {
			applicant.Status = models.StatusPendingVerification
			return tx.Save(&applicant).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// VerifyManualPayment is the admin decision on an offline payment. The
// approval path shares the enrollment-completion logic with the gateway
// callback; replays of an already-settled decision are no-ops.
func (s *EnrollmentService) VerifyManualPayment(attemptID, adminID uuid.UUID, approved bool, notes string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	if err := s.db.First(&attempt, "id = ?", attemptID).Error; err != nil {
		return nil, err
	}

	if attempt.Status == models.PaymentCompleted && approved {
		return &attempt, nil
	}
	if attempt.Status == models.PaymentRejected && !approved {
		return &attempt, nil
	}
	if attempt.Status != models.PaymentPendingVerification {
		return nil, &InvalidStateError{Op: "verify payment", Status: attempt.Status}
	}

	now := time.Now()
	attempt.VerifiedBy = &adminID
	attempt.VerifiedAt = &now
	if notes != "" {
		attempt.ReviewNotes = &notes
	}

	if !approved {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			attempt.Status = models.PaymentRejected
			if err := tx.Save(&attempt).Error; err != nil {
				return err
			}

			var applicant models.Applicant
			if err := tx.First(&applicant, "id = ?", attempt.ApplicantID).Error; err != nil {
				return err
			}
			if applicant.Status != models.StatusPendingVerification {
				return nil
			}

			// Rejecting the last unverified attempt releases the
			// applicant back to a payable state so they can retry via
			// the gateway instead of being stuck waiting forever.
			var stillPending int64
			if err := tx.Model(&models.PaymentAttempt{}).
				Where("applicant_id = ? AND status = ?", applicant.ID, models.PaymentPendingVerification).
				Count(&stillPending).Error; err != nil {
				return err
			}
			if stillPending > 0 {
				return nil
			}

			var openOrders int64
			if err := tx.Model(&models.PaymentAttempt{}).
				Where("applicant_id = ? AND status = ?", applicant.ID, models.PaymentPending).
				Count(&openOrders).Error; err != nil {
				return err
			}
			if openOrders > 0 {
				applicant.Status = models.StatusOrderCreated
			} else {
				applicant.Status = models.StatusApproved
			}
			return tx.Save(&applicant).Error
		})
		if err != nil {
			return nil, err
		}
		return &attempt, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var applicant models.Applicant
		if err := tx.First(&applicant, "id = ?", attempt.ApplicantID).Error; err != nil {
			return err
		}
		return s.finalizePayment(tx, &attempt, &applicant, &adminID, &notes)
	})
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// finalizePayment is the single enrollment-completion path shared by the
// gateway callback and manual verification. It marks the attempt
// completed, then either opens the next installment or enrolls the
// applicant and materializes the StudentRecord. StudentRecord creation
// is keyed on applicant_id, so a duplicate delivery can never produce a
// second record.
func (s *EnrollmentService) finalizePayment(tx *gorm.DB, attempt *models.PaymentAttempt, applicant *models.Applicant, verifiedBy *uuid.UUID, notes *string) error {
	attempt.Status = models.PaymentCompleted
	if verifiedBy != nil {
		now := time.Now()
		attempt.VerifiedBy = verifiedBy
		attempt.VerifiedAt = &now
	}
	if notes != nil && *notes != "" {
		attempt.ReviewNotes = notes
	}
	if err := tx.Save(attempt).Error; err != nil {
		return err
	}

	totalPaid, err := s.completedTotal(tx, applicant.ID)
	if err != nil {
		return err
	}
	remaining := applicant.FinalFee - totalPaid

	if remaining > 0 {
		applicant.Status = models.StatusPartialPayment
		if err := tx.Save(applicant).Error; err != nil {
			return err
		}

		due := time.Now().AddDate(0, 0, s.policy.InstallmentDueDays)
		next := models.InstallmentSchedule{
			ID:                uuid.New(),
			ApplicantID:       applicant.ID,
			InstallmentNumber: attempt.InstallmentIndex + 1,
			Amount:            remaining,
			DueDate:           due,
			ReminderDate:      due.AddDate(0, 0, -s.policy.ReminderLeadDays),
			Status:            models.InstallmentPending,
		}
		var existing models.InstallmentSchedule
		err := tx.Where("applicant_id = ? AND installment_number = ?", applicant.ID, next.InstallmentNumber).
			First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&next).Error
		}
		return err
	}

	if err := tx.Model(&models.InstallmentSchedule{}).
		Where("applicant_id = ? AND status IN ?", applicant.ID,
			[]string{models.InstallmentPending, models.InstallmentOverdue}).
		Update("status", models.InstallmentPaid).Error; err != nil {
		return err
	}

	applicant.Status = models.StatusEnrolled
	if err := tx.Save(applicant).Error; err != nil {
		return err
	}

	var record models.StudentRecord
	err = tx.Where("applicant_id = ?", applicant.ID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record = models.StudentRecord{
			ID:             uuid.New(),
			ApplicantID:    applicant.ID,
			EnrollmentDate: time.Now(),
			BatchID:        applicant.BatchID,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	record.FeePaid = totalPaid
	record.FeeDue = math.Max(0, applicant.FinalFee-totalPaid)
	return tx.Save(&record).Error
}
