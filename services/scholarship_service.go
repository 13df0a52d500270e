package services

import (
	"time"

	"github.com/edusphere/admissions_backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerifyScholarship settles a pending claim. Verified and rejected
// claims are immutable; re-verification means submitting a new claim.
// Either way the applicant's discount and final fee are re-derived from
// the assigned fee so they can never go stale.
func (s *EnrollmentService) VerifyScholarship(claimID, adminID uuid.UUID, decision string) (*models.ScholarshipClaim, error) {
	if decision != "verify" && decision != "reject" {
		return nil, &ValidationError{Fields: map[string]string{"decision": "decision must be verify or reject"}}
	}

	var claim models.ScholarshipClaim
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&claim, "id = ?", claimID).Error; err != nil {
			return err
		}
		if claim.Status != models.ScholarshipPending {
			return &InvalidStateError{Op: "verify scholarship", Status: claim.Status}
		}

		now := time.Now()
		claim.VerifiedBy = &adminID
		claim.VerifiedAt = &now
		if decision == "verify" {
			claim.Status = models.ScholarshipVerified
		} else {
			claim.Status = models.ScholarshipRejected
		}
		if err := tx.Save(&claim).Error; err != nil {
			return err
		}

		var applicant models.Applicant
		if err := tx.First(&applicant, "id = ?", claim.ApplicantID).Error; err != nil {
			return err
		}
		if err := s.recomputeFees(tx, &applicant); err != nil {
			return err
		}
		return tx.Save(&applicant).Error
	})
	if err != nil {
		return nil, err
	}
	return &claim, nil
}
