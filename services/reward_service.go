package services

import (
	"errors"
	"time"

	"github.com/edusphere/admissions_backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// autoVerifiedRewards are confirmed by the claiming flow itself (e.g. a
// tracked subscription redirect) and need no human review.
var autoVerifiedRewards = map[string]bool{
	models.RewardTypeReferralSubscription: true,
}

// upsertRewardClaim enforces one claim per (applicant, type). A repeat
// claim returns the existing row; the proof reference is refreshed only
// while the claim is still pending.
func (s *EnrollmentService) upsertRewardClaim(tx *gorm.DB, applicantID uuid.UUID, rewardType string, proofURL, payoutUPIID *string) (*models.RewardClaim, error) {
	var claim models.RewardClaim
	err := tx.Where("applicant_id = ? AND type = ?", applicantID, rewardType).First(&claim).Error
	if err == nil {
		if claim.Status == models.RewardPending {
			changed := false
			if proofURL != nil {
				claim.ProofURL = proofURL
				changed = true
			}
			if payoutUPIID != nil {
				claim.PayoutUPIID = payoutUPIID
				changed = true
			}
			if changed {
				if err := tx.Save(&claim).Error; err != nil {
					return nil, err
				}
			}
		}
		return &claim, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	status := models.RewardPending
	if autoVerifiedRewards[rewardType] {
		status = models.RewardVerified
	}

	claim = models.RewardClaim{
		ID:          uuid.New(),
		ApplicantID: applicantID,
		Type:        rewardType,
		Amount:      s.policy.RewardAmounts[rewardType],
		Status:      status,
		ProofURL:    proofURL,
		PayoutUPIID: payoutUPIID,
	}
	if err := tx.Create(&claim).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

func (s *EnrollmentService) ClaimReward(applicantID uuid.UUID, rewardType string, proofURL, payoutUPIID *string) (*models.RewardClaim, error) {
	if _, ok := s.policy.RewardAmounts[rewardType]; !ok {
		return nil, &ValidationError{Fields: map[string]string{"type": "unknown reward type"}}
	}

	var applicant models.Applicant
	if err := s.db.First(&applicant, "id = ?", applicantID).Error; err != nil {
		return nil, err
	}
	if applicant.Status == models.StatusRejected {
		return nil, &InvalidStateError{Op: "claim reward", Status: applicant.Status}
	}

	var claim *models.RewardClaim
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		claim, err = s.upsertRewardClaim(tx, applicantID, rewardType, proofURL, payoutUPIID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// VerifyReward settles a pending claim one way or the other. Status only
// moves forward: verified and rejected claims are not revisited here.
func (s *EnrollmentService) VerifyReward(claimID, adminID uuid.UUID, decision string) (*models.RewardClaim, error) {
	if decision != "verify" && decision != "reject" {
		return nil, &ValidationError{Fields: map[string]string{"decision": "decision must be verify or reject"}}
	}

	var claim models.RewardClaim
	if err := s.db.First(&claim, "id = ?", claimID).Error; err != nil {
		return nil, err
	}
	if claim.Status != models.RewardPending {
		return nil, &InvalidStateError{Op: "verify reward", Status: claim.Status}
	}

	claim.VerifiedBy = &adminID
	if decision == "verify" {
		claim.Status = models.RewardVerified
	} else {
		claim.Status = models.RewardRejected
	}
	if err := s.db.Save(&claim).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

// ProcessReward pays out a verified claim. A reward is never processed
// before the applicant has a StudentRecord; that guard is hard, not a
// warning, since payouts must not precede enrollment.
func (s *EnrollmentService) ProcessReward(claimID uuid.UUID) (*models.RewardClaim, error) {
	var claim models.RewardClaim
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&claim, "id = ?", claimID).Error; err != nil {
			return err
		}
		if claim.Status == models.RewardProcessed {
			return nil
		}
		if claim.Status != models.RewardVerified {
			return &InvalidStateError{Op: "process reward", Status: claim.Status}
		}

		var enrolled int64
		if err := tx.Model(&models.StudentRecord{}).
			Where("applicant_id = ?", claim.ApplicantID).
			Count(&enrolled).Error; err != nil {
			return err
		}
		if enrolled == 0 {
			return &InvariantViolation{Rule: "reward processed before enrollment completed"}
		}

		now := time.Now()
		claim.Status = models.RewardProcessed
		claim.ProcessedAt = &now
		return tx.Save(&claim).Error
	})
	if err != nil {
		return nil, err
	}
	return &claim, nil
}
