package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RewardTypeReferralSubscription = "referral_video_subscription"
	RewardTypeSocialFollow         = "social_follow"
	RewardTypeDirectPaymentBonus   = "direct_payment_bonus"

	RewardPending   = "pending"
	RewardVerified  = "verified"
	RewardProcessed = "processed"
	RewardRejected  = "rejected"
)

// RewardClaim is unique per (applicant, type). Status only moves
// forward; processed is terminal and requires a StudentRecord first.
type RewardClaim struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID uuid.UUID `gorm:"not null;uniqueIndex:idx_applicant_reward_type" json:"applicant_id"`
	Type        string    `gorm:"size:50;not null;uniqueIndex:idx_applicant_reward_type" json:"type"`

	Amount      float64 `gorm:"type:numeric(10,2);default:0.00" json:"amount"`
	Status      string  `gorm:"size:20;not null;default:'pending'" json:"status"`
	ProofURL    *string `gorm:"size:255" json:"proof_url"`
	PayoutUPIID *string `gorm:"size:100" json:"payout_upi_id"`

	VerifiedBy  *uuid.UUID `json:"verified_by"`
	ProcessedAt *time.Time `json:"processed_at"`

	Applicant Applicant `gorm:"foreignkey:ApplicantID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
