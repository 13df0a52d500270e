package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ScholarshipPending  = "pending"
	ScholarshipVerified = "verified"
	ScholarshipRejected = "rejected"
)

// ScholarshipClaim is one-to-one with an Applicant while pending; a
// verified or rejected claim is immutable, re-applying means a new row.
type ScholarshipClaim struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID uuid.UUID `gorm:"not null;index" json:"applicant_id"`

	Tier            string  `gorm:"size:50;not null" json:"tier"`
	SchoolingInfo   *string `gorm:"type:text" json:"schooling_info"`
	IncomeBracket   *string `gorm:"size:50" json:"income_bracket"`
	DocumentURL     *string `gorm:"size:255" json:"document_url"`
	DiscountPercent float64 `gorm:"type:numeric(5,2);default:0.00" json:"discount_percent"`

	Status     string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	VerifiedBy *uuid.UUID `json:"verified_by"`
	VerifiedAt *time.Time `json:"verified_at"`

	Applicant Applicant `gorm:"foreignkey:ApplicantID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
