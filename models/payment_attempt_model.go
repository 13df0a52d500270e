package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PaymentPending             = "pending"
	PaymentCompleted           = "completed"
	PaymentFailed              = "failed"
	PaymentPendingVerification = "pending_verification"
	PaymentRejected            = "rejected"

	MethodGatewayOrder     = "gateway_order"
	MethodManualScreenshot = "manual_screenshot"
	MethodBankTransfer     = "bank_transfer"

	SchemeFull        = "full"
	SchemeInstallment = "installment"
)

type PaymentAttempt struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID uuid.UUID `gorm:"not null;index" json:"applicant_id"`

	Amount   float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency string  `gorm:"size:3" json:"currency"`
	Method   string  `gorm:"size:30;not null" json:"method"`

	Scheme           string `gorm:"size:20;not null;default:'full'" json:"scheme"`
	InstallmentIndex int    `gorm:"default:0" json:"installment_index"`

	GatewayOrderID   *string `gorm:"size:255;unique" json:"gateway_order_id"`
	GatewayPaymentID *string `gorm:"size:255;unique" json:"gateway_payment_id"`
	EvidenceURL      *string `gorm:"size:255" json:"evidence_url"`

	Status      string     `gorm:"size:25;not null;default:'pending'" json:"status"`
	VerifiedBy  *uuid.UUID `json:"verified_by"`
	VerifiedAt  *time.Time `json:"verified_at"`
	ReviewNotes *string    `gorm:"type:text" json:"review_notes"`

	Applicant Applicant `gorm:"foreignkey:ApplicantID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
