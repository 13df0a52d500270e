package models

import (
	"time"

	"github.com/google/uuid"
)

// Applicant lifecycle. Review transitions are admin-driven; the jump to
// StatusEnrolled only ever happens on a verified payment.
const (
	StatusNew                 = "new"
	StatusUnderReview         = "under_review"
	StatusApproved            = "approved"
	StatusRejected            = "rejected"
	StatusOrderCreated        = "order_created"
	StatusPendingVerification = "payment_pending_verification"
	StatusPartialPayment      = "partial_payment"
	StatusEnrolled            = "enrolled"
)

type Applicant struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	FullName string    `gorm:"size:255;not null" json:"full_name"`
	Email    *string   `gorm:"size:255;unique" json:"email"`
	Phone    *string   `gorm:"size:15;unique" json:"phone"`

	Status         string  `gorm:"size:30;not null;default:'new'" json:"status"`
	CourseInterest string  `gorm:"size:255" json:"course_interest"`
	Source         *string `gorm:"size:100" json:"source"`

	AssignedFee    float64 `gorm:"type:numeric(10,2);default:0.00" json:"assigned_fee"`
	DiscountAmount float64 `gorm:"type:numeric(10,2);default:0.00" json:"discount_amount"`
	FinalFee       float64 `gorm:"type:numeric(10,2);default:0.00" json:"final_fee"`

	BatchID *string `gorm:"size:50" json:"batch_id"`

	ReviewedBy  *uuid.UUID `json:"reviewed_by"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	ReviewNotes *string    `gorm:"type:text" json:"review_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
