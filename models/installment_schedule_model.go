package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InstallmentPending = "pending"
	InstallmentPaid    = "paid"
	InstallmentOverdue = "overdue"
)

type InstallmentSchedule struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID uuid.UUID `gorm:"not null;index" json:"applicant_id"`

	InstallmentNumber int       `gorm:"not null" json:"installment_number"`
	Amount            float64   `gorm:"type:numeric(10,2);not null" json:"amount"`
	DueDate           time.Time `gorm:"not null" json:"due_date"`
	ReminderDate      time.Time `gorm:"not null" json:"reminder_date"`
	ReminderSent      bool      `gorm:"default:false" json:"reminder_sent"`

	Status string `gorm:"size:20;not null;default:'pending'" json:"status"`

	Applicant Applicant `gorm:"foreignkey:ApplicantID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
