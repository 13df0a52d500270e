package models

import (
	"time"

	"github.com/google/uuid"
)

// StudentRecord is created at most once per Applicant, when the fee is
// fully settled. The lesson/assignment counters are initialized here and
// owned by the classroom app afterwards.
type StudentRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID uuid.UUID `gorm:"not null;unique" json:"applicant_id"`

	EnrollmentDate time.Time `gorm:"not null" json:"enrollment_date"`
	BatchID        *string   `gorm:"size:50" json:"batch_id"`

	FeePaid float64 `gorm:"type:numeric(10,2);default:0.00" json:"fee_paid"`
	FeeDue  float64 `gorm:"type:numeric(10,2);default:0.00" json:"fee_due"`

	LessonsCompleted     int `gorm:"default:0" json:"lessons_completed"`
	AssignmentsCompleted int `gorm:"default:0" json:"assignments_completed"`

	ReceiptURL *string `gorm:"size:255" json:"receipt_url"`

	Applicant Applicant `gorm:"foreignkey:ApplicantID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
