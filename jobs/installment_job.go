package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/edusphere/admissions_backend/database"
	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/notifications"
)

// SendInstallmentReminders emails applicants whose second installment
// reminder date has arrived. Each row is reminded once.
func SendInstallmentReminders() {
	log.Println("Running job: SendInstallmentReminders...")

	now := time.Now()
	var due []models.InstallmentSchedule

	err := database.DB.
		Preload("Applicant").
		Where("status = ? AND reminder_sent = ? AND reminder_date <= ?", models.InstallmentPending, false, now).
		Find(&due).Error
	if err != nil {
		log.Printf("Error checking for installment reminders: %v", err)
		return
	}

	for _, installment := range due {
		if installment.Applicant.Email == nil {
			continue
		}

		emailSubject := "Reminder: Your Fee Installment is Due Soon"
		emailBody := fmt.Sprintf(
			"<h1>Installment Reminder</h1><p>Hi %s,</p><p>Your installment of %.2f is due on %s. Please complete the payment to keep your enrollment on track.</p>",
			installment.Applicant.FullName,
			installment.Amount,
			installment.DueDate.Format("January 2, 2006"),
		)
		go notifications.SendEmail(installment.Applicant.FullName, *installment.Applicant.Email, emailSubject, emailBody)

		installment.ReminderSent = true
		if err := database.DB.Save(&installment).Error; err != nil {
			log.Printf("Error marking reminder sent for installment %s: %v", installment.ID, err)
		}
	}
}

// MarkOverdueInstallments flips pending installments past their due
// date to overdue and tells the applicant.
func MarkOverdueInstallments() {
	log.Println("Running job: MarkOverdueInstallments...")

	now := time.Now()
	var overdue []models.InstallmentSchedule

	err := database.DB.
		Preload("Applicant").
		Where("status = ? AND due_date < ?", models.InstallmentPending, now).
		Find(&overdue).Error
	if err != nil {
		log.Printf("Error checking for overdue installments: %v", err)
		return
	}

	for _, installment := range overdue {
		installment.Status = models.InstallmentOverdue
		if err := database.DB.Save(&installment).Error; err != nil {
			log.Printf("Error marking installment %s overdue: %v", installment.ID, err)
			continue
		}

		if installment.Applicant.Email == nil {
			continue
		}
		emailSubject := "Your Fee Installment is Overdue"
		emailBody := fmt.Sprintf(
			"<h1>Installment Overdue</h1><p>Hi %s,</p><p>Your installment of %.2f was due on %s. Please pay at the earliest to avoid losing your seat.</p>",
			installment.Applicant.FullName,
			installment.Amount,
			installment.DueDate.Format("January 2, 2006"),
		)
		go notifications.SendEmail(installment.Applicant.FullName, *installment.Applicant.Email, emailSubject, emailBody)
	}
}
