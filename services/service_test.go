package services

import (
	"errors"
	"fmt"
	"testing"

	config "github.com/edusphere/admissions_backend/configs"
	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-webhook-secret"

type fakeGateway struct {
	counter int
	fail    bool
}

func (f *fakeGateway) CreateOrder(amount float64, currency, receipt string) (*payments.Order, error) {
	if f.fail {
		return nil, errors.New("gateway unavailable")
	}
	f.counter++
	return &payments.Order{
		ID:       fmt.Sprintf("order_%03d", f.counter),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}, nil
}

func newTestService(t *testing.T) (*EnrollmentService, *fakeGateway) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Applicant{},
		&models.ScholarshipClaim{},
		&models.RewardClaim{},
		&models.PaymentAttempt{},
		&models.InstallmentSchedule{},
		&models.StudentRecord{},
	))

	gateway := &fakeGateway{}
	svc := NewEnrollmentService(db, config.DefaultPolicy(), gateway, testSecret)
	return svc, gateway
}

func submitTestApplicant(t *testing.T, svc *EnrollmentService, email string) *models.Applicant {
	t.Helper()
	applicant, err := svc.SubmitApplication(SubmitApplicationRequest{
		FullName:       "Asha Verma",
		Email:          email,
		CourseInterest: "Full Stack Web Development",
	})
	require.NoError(t, err)
	return applicant
}

func approveTestApplicant(t *testing.T, svc *EnrollmentService, applicantID uuid.UUID, fee float64) *models.Applicant {
	t.Helper()
	applicant, err := svc.ReviewApplication(applicantID, uuid.New(), ReviewApplicationRequest{
		Decision:    "approve",
		AssignedFee: fee,
	})
	require.NoError(t, err)
	return applicant
}

func approveManualPayment(t *testing.T, svc *EnrollmentService, attempt *models.PaymentAttempt) uuid.UUID {
	t.Helper()
	adminID := uuid.New()
	_, err := svc.VerifyManualPayment(attempt.ID, adminID, true, "verified against bank statement")
	require.NoError(t, err)
	return adminID
}

func completeGatewayOrder(t *testing.T, svc *EnrollmentService, orderRef string) *models.PaymentAttempt {
	t.Helper()
	paymentRef := "pay_" + orderRef
	signature := payments.SignPayment(orderRef, paymentRef, []byte(testSecret))
	attempt, err := svc.CompleteGatewayPayment(orderRef, paymentRef, signature)
	require.NoError(t, err)
	return attempt
}
