package services

import (
	"testing"
	"time"

	"github.com/edusphere/admissions_backend/models"
	"github.com/edusphere/admissions_backend/payments"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderBeforeApproval(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")

	_, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	var preconditionErr *PreconditionError
	require.ErrorAs(t, err, &preconditionErr)
	assert.Equal(t, "awaiting fee approval", preconditionErr.Reason)
}

func TestGatewayFailureLeavesNoAttempt(t *testing.T) {
	svc, gateway := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 25000)

	gateway.fail = true
	_, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	require.Error(t, err)

	var count int64
	svc.DB().Model(&models.PaymentAttempt{}).Count(&count)
	assert.EqualValues(t, 0, count, "a failed gateway call must not leave an orphaned attempt")
}

func TestFullPaymentEndToEnd(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 25000)

	attempt, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, attempt.Amount)
	assert.Equal(t, models.PaymentPending, attempt.Status)

	var ordered models.Applicant
	require.NoError(t, svc.DB().First(&ordered, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusOrderCreated, ordered.Status)

	completed := completeGatewayOrder(t, svc, *attempt.GatewayOrderID)
	assert.Equal(t, models.PaymentCompleted, completed.Status)

	var enrolled models.Applicant
	require.NoError(t, svc.DB().First(&enrolled, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusEnrolled, enrolled.Status)

	var records []models.StudentRecord
	require.NoError(t, svc.DB().Where("applicant_id = ?", applicant.ID).Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, 25000.0, records[0].FeePaid)
	assert.Equal(t, 0.0, records[0].FeeDue)
}

func TestWebhookIdempotency(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 25000)

	attempt, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	require.NoError(t, err)

	orderRef := *attempt.GatewayOrderID
	completeGatewayOrder(t, svc, orderRef)
	completeGatewayOrder(t, svc, orderRef)

	var completedCount int64
	svc.DB().Model(&models.PaymentAttempt{}).
		Where("status = ?", models.PaymentCompleted).
		Count(&completedCount)
	assert.EqualValues(t, 1, completedCount)

	var recordCount int64
	svc.DB().Model(&models.StudentRecord{}).
		Where("applicant_id = ?", applicant.ID).
		Count(&recordCount)
	assert.EqualValues(t, 1, recordCount, "replayed webhook must not duplicate the student record")
}

func TestSignatureMismatchNeverTransitions(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 25000)

	attempt, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	require.NoError(t, err)

	orderRef := *attempt.GatewayOrderID
	forged := payments.SignPayment(orderRef, "pay_evil", []byte("wrong-secret"))

	_, err = svc.CompleteGatewayPayment(orderRef, "pay_evil", forged)
	var signatureErr *SignatureError
	require.ErrorAs(t, err, &signatureErr)

	var unchanged models.PaymentAttempt
	require.NoError(t, svc.DB().First(&unchanged, "id = ?", attempt.ID).Error)
	assert.Equal(t, models.PaymentPending, unchanged.Status)

	var record models.Applicant
	require.NoError(t, svc.DB().First(&record, "id = ?", applicant.ID).Error)
	assert.NotEqual(t, models.StatusEnrolled, record.Status)
}

func TestInstallmentEndToEnd(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 20000)

	first, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeInstallment)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, first.Amount)
	assert.Equal(t, 1, first.InstallmentIndex)

	completeGatewayOrder(t, svc, *first.GatewayOrderID)

	var partial models.Applicant
	require.NoError(t, svc.DB().First(&partial, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusPartialPayment, partial.Status)

	var schedule models.InstallmentSchedule
	require.NoError(t, svc.DB().
		Where("applicant_id = ? AND installment_number = ?", applicant.ID, 2).
		First(&schedule).Error)
	assert.Equal(t, 10000.0, schedule.Amount)
	assert.Equal(t, models.InstallmentPending, schedule.Status)

	wantDue := time.Now().AddDate(0, 0, 30)
	assert.WithinDuration(t, wantDue, schedule.DueDate, time.Minute)
	assert.WithinDuration(t, schedule.DueDate.AddDate(0, 0, -7), schedule.ReminderDate, time.Second)

	second, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeInstallment)
	require.NoError(t, err)
	assert.Equal(t, 10000.0, second.Amount)
	assert.Equal(t, 2, second.InstallmentIndex)

	completeGatewayOrder(t, svc, *second.GatewayOrderID)

	var enrolled models.Applicant
	require.NoError(t, svc.DB().First(&enrolled, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusEnrolled, enrolled.Status)

	var recordCount int64
	svc.DB().Model(&models.StudentRecord{}).Where("applicant_id = ?", applicant.ID).Count(&recordCount)
	assert.EqualValues(t, 1, recordCount)

	require.NoError(t, svc.DB().
		Where("applicant_id = ? AND installment_number = ?", applicant.ID, 2).
		First(&schedule).Error)
	assert.Equal(t, models.InstallmentPaid, schedule.Status)
}

func TestManualPaymentFlow(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 15000)

	attempt, err := svc.SubmitManualPayment(applicant.ID, ManualPaymentRequest{
		Amount:      15000,
		EvidenceURL: "https://cdn.example.com/screenshot.png",
		Method:      models.MethodManualScreenshot,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPendingVerification, attempt.Status)

	var pending models.Applicant
	require.NoError(t, svc.DB().First(&pending, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusPendingVerification, pending.Status)

	// submitting an offline payment books the pending bonus claim
	var bonus models.RewardClaim
	require.NoError(t, svc.DB().
		Where("applicant_id = ? AND type = ?", applicant.ID, models.RewardTypeDirectPaymentBonus).
		First(&bonus).Error)
	assert.Equal(t, models.RewardPending, bonus.Status)
	assert.Equal(t, 100.0, bonus.Amount)

	adminID := approveManualPayment(t, svc, attempt)

	var enrolled models.Applicant
	require.NoError(t, svc.DB().First(&enrolled, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusEnrolled, enrolled.Status)

	var verified models.PaymentAttempt
	require.NoError(t, svc.DB().First(&verified, "id = ?", attempt.ID).Error)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, adminID, *verified.VerifiedBy)

	// replaying the approval is a no-op
	_, err = svc.VerifyManualPayment(attempt.ID, adminID, true, "")
	require.NoError(t, err)

	var recordCount int64
	svc.DB().Model(&models.StudentRecord{}).Where("applicant_id = ?", applicant.ID).Count(&recordCount)
	assert.EqualValues(t, 1, recordCount)
}

func TestManualRejectionReleasesGatewayPath(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 15000)

	attempt, err := svc.SubmitManualPayment(applicant.ID, ManualPaymentRequest{
		Amount:      15000,
		EvidenceURL: "https://cdn.example.com/screenshot.png",
		Method:      models.MethodManualScreenshot,
	})
	require.NoError(t, err)

	_, err = svc.VerifyManualPayment(attempt.ID, uuid.New(), false, "screenshot unreadable")
	require.NoError(t, err)

	// rejecting the only unverified attempt must not strand the
	// applicant; the gateway path has to work again
	var released models.Applicant
	require.NoError(t, svc.DB().First(&released, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusApproved, released.Status)

	order, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	require.NoError(t, err)
	completeGatewayOrder(t, svc, *order.GatewayOrderID)

	var enrolled models.Applicant
	require.NoError(t, svc.DB().First(&enrolled, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusEnrolled, enrolled.Status)
}

func TestManualRejectionKeepsOpenGatewayOrder(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 15000)

	order, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	require.NoError(t, err)

	attempt, err := svc.SubmitManualPayment(applicant.ID, ManualPaymentRequest{
		Amount:      15000,
		EvidenceURL: "https://cdn.example.com/screenshot.png",
		Method:      models.MethodBankTransfer,
	})
	require.NoError(t, err)

	_, err = svc.VerifyManualPayment(attempt.ID, uuid.New(), false, "amount does not match")
	require.NoError(t, err)

	var released models.Applicant
	require.NoError(t, svc.DB().First(&released, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusOrderCreated, released.Status)

	completeGatewayOrder(t, svc, *order.GatewayOrderID)

	var enrolled models.Applicant
	require.NoError(t, svc.DB().First(&enrolled, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusEnrolled, enrolled.Status)
}

func TestGatewayAmountToleratesNumericRounding(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 15000)

	attempt, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	require.NoError(t, err)

	// drift from the numeric(10,2) round-trip is under half a paisa
	// and must not be treated as tampering
	require.NoError(t, svc.DB().Model(&models.PaymentAttempt{}).
		Where("id = ?", attempt.ID).
		Update("amount", 15000.004).Error)

	completeGatewayOrder(t, svc, *attempt.GatewayOrderID)

	var enrolled models.Applicant
	require.NoError(t, svc.DB().First(&enrolled, "id = ?", applicant.ID).Error)
	assert.Equal(t, models.StatusEnrolled, enrolled.Status)
}

func TestGatewayAmountMismatchStillViolates(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 15000)

	attempt, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	require.NoError(t, err)

	require.NoError(t, svc.DB().Model(&models.PaymentAttempt{}).
		Where("id = ?", attempt.ID).
		Update("amount", 14000).Error)

	orderRef := *attempt.GatewayOrderID
	paymentRef := "pay_" + orderRef
	signature := payments.SignPayment(orderRef, paymentRef, []byte(testSecret))

	_, err = svc.CompleteGatewayPayment(orderRef, paymentRef, signature)
	var invariantErr *InvariantViolation
	require.ErrorAs(t, err, &invariantErr)
}

func TestManualPaymentRejection(t *testing.T) {
	svc, _ := newTestService(t)
	applicant := submitTestApplicant(t, svc, "a@x.com")
	approveTestApplicant(t, svc, applicant.ID, 15000)

	attempt, err := svc.SubmitManualPayment(applicant.ID, ManualPaymentRequest{
		Amount:      15000,
		EvidenceURL: "https://cdn.example.com/screenshot.png",
		Method:      models.MethodBankTransfer,
	})
	require.NoError(t, err)

	rejected, err := svc.VerifyManualPayment(attempt.ID, uuid.New(), false, "screenshot unreadable")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRejected, rejected.Status)

	var recordCount int64
	svc.DB().Model(&models.StudentRecord{}).Where("applicant_id = ?", applicant.ID).Count(&recordCount)
	assert.EqualValues(t, 0, recordCount)
}
