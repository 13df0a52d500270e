package services

import (
	"testing"

	"github.com/edusphere/admissions_backend/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitWithScholarship(t *testing.T, svc *EnrollmentService, tier string) (*models.Applicant, *models.ScholarshipClaim) {
	t.Helper()
	applicant, err := svc.SubmitApplication(SubmitApplicationRequest{
		FullName:       "Asha Verma",
		Email:          "a@x.com",
		CourseInterest: "Full Stack Web Development",
		Scholarship:    &ScholarshipInput{Tier: tier},
	})
	require.NoError(t, err)

	var claim models.ScholarshipClaim
	require.NoError(t, svc.DB().Where("applicant_id = ?", applicant.ID).First(&claim).Error)
	return applicant, &claim
}

func TestScholarshipHoldsFinalFeeUntilVerified(t *testing.T) {
	svc, _ := newTestService(t)
	applicant, _ := submitWithScholarship(t, svc, "government_school")

	approved := approveTestApplicant(t, svc, applicant.ID, 25000)
	assert.Equal(t, 0.0, approved.FinalFee, "final fee stays unset while the claim is pending")

	_, err := svc.CreatePaymentOrder(applicant.ID, models.SchemeFull)
	var preconditionErr *PreconditionError
	require.ErrorAs(t, err, &preconditionErr)
	assert.Equal(t, "awaiting scholarship verification", preconditionErr.Reason)
}

func TestScholarshipVerificationComputesDiscount(t *testing.T) {
	svc, _ := newTestService(t)
	applicant, claim := submitWithScholarship(t, svc, "government_school")
	approveTestApplicant(t, svc, applicant.ID, 25000)

	verified, err := svc.VerifyScholarship(claim.ID, uuid.New(), "verify")
	require.NoError(t, err)
	assert.Equal(t, models.ScholarshipVerified, verified.Status)

	var updated models.Applicant
	require.NoError(t, svc.DB().First(&updated, "id = ?", applicant.ID).Error)
	assert.Equal(t, 5000.0, updated.DiscountAmount)
	assert.Equal(t, 20000.0, updated.FinalFee)
}

func TestScholarshipDiscountRecomputedOnFeeChange(t *testing.T) {
	svc, _ := newTestService(t)
	applicant, claim := submitWithScholarship(t, svc, "government_school")
	approveTestApplicant(t, svc, applicant.ID, 25000)

	_, err := svc.VerifyScholarship(claim.ID, uuid.New(), "verify")
	require.NoError(t, err)

	// fee changes after the scholarship was verified: the discount
	// must be re-derived, not read back stale
	updated := approveTestApplicant(t, svc, applicant.ID, 30000)
	assert.Equal(t, 6000.0, updated.DiscountAmount)
	assert.Equal(t, 24000.0, updated.FinalFee)
}

func TestScholarshipRejectionRestoresFullFee(t *testing.T) {
	svc, _ := newTestService(t)
	applicant, claim := submitWithScholarship(t, svc, "low_income")
	approveTestApplicant(t, svc, applicant.ID, 25000)

	_, err := svc.VerifyScholarship(claim.ID, uuid.New(), "reject")
	require.NoError(t, err)

	var updated models.Applicant
	require.NoError(t, svc.DB().First(&updated, "id = ?", applicant.ID).Error)
	assert.Equal(t, 0.0, updated.DiscountAmount)
	assert.Equal(t, 25000.0, updated.FinalFee)
}

func TestScholarshipClaimImmutableOnceSettled(t *testing.T) {
	svc, _ := newTestService(t)
	applicant, claim := submitWithScholarship(t, svc, "merit")
	approveTestApplicant(t, svc, applicant.ID, 25000)

	_, err := svc.VerifyScholarship(claim.ID, uuid.New(), "verify")
	require.NoError(t, err)

	_, err = svc.VerifyScholarship(claim.ID, uuid.New(), "reject")
	var stateErr *InvalidStateError
	require.ErrorAs(t, err, &stateErr)
}
