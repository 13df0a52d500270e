package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// Policy holds the workflow tunables that would otherwise end up as
// scattered literals: reward amounts, installment offsets, scholarship
// discount percentages. The enrollment service receives one of these at
// construction so tests can run with different values.
type Policy struct {
	Currency string

	InstallmentDueDays int
	ReminderLeadDays   int

	// Fixed payout per reward type.
	RewardAmounts map[string]float64

	// Scholarship discount percentage per eligibility tier.
	ScholarshipDiscounts map[string]float64
}

func DefaultPolicy() Policy {
	return Policy{
		Currency:           "INR",
		InstallmentDueDays: 30,
		ReminderLeadDays:   7,
		RewardAmounts: map[string]float64{
			"referral_video_subscription": 200,
			"social_follow":               50,
			"direct_payment_bonus":        100,
		},
		ScholarshipDiscounts: map[string]float64{
			"government_school": 20,
			"low_income":        15,
			"merit":             10,
		},
	}
}

// LoadPolicy reads overrides from the environment, falling back to the
// defaults when a variable is unset or malformed.
func LoadPolicy() Policy {
	p := DefaultPolicy()

	if v := Config("WORKFLOW_CURRENCY"); v != "" {
		p.Currency = v
	}
	if v := Config("INSTALLMENT_DUE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.InstallmentDueDays = n
		}
	}
	if v := Config("INSTALLMENT_REMINDER_LEAD_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.ReminderLeadDays = n
		}
	}
	if v := Config("DIRECT_PAYMENT_BONUS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			p.RewardAmounts["direct_payment_bonus"] = f
		}
	}

	return p
}
