package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

/* ===================== Enums (string) ===================== */

const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusFailed  = "FAILED"
)

const (
	GroupOne = "G1" // 10-15 years
	GroupTwo = "G2" // 16-22 years
)

const (
	EnrollmentNew       = "NEW"
	EnrollmentReturning = "RETURNING"
)

/* ===================== Model ===================== */

type Registration struct {
	RegistrationID uuid.UUID `gorm:"column:registration_id;type:uuid;default:gen_random_uuid();primaryKey" json:"registration_id"`

	// Applicant
	RegistrationFullName string `gorm:"column:registration_full_name;type:varchar(200);not null" json:"registration_full_name"`
	RegistrationEmail    string `gorm:"column:registration_email;type:varchar(254);not null;index" json:"registration_email"`
	RegistrationPhone    string `gorm:"column:registration_phone;type:varchar(20);not null" json:"registration_phone"`
	RegistrationCountry  string `gorm:"column:registration_country;type:varchar(100);not null" json:"registration_country"`
	RegistrationAge      int    `gorm:"column:registration_age;not null;check:registration_age >= 10 AND registration_age <= 22" json:"registration_age"`

	// Program selection
	RegistrationGroup          string     `gorm:"column:registration_group;type:varchar(2);not null" json:"registration_group"`
	RegistrationCohortID       *uuid.UUID `gorm:"column:registration_cohort_id;type:uuid" json:"registration_cohort_id,omitempty"`
	RegistrationDimensionID    *uuid.UUID `gorm:"column:registration_dimension_id;type:uuid" json:"registration_dimension_id,omitempty"`
	RegistrationEnrollmentType string     `gorm:"column:registration_enrollment_type;type:varchar(10);not null" json:"registration_enrollment_type"`

	// Legacy code columns kept for rows imported before cohorts/dimensions
	// became admin-managed tables.
	RegistrationCohortCode    *string `gorm:"column:registration_cohort_code;type:varchar(2)" json:"registration_cohort_code,omitempty"`
	RegistrationDimensionCode *string `gorm:"column:registration_dimension_code;type:varchar(1)" json:"registration_dimension_code,omitempty"`

	// Guardian (required when age < guardian threshold)
	RegistrationGuardianName  *string `gorm:"column:registration_guardian_name;type:varchar(200)" json:"registration_guardian_name,omitempty"`
	RegistrationGuardianPhone *string `gorm:"column:registration_guardian_phone;type:varchar(20)" json:"registration_guardian_phone,omitempty"`

	RegistrationReferralSource *string `gorm:"column:registration_referral_source;type:varchar(200)" json:"registration_referral_source,omitempty"`

	// Money
	RegistrationAmount   decimal.Decimal `gorm:"column:registration_amount;type:numeric(10,2);not null" json:"registration_amount"`
	RegistrationCurrency string          `gorm:"column:registration_currency;type:varchar(3);not null;default:USD" json:"registration_currency"`

	// Payment state. The two paid flags are the source of truth;
	// status is derived and must never contradict them.
	RegistrationStatus            string           `gorm:"column:registration_status;type:varchar(10);not null;default:'PENDING'" json:"registration_status"`
	RegistrationFeePaid           bool             `gorm:"column:registration_fee_paid;not null;default:false" json:"registration_fee_paid"`
	CourseFeePaid                 bool             `gorm:"column:course_fee_paid;not null;default:false" json:"course_fee_paid"`
	RegistrationFeeAmount         *decimal.Decimal `gorm:"column:registration_fee_amount;type:numeric(10,2)" json:"registration_fee_amount,omitempty"`
	CourseFeeAmount               *decimal.Decimal `gorm:"column:course_fee_amount;type:numeric(10,2)" json:"course_fee_amount,omitempty"`

	// Gateway correlation (at most one outstanding reference per gateway)
	RegistrationSquadReference    *string `gorm:"column:registration_squad_reference;type:varchar(100);uniqueIndex" json:"registration_squad_reference,omitempty"`
	RegistrationPaystackReference *string `gorm:"column:registration_paystack_reference;type:varchar(100);uniqueIndex" json:"registration_paystack_reference,omitempty"`

	// Assigned at most once, immutable thereafter.
	RegistrationParticipantID *string `gorm:"column:registration_participant_id;type:varchar(50);uniqueIndex" json:"registration_participant_id,omitempty"`

	CreatedAt time.Time      `gorm:"column:registration_created_at;autoCreateTime" json:"registration_created_at"`
	UpdatedAt time.Time      `gorm:"column:registration_updated_at;autoUpdateTime" json:"registration_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:registration_deleted_at;index" json:"registration_deleted_at,omitempty"`
}

func (Registration) TableName() string { return "registrations" }

/* ===================== Helpers ===================== */

func (r *Registration) IsFullyPaid() bool {
	return r.RegistrationFeePaid && r.CourseFeePaid
}

// DefaultAmount is the fallback total when no pricing config is active.
// New Learner: $150 ($50 registration + $100 course); Returning: $120.
func (r *Registration) DefaultAmount() decimal.Decimal {
	switch r.RegistrationEnrollmentType {
	case EnrollmentNew:
		return decimal.NewFromInt(150)
	case EnrollmentReturning:
		return decimal.NewFromInt(120)
	}
	return decimal.Zero
}

func (r *Registration) DefaultRegistrationFee() decimal.Decimal {
	if r.RegistrationEnrollmentType == EnrollmentNew {
		return decimal.NewFromInt(50)
	}
	return decimal.NewFromInt(20)
}

func (r *Registration) DefaultCourseFee() decimal.Decimal {
	return decimal.NewFromInt(100)
}

// RemainingBalance sums the unpaid fee amounts.
func (r *Registration) RemainingBalance() decimal.Decimal {
	remaining := decimal.Zero
	if !r.RegistrationFeePaid {
		if r.RegistrationFeeAmount != nil {
			remaining = remaining.Add(*r.RegistrationFeeAmount)
		} else {
			remaining = remaining.Add(r.DefaultRegistrationFee())
		}
	}
	if !r.CourseFeePaid {
		if r.CourseFeeAmount != nil {
			remaining = remaining.Add(*r.CourseFeeAmount)
		} else {
			remaining = remaining.Add(r.DefaultCourseFee())
		}
	}
	return remaining
}

func (r *Registration) CohortCodeOrLegacy(cohort *Cohort) string {
	if cohort != nil {
		return cohort.CohortCode
	}
	if r.RegistrationCohortCode != nil {
		return *r.RegistrationCohortCode
	}
	return ""
}
