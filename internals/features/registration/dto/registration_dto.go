package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"aspir_backend/internals/features/registration/model"
)

/* ===================== Request DTO ===================== */

type CreateRegistrationRequest struct {
	FullName       string  `json:"full_name" validate:"required,min=3,max=200"`
	Email          string  `json:"email" validate:"required,email,max=254"`
	Phone          string  `json:"phone" validate:"required,min=7,max=20"`
	Country        string  `json:"country" validate:"required,max=100"`
	Age            int     `json:"age" validate:"required,min=10,max=22"`
	Group          string  `json:"group" validate:"required,oneof=G1 G2"`
	EnrollmentType string  `json:"enrollment_type" validate:"required,oneof=NEW RETURNING"`
	CohortID       *string `json:"cohort_id,omitempty" validate:"omitempty,uuid"`
	DimensionID    *string `json:"dimension_id,omitempty" validate:"omitempty,uuid"`
	GuardianName   *string `json:"guardian_name,omitempty" validate:"omitempty,max=200"`
	GuardianPhone  *string `json:"guardian_phone,omitempty" validate:"omitempty,max=20"`
	ReferralSource *string `json:"referral_source,omitempty" validate:"omitempty,max=200"`
}

func (r *CreateRegistrationRequest) ToModel() *model.Registration {
	reg := &model.Registration{
		RegistrationFullName:       strings.TrimSpace(r.FullName),
		RegistrationEmail:          strings.ToLower(strings.TrimSpace(r.Email)),
		RegistrationPhone:          strings.TrimSpace(r.Phone),
		RegistrationCountry:        strings.TrimSpace(r.Country),
		RegistrationAge:            r.Age,
		RegistrationGroup:          r.Group,
		RegistrationEnrollmentType: r.EnrollmentType,
		RegistrationGuardianName:   r.GuardianName,
		RegistrationGuardianPhone:  r.GuardianPhone,
		RegistrationReferralSource: r.ReferralSource,
		RegistrationStatus:         model.StatusPending,
		RegistrationCurrency:       "USD",
	}
	if r.CohortID != nil {
		if id, err := uuid.Parse(*r.CohortID); err == nil {
			reg.RegistrationCohortID = &id
		}
	}
	if r.DimensionID != nil {
		if id, err := uuid.Parse(*r.DimensionID); err == nil {
			reg.RegistrationDimensionID = &id
		}
	}
	return reg
}

type UpdateRegistrationRequest struct {
	FullName       *string `json:"full_name,omitempty" validate:"omitempty,min=3,max=200"`
	Email          *string `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	Country        *string `json:"country,omitempty" validate:"omitempty,max=100"`
	Group          *string `json:"group,omitempty" validate:"omitempty,oneof=G1 G2"`
	CohortID       *string `json:"cohort_id,omitempty" validate:"omitempty,uuid"`
	DimensionID    *string `json:"dimension_id,omitempty" validate:"omitempty,uuid"`
	GuardianName   *string `json:"guardian_name,omitempty" validate:"omitempty,max=200"`
	GuardianPhone  *string `json:"guardian_phone,omitempty" validate:"omitempty,max=20"`
	ReferralSource *string `json:"referral_source,omitempty" validate:"omitempty,max=200"`
}

// ApplyTo writes the provided fields onto an update map keyed by
// column name; payment flags and participant IDs are deliberately not
// patchable here.
func (r *UpdateRegistrationRequest) ApplyTo(updates map[string]interface{}) {
	if r.FullName != nil {
		updates["registration_full_name"] = strings.TrimSpace(*r.FullName)
	}
	if r.Email != nil {
		updates["registration_email"] = strings.ToLower(strings.TrimSpace(*r.Email))
	}
	if r.Phone != nil {
		updates["registration_phone"] = strings.TrimSpace(*r.Phone)
	}
	if r.Country != nil {
		updates["registration_country"] = strings.TrimSpace(*r.Country)
	}
	if r.Group != nil {
		updates["registration_group"] = *r.Group
	}
	if r.CohortID != nil {
		if id, err := uuid.Parse(*r.CohortID); err == nil {
			updates["registration_cohort_id"] = id
		}
	}
	if r.DimensionID != nil {
		if id, err := uuid.Parse(*r.DimensionID); err == nil {
			updates["registration_dimension_id"] = id
		}
	}
	if r.GuardianName != nil {
		updates["registration_guardian_name"] = *r.GuardianName
	}
	if r.GuardianPhone != nil {
		updates["registration_guardian_phone"] = *r.GuardianPhone
	}
	if r.ReferralSource != nil {
		updates["registration_referral_source"] = *r.ReferralSource
	}
}

/* ===================== Response DTOs ===================== */

type RegistrationResponse struct {
	RegistrationID   string          `json:"registration_id"`
	FullName         string          `json:"full_name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Country          string          `json:"country"`
	Age              int             `json:"age"`
	Group            string          `json:"group"`
	EnrollmentType   string          `json:"enrollment_type"`
	CohortID         *uuid.UUID      `json:"cohort_id,omitempty"`
	DimensionID      *uuid.UUID      `json:"dimension_id,omitempty"`
	Status           string          `json:"status"`
	RegistrationPaid bool            `json:"registration_fee_paid"`
	CoursePaid       bool            `json:"course_fee_paid"`
	Amount           decimal.Decimal `json:"amount"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	ParticipantID    *string         `json:"participant_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

func FromModel(reg *model.Registration) *RegistrationResponse {
	return &RegistrationResponse{
		RegistrationID:   reg.RegistrationID.String(),
		FullName:         reg.RegistrationFullName,
		Email:            reg.RegistrationEmail,
		Phone:            reg.RegistrationPhone,
		Country:          reg.RegistrationCountry,
		Age:              reg.RegistrationAge,
		Group:            reg.RegistrationGroup,
		EnrollmentType:   reg.RegistrationEnrollmentType,
		CohortID:         reg.RegistrationCohortID,
		DimensionID:      reg.RegistrationDimensionID,
		Status:           reg.RegistrationStatus,
		RegistrationPaid: reg.RegistrationFeePaid,
		CoursePaid:       reg.CourseFeePaid,
		Amount:           reg.RegistrationAmount,
		RemainingBalance: reg.RemainingBalance(),
		ParticipantID:    reg.RegistrationParticipantID,
		CreatedAt:        reg.CreatedAt,
	}
}

func FromModels(regs []model.Registration) []*RegistrationResponse {
	out := make([]*RegistrationResponse, 0, len(regs))
	for i := range regs {
		out = append(out, FromModel(&regs[i]))
	}
	return out
}

// StatusResponse is the public payment-status view: enough for the
// applicant to see where they stand, nothing more.
type StatusResponse struct {
	RegistrationID   string          `json:"registration_id"`
	FullName         string          `json:"full_name"`
	Status           string          `json:"status"`
	RegistrationPaid bool            `json:"registration_fee_paid"`
	CoursePaid       bool            `json:"course_fee_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	ParticipantID    *string         `json:"participant_id,omitempty"`
}

func StatusFromModel(reg *model.Registration) *StatusResponse {
	return &StatusResponse{
		RegistrationID:   reg.RegistrationID.String(),
		FullName:         reg.RegistrationFullName,
		Status:           reg.RegistrationStatus,
		RegistrationPaid: reg.RegistrationFeePaid,
		CoursePaid:       reg.CourseFeePaid,
		RemainingBalance: reg.RemainingBalance(),
		ParticipantID:    reg.RegistrationParticipantID,
	}
}
